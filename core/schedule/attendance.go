package schedule

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// AttendanceMap maps a session index (position in the session list) to the employees who attended.
type AttendanceMap map[int]IDSet

// NormalizeAttendance converts a stored attendance value to an AttendanceMap.
//
// Two historical shapes are accepted besides the canonical {"0": [ids], ...} one:
//   - a list whose n-th element holds the employee_ids of session n;
//   - an object keyed by session, each value holding either an attendees collection of
//     {id, attended} entries (only attended == true is kept) or a plain employee_ids list.
//
// Integer object keys are used as indices, any other key gets its position in the document.
// Anything else yields an empty map.
func NormalizeAttendance(raw []byte) AttendanceMap {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return AttendanceMap{}
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return AttendanceMap{}
		}
		m := make(AttendanceMap, len(items))
		for i, item := range items {
			if ids, ok := sessionAttendees(item); ok {
				m[i] = ids
			}
		}
		return m

	case '{':
		keys, values, err := orderedObject(raw)
		if err != nil {
			return AttendanceMap{}
		}
		indices := sessionIndices(keys)
		m := make(AttendanceMap, len(keys))
		for i, val := range values {
			if ids, ok := sessionAttendees(val); ok {
				m[indices[i]] = ids
			}
		}
		return m
	}
	return AttendanceMap{}
}

type attendee struct {
	ID       ID   `json:"id"`
	Attended bool `json:"attended"`
}

// sessionAttendees decodes the value stored for a single session.
func sessionAttendees(raw json.RawMessage) (IDSet, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false
	}

	if raw[0] == '[' {
		var ids IDSet
		if err := json.Unmarshal(raw, &ids); err != nil {
			return nil, false
		}
		return ids, true
	}
	if raw[0] != '{' {
		return nil, false
	}

	var entry struct {
		Attendees   json.RawMessage `json:"attendees"`
		EmployeeIDs json.RawMessage `json:"employee_ids"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}

	if att := bytes.TrimSpace(entry.Attendees); len(att) > 0 && !bytes.Equal(att, []byte("null")) {
		var items []json.RawMessage
		switch att[0] {
		case '{':
			_, vals, err := orderedObject(att)
			if err != nil {
				return nil, false
			}
			items = vals
		case '[':
			if err := json.Unmarshal(att, &items); err != nil {
				return nil, false
			}
		default:
			return nil, false
		}

		ids := IDSet{}
		for _, item := range items {
			var a attendee
			if err := json.Unmarshal(item, &a); err != nil {
				continue
			}
			if a.Attended {
				ids = ids.Add(a.ID)
			}
		}
		return ids, true
	}

	if len(entry.EmployeeIDs) > 0 {
		var ids IDSet
		if err := json.Unmarshal(entry.EmployeeIDs, &ids); err != nil {
			return nil, false
		}
		return ids, true
	}
	return nil, false
}

// orderedObject splits a JSON object into its keys and raw values, keeping document order.
func orderedObject(raw []byte) ([]string, []json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, nil, errors.New("not an object")
	}

	var (
		keys   []string
		values []json.RawMessage
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errors.Errorf("unexpected key %v", tok)
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values = append(values, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

// sessionIndices uses the keys themselves when they are all distinct non-negative integers,
// their position otherwise.
func sessionIndices(keys []string) []int {
	indices := make([]int, len(keys))
	seen := make(map[int]bool, len(keys))
	for i, key := range keys {
		n, err := strconv.Atoi(key)
		if err != nil || n < 0 || seen[n] {
			for j := range indices {
				indices[j] = j
			}
			return indices
		}
		seen[n] = true
		indices[i] = n
	}
	return indices
}

// Get never returns nil.
func (m AttendanceMap) Get(i int) IDSet {
	if ids, ok := m[i]; ok && ids != nil {
		return ids.clone()
	}
	return IDSet{}
}

func (m AttendanceMap) Clone() AttendanceMap {
	out := make(AttendanceMap, len(m))
	for i, ids := range m {
		out[i] = ids.clone()
	}
	return out
}

func (m AttendanceMap) Set(i int, ids IDSet) AttendanceMap {
	out := m.Clone()
	out[i] = NewIDSet(ids...)
	return out
}

// Toggle flips the presence of employee id at session i.
func (m AttendanceMap) Toggle(i int, id ID) AttendanceMap {
	out := m.Clone()
	out[i] = m.Get(i).Toggle(id)
	return out
}

// RemoveSession drops the entry of session i and shifts the following entries down by one,
// keeping indices aligned with the session list after a session is deleted.
func (m AttendanceMap) RemoveSession(i int) AttendanceMap {
	out := make(AttendanceMap, len(m))
	for idx, ids := range m {
		switch {
		case idx < i:
			out[idx] = ids.clone()
		case idx > i:
			out[idx-1] = ids.clone()
		}
	}
	return out
}

// Fill gives every empty session in [from, to) the whole selection.
func (m AttendanceMap) Fill(from, to int, selected IDSet) AttendanceMap {
	out := m.Clone()
	for i := from; i < to; i++ {
		if out.Get(i).Len() == 0 {
			out[i] = NewIDSet(selected...)
		}
	}
	return out
}

// Restrict removes from every session the employees that are not selected.
func (m AttendanceMap) Restrict(selected IDSet) AttendanceMap {
	out := make(AttendanceMap, len(m))
	for i, ids := range m {
		kept := IDSet{}
		for _, id := range ids {
			if selected.Has(id) {
				kept = append(kept, id)
			}
		}
		out[i] = kept
	}
	return out
}

// Records serializes the map in session order, one record per current session.
func (m AttendanceMap) Records(dates []SessionDate) []AttendanceRecord {
	records := make([]AttendanceRecord, len(dates))
	for i, sd := range dates {
		records[i] = AttendanceRecord{Date: sd.Date, EmployeeIDs: m.Get(i)}
	}
	return records
}

// Indices returns the session indices present in the map, sorted.
func (m AttendanceMap) Indices() []int {
	out := make([]int, 0, len(m))
	for i := range m {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Equal compares membership per session; missing and empty entries are equivalent.
func (m AttendanceMap) Equal(other AttendanceMap) bool {
	for i, ids := range m {
		if !ids.Equal(other.Get(i)) {
			return false
		}
	}
	for i, ids := range other {
		if !ids.Equal(m.Get(i)) {
			return false
		}
	}
	return true
}

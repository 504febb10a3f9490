package schedule

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ID identifies a remote entity. Records written by older clients carry numeric ids,
// so decoding accepts JSON numbers and strings alike; comparisons are always on the string form.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*id = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return errors.Errorf("invalid id %s", b)
		}
		*id = ID(n.String())
	}
	return nil
}

// IDSet is a set of ids. Insertion order is kept only so that "first selected" is stable;
// every method returns a new set and leaves the receiver untouched.
type IDSet []ID

func NewIDSet(ids ...ID) IDSet {
	s := make(IDSet, 0, len(ids))
	for _, id := range ids {
		s = s.Add(id)
	}
	return s
}

func (s IDSet) Has(id ID) bool {
	for _, item := range s {
		if item == id {
			return true
		}
	}
	return false
}

func (s IDSet) Len() int { return len(s) }

func (s IDSet) Add(id ID) IDSet {
	if id.IsZero() || s.Has(id) {
		return s.clone()
	}
	return append(s.clone(), id)
}

func (s IDSet) Remove(ids ...ID) IDSet {
	drop := IDSet(ids)
	out := make(IDSet, 0, len(s))
	for _, item := range s {
		if !drop.Has(item) {
			out = append(out, item)
		}
	}
	return out
}

// Toggle adds id when missing and removes it otherwise.
func (s IDSet) Toggle(id ID) IDSet {
	if s.Has(id) {
		return s.Remove(id)
	}
	return s.Add(id)
}

// Equal compares membership only.
func (s IDSet) Equal(other IDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for _, id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

func (s IDSet) Strings() []string {
	out := make([]string, len(s))
	for i, id := range s {
		out[i] = string(id)
	}
	return out
}

func (s IDSet) clone() IDSet {
	out := make(IDSet, len(s), len(s)+1)
	copy(out, s)
	return out
}

// MarshalJSON never emits null, the schedules resource expects lists.
func (s IDSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]ID(s))
}

func (s *IDSet) UnmarshalJSON(b []byte) error {
	var ids []ID
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAttendance(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want AttendanceMap
	}{
		{name: "empty", raw: "", want: AttendanceMap{}},
		{name: "null", raw: "null", want: AttendanceMap{}},
		{name: "scalar", raw: `"oops"`, want: AttendanceMap{}},
		{name: "broken json", raw: `{"0": [`, want: AttendanceMap{}},
		{
			name: "array shape",
			raw:  `[{"date":"2024-03-04","employee_ids":["a","b"]},{"employee_ids":[3]}]`,
			want: AttendanceMap{0: {"a", "b"}, 1: {"3"}},
		},
		{
			name: "array shape skips unknown entries",
			raw:  `[42, {"employee_ids":["a"]}]`,
			want: AttendanceMap{1: {"a"}},
		},
		{
			name: "object shape with attendees map",
			raw:  `{"s1":{"attendees":{"x":{"id":"a","attended":true},"y":{"id":"b","attended":false},"z":{"id":"c","attended":true}}},"s2":{"employee_ids":["d"]}}`,
			want: AttendanceMap{0: {"a", "c"}, 1: {"d"}},
		},
		{
			name: "object shape with attendees list",
			raw:  `{"first":{"attendees":[{"id":1,"attended":true},{"id":2,"attended":"yes"}]}}`,
			want: AttendanceMap{0: {"1"}},
		},
		{
			name: "integer keys are indices",
			raw:  `{"2":["c"],"0":["a"]}`,
			want: AttendanceMap{0: {"a"}, 2: {"c"}},
		},
		{
			name: "mixed keys use document order",
			raw:  `{"2":["c"],"x":["a"]}`,
			want: AttendanceMap{0: {"c"}, 1: {"a"}},
		},
		{
			name: "unknown value shape is dropped",
			raw:  `{"0":{"foo":1},"1":["b"]}`,
			want: AttendanceMap{1: {"b"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAttendance([]byte(tt.raw))
			assert.True(t, tt.want.Equal(got), "NormalizeAttendance() = %v, want %v", got, tt.want)
			assert.Equal(t, len(tt.want), len(got))
		})
	}
}

func TestNormalizeAttendance_Idempotent(t *testing.T) {
	canonical := AttendanceMap{0: {"a", "b"}, 1: {"c"}}
	raw, err := json.Marshal(canonical)
	require.NoError(t, err)
	assert.JSONEq(t, `{"0":["a","b"],"1":["c"]}`, string(raw))

	once := NormalizeAttendance(raw)
	assert.Equal(t, canonical, once)

	raw, err = json.Marshal(once)
	require.NoError(t, err)
	assert.Equal(t, once, NormalizeAttendance(raw))
}

func TestNormalizeAttendance_ShapesAgree(t *testing.T) {
	fromArray := NormalizeAttendance([]byte(`[{"employee_ids":["a","b"]}]`))
	fromObject := NormalizeAttendance([]byte(`{"s1":{"attendees":{"x":{"id":"b","attended":true},"y":{"id":"a","attended":true}}}}`))

	want := AttendanceMap{0: {"a", "b"}}
	assert.True(t, want.Equal(fromArray))
	assert.True(t, want.Equal(fromObject))
	assert.True(t, fromArray.Equal(fromObject))
}

func TestAttendanceMap_RemoveSession(t *testing.T) {
	m := AttendanceMap{0: {"a"}, 1: {"b"}, 2: {"c"}}

	got := m.RemoveSession(1)
	assert.Equal(t, AttendanceMap{0: {"a"}, 1: {"c"}}, got)
	assert.Equal(t, AttendanceMap{0: {"a"}, 1: {"b"}, 2: {"c"}}, m, "receiver must not change")

	assert.Equal(t, AttendanceMap{0: {"b"}, 1: {"c"}}, m.RemoveSession(0))
	assert.Equal(t, AttendanceMap{0: {"a"}, 1: {"b"}}, m.RemoveSession(2))
}

func TestAttendanceMap_FillToggleRestrict(t *testing.T) {
	selected := NewIDSet("a", "b", "c")
	m := AttendanceMap{1: {"b"}}

	filled := m.Fill(0, 3, selected)
	assert.Equal(t, AttendanceMap{0: {"a", "b", "c"}, 1: {"b"}, 2: {"a", "b", "c"}}, filled)
	assert.Equal(t, AttendanceMap{1: {"b"}, 2: {"a", "b", "c"}}, m.Fill(1, 3, selected))

	toggled := filled.Toggle(1, "b").Toggle(1, "c")
	assert.Equal(t, IDSet{"c"}, toggled.Get(1))
	assert.Equal(t, IDSet{"b"}, filled.Get(1))

	restricted := filled.Restrict(NewIDSet("a", "c"))
	assert.Equal(t, IDSet{"a", "c"}, restricted.Get(0))
	assert.Equal(t, IDSet{}, restricted.Get(1))

	assert.Equal(t, []int{0, 1, 2}, filled.Indices())
}

func TestAttendanceMap_Records(t *testing.T) {
	dates := []SessionDate{{Date: "2024-03-04"}, {Date: "2024-03-05"}}
	m := AttendanceMap{0: {"a"}, 5: {"z"}}

	records := m.Records(dates)
	assert.Equal(t, []AttendanceRecord{
		{Date: "2024-03-04", EmployeeIDs: IDSet{"a"}},
		{Date: "2024-03-05", EmployeeIDs: IDSet{}},
	}, records)

	raw, err := json.Marshal(records)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"date":"2024-03-04","employee_ids":["a"]},{"date":"2024-03-05","employee_ids":[]}]`, string(raw))
	assert.True(t, AttendanceMap{0: {"a"}}.Equal(NormalizeAttendance(raw)))
}

package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraft_Payload(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	d := Draft{
		ID: "s1",
		Form: FormState{
			CourseID:        "C1",
			Location:        "Milano",
			MaxParticipants: 12,
			DeliveryMode:    DeliveryInPerson,
			Dates: []SessionDate{
				{Date: "2024-07-02", Start: "14:00", End: "18:00", TrainerID: "t1"},
				{Date: "2024-07-01", Start: "09:00", End: "13:00", TrainerID: "t1", CoTrainerID: "t2"},
			},
		},
		CompanyIDs:  NewIDSet("comp1"),
		EmployeeIDs: NewIDSet("emp1", "emp2"),
		Attendance:  AttendanceMap{1: {"emp2"}},
	}

	p, err := d.Payload(rome)
	require.NoError(t, err)
	assert.Equal(t, DefaultStatus, p.Status)
	assert.Equal(t, "2024-07-01T07:00:00.000Z", p.StartDate.String())
	assert.Equal(t, "2024-07-02T16:00:00.000Z", p.EndDate.String())

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "s1",
		"courseId": "C1",
		"start_date": "2024-07-01T07:00:00.000Z",
		"end_date": "2024-07-02T16:00:00.000Z",
		"location": "Milano",
		"max_participants": 12,
		"notes": "",
		"delivery_mode": "in-person",
		"dates": [
			{"date": "2024-07-02", "start": "14:00", "end": "18:00", "trainer_id": "t1", "co_trainer_id": ""},
			{"date": "2024-07-01", "start": "09:00", "end": "13:00", "trainer_id": "t1", "co_trainer_id": "t2"}
		],
		"companies": [{"companyId": "comp1"}],
		"company_ids": ["comp1"],
		"enrollments": [{"employeeId": "emp1"}, {"employeeId": "emp2"}],
		"employee_ids": ["emp1", "emp2"],
		"attendance": [
			{"date": "2024-07-02", "employee_ids": []},
			{"date": "2024-07-01", "employee_ids": ["emp2"]}
		],
		"status": "Preventivo"
	}`, string(raw))

	var decoded SchedulePayload
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, p.StartDate.Time().Equal(decoded.StartDate.Time()))

	d.Form.Dates = nil
	_, err = d.Payload(rome)
	assert.Equal(t, ErrInvalidSessionDates, err)
}

func TestDraft_PartialPayloads(t *testing.T) {
	d := Draft{
		Form:        FormState{Dates: []SessionDate{{Date: "2024-07-01"}}},
		CompanyIDs:  NewIDSet("c1"),
		EmployeeIDs: NewIDSet("e1"),
		Attendance:  AttendanceMap{0: {"e1"}},
		Status:      StatusInvoice,
	}

	tests := []struct {
		name  string
		patch SchedulePatch
		want  string
	}{
		{
			name:  "attendance",
			patch: d.AttendancePatch(),
			want:  `{"attendance":[{"date":"2024-07-01","employee_ids":["e1"]}],"company_ids":["c1"],"employee_ids":["e1"]}`,
		},
		{
			name:  "documents",
			patch: d.DocumentsPatch(),
			want:  `{"attendance":[{"date":"2024-07-01","employee_ids":["e1"]}],"status":"Fattura","company_ids":["c1"],"employee_ids":["e1"]}`,
		},
		{
			name:  "status",
			patch: StatusPatch(StatusPayment),
			want:  `{"status":"Pagamento"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.patch)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
	assert.True(t, SchedulePatch{}.IsEmpty())
}

func TestSchedulePayload_Selections(t *testing.T) {
	var p SchedulePayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"companies": [{"companyId": "c1"}, {"companyId": 2}],
		"company_ids": ["c1"],
		"enrollments": [{"employeeId": "e2"}],
		"employee_ids": ["e1"]
	}`), &p))

	assert.Equal(t, IDSet{"c1", "2"}, p.SelectedCompanies())
	assert.Equal(t, IDSet{"e1", "e2"}, p.SelectedEmployees())
}

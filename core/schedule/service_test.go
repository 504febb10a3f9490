package schedule_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/formazione/core"
	"github.com/trezcool/formazione/core/schedule"
	"github.com/trezcool/formazione/services/email"
	"github.com/trezcool/formazione/storage/database/inmem"
	"github.com/trezcool/formazione/tests"
)

func newService(t *testing.T) (*schedule.Service, schedule.Repository, *testutil.Logger) {
	t.Helper()
	emailsvc.ResetSentMessages()
	validate, _ := core.NewValidator()
	logger := testutil.NewLogger()
	conf := &core.Config{AppName: "Formazione", TestMode: true}
	repo := inmemdb.NewScheduleRepository(testutil.SeededDB())
	return schedule.NewService(repo, validate, emailsvc.NewConsoleServiceMock(conf, logger), logger, conf.AppName), repo, logger
}

func validPayload(t *testing.T) schedule.SchedulePayload {
	t.Helper()
	d := schedule.Draft{
		Form: schedule.FormState{
			CourseID:     "C1",
			DeliveryMode: schedule.DeliveryInPerson,
			Location:     "Milano",
			Dates: []schedule.SessionDate{
				{Date: "2024-03-04", Start: "09:00", End: "13:00", TrainerID: "t1", CoTrainerID: "t3"},
				{Date: "2024-03-04", Start: "14:00", End: "18:00", TrainerID: "t1"},
			},
		},
		CompanyIDs:  schedule.NewIDSet("comp1"),
		EmployeeIDs: schedule.NewIDSet("emp1"),
		Attendance:  schedule.AttendanceMap{0: {"emp1"}},
	}
	p, err := d.Payload(time.UTC)
	require.NoError(t, err)
	return p
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)

	p := validPayload(t)
	p.CompanyIDs = nil // the companies list alone is enough
	sch, err := svc.Create(ctx, p)
	require.NoError(t, err)

	assert.False(t, sch.ID.IsZero())
	assert.Equal(t, schedule.StatusQuote, sch.Status)
	assert.Equal(t, schedule.IDSet{"comp1"}, sch.CompanyIDs)
	assert.Equal(t, schedule.IDSet{"emp1"}, sch.EmployeeIDs)
	assert.Equal(t, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), sch.StartDate)
	assert.Equal(t, time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC), sch.EndDate)
	assert.False(t, sch.CreatedAt.IsZero())
	assert.JSONEq(t, `[{"date":"2024-03-04","employee_ids":["emp1"]},{"date":"2024-03-04","employee_ids":[]}]`, string(sch.Attendance))

	stored, err := repo.GetScheduleByID(ctx, sch.ID)
	require.NoError(t, err)
	assert.Equal(t, sch.ID, stored.ID)

	// the trainer and the co-trainer are notified once each
	sent := emailsvc.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "giulia@test.test", sent[0].To[0].Address)
	assert.Equal(t, "sara@test.test", sent[1].To[0].Address)
	assert.Equal(t, "Nuovo corso programmato: Primo soccorso", sent[0].Subject)
	assert.Contains(t, sent[0].TextContent, "2024-03-04 14:00-18:00")
	assert.NotContains(t, sent[1].TextContent, "14:00-18:00")
}

func TestService_CreateInvalid(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	tests := []struct {
		name     string
		mutate   func(p *schedule.SchedulePayload)
		wantVErr bool // validator.ValidationErrors
	}{
		{name: "no course", mutate: func(p *schedule.SchedulePayload) { p.CourseID = "" }, wantVErr: true},
		{name: "no delivery mode", mutate: func(p *schedule.SchedulePayload) { p.DeliveryMode = " " }, wantVErr: true},
		{name: "no dates", mutate: func(p *schedule.SchedulePayload) { p.Dates = nil }, wantVErr: true},
		{
			name: "too many dates",
			mutate: func(p *schedule.SchedulePayload) {
				for len(p.Dates) <= schedule.MaxSessionDates {
					p.Dates = append(p.Dates, p.Dates[0])
				}
			},
			wantVErr: true,
		},
		{name: "bad start time", mutate: func(p *schedule.SchedulePayload) { p.Dates[0].Start = "9am" }, wantVErr: true},
		{name: "bad date", mutate: func(p *schedule.SchedulePayload) { p.Dates[1].Date = "04/03/2024" }, wantVErr: true},
		{name: "session without trainer", mutate: func(p *schedule.SchedulePayload) { p.Dates[1].TrainerID = "" }, wantVErr: true},
		{name: "unknown course", mutate: func(p *schedule.SchedulePayload) { p.CourseID = "C404" }},
		{name: "unknown status", mutate: func(p *schedule.SchedulePayload) { p.Status = "Bozza" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload(t)
			tt.mutate(&p)

			_, err := svc.Create(ctx, p)
			require.Error(t, err)
			if tt.wantVErr {
				_, ok := errors.Cause(err).(validator.ValidationErrors)
				assert.True(t, ok, "got %v", err)
			} else {
				assert.True(t, core.IsValidationError(err), "got %v", err)
			}
		})
	}
	assert.Empty(t, emailsvc.Sent())
}

func TestService_UpdateAndPatch(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	created, err := svc.Create(ctx, validPayload(t))
	require.NoError(t, err)
	_, err = svc.Patch(ctx, created.ID, schedule.StatusPatch(schedule.StatusConfirm))
	require.NoError(t, err)

	p := validPayload(t)
	p.Status = ""
	p.Notes = "aula 2"
	p.Dates = p.Dates[:1]
	updated, err := svc.Update(ctx, created.ID, p)
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, schedule.StatusConfirm, updated.Status, "an empty status keeps the stored one")
	assert.Equal(t, "aula 2", updated.Notes)
	assert.Len(t, updated.Dates, 1)

	_, err = svc.Update(ctx, "nope", p)
	assert.Equal(t, schedule.ErrNotFound, err)

	_, err = svc.Patch(ctx, created.ID, schedule.SchedulePatch{})
	assert.True(t, core.IsValidationError(err))
	_, err = svc.Patch(ctx, created.ID, schedule.StatusPatch("Bozza"))
	assert.True(t, core.IsValidationError(err))

	d := schedule.Draft{
		ID:          created.ID,
		Form:        updated.Form(),
		CompanyIDs:  schedule.NewIDSet("comp1", "comp2"),
		EmployeeIDs: schedule.NewIDSet("emp1", "emp3"),
		Attendance:  schedule.AttendanceMap{0: {"emp3"}},
		Status:      schedule.StatusInvoice,
	}
	patched, err := svc.Patch(ctx, created.ID, d.AttendancePatch())
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusConfirm, patched.Status)
	assert.Equal(t, schedule.IDSet{"comp1", "comp2"}, patched.CompanyIDs)
	assert.Equal(t, schedule.IDSet{"emp3"}, schedule.NormalizeAttendance(patched.Attendance).Get(0))
	assert.Equal(t, "aula 2", patched.Notes)

	patched, err = svc.Patch(ctx, created.ID, d.DocumentsPatch())
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusInvoice, patched.Status)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	var records []schedule.AttendanceRecord
	require.NoError(t, json.Unmarshal(got.Attendance, &records))
	assert.Equal(t, []schedule.AttendanceRecord{{Date: "2024-03-04", EmployeeIDs: schedule.IDSet{"emp3"}}}, records)
}

func TestService_Filter(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)

	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	testutil.CreateSchedule(t, repo, schedule.Schedule{ID: "late", CourseID: "C1", StartDate: base.AddDate(0, 1, 0), CompanyIDs: schedule.NewIDSet("comp1")})
	testutil.CreateSchedule(t, repo, schedule.Schedule{ID: "early", CourseID: "C2", StartDate: base, CompanyIDs: schedule.NewIDSet("comp2"), Status: schedule.StatusPayment})

	ids := func(schedules []schedule.Schedule) []schedule.ID {
		out := make([]schedule.ID, len(schedules))
		for i, s := range schedules {
			out[i] = s.ID
		}
		return out
	}

	tests := []struct {
		name    string
		filter  schedule.QueryFilter
		want    []schedule.ID
		wantErr bool
	}{
		{name: "default ordering", want: []schedule.ID{"early", "late"}},
		{name: "descending", filter: schedule.QueryFilter{Ordering: "-start_date"}, want: []schedule.ID{"late", "early"}},
		{name: "unknown ordering field is ignored", filter: schedule.QueryFilter{Ordering: "notes"}, want: []schedule.ID{"early", "late"}},
		{name: "by status", filter: schedule.QueryFilter{Status: "Pagamento"}, want: []schedule.ID{"early"}},
		{name: "by company", filter: schedule.QueryFilter{CompanyID: "comp1"}, want: []schedule.ID{"late"}},
		{name: "invalid status", filter: schedule.QueryFilter{Status: "Bozza"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Filter(ctx, tt.filter)
			if tt.wantErr {
				assert.True(t, core.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestService_Directory(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	courses, err := svc.Courses(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	trainers, err := svc.Trainers(ctx)
	require.NoError(t, err)
	assert.Len(t, trainers, 3)
	companies, err := svc.Companies(ctx)
	require.NoError(t, err)
	assert.Len(t, companies, 2)

	employees, err := svc.Employees(ctx, schedule.EmployeeFilter{CompanyIDs: schedule.NewIDSet("comp1"), Search: "  BRUNO "})
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, schedule.ID("emp2"), employees[0].ID)

	employees, err = svc.Employees(ctx, schedule.EmployeeFilter{})
	require.NoError(t, err)
	assert.Len(t, employees, 3)
}

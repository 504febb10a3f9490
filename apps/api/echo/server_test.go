package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/formazione/apps/api/echo"
	"github.com/trezcool/formazione/core"
	"github.com/trezcool/formazione/core/schedule"
	"github.com/trezcool/formazione/services/email"
	"github.com/trezcool/formazione/storage/database/inmem"
	"github.com/trezcool/formazione/tests"
)

var conf = &core.Config{
	AppName:   "Formazione",
	SecretKey: "secret",
	TestMode:  true,
	Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     interface{}
	token    string
	wantCode int
	wantData string // JSON, compared when set
	wantKeys []string
}

func newApp(t *testing.T) *Server {
	t.Helper()
	emailsvc.ResetSentMessages()
	validate, translator := core.NewValidator()
	logger := testutil.NewLogger()
	repo := inmemdb.NewScheduleRepository(testutil.SeededDB())
	svc := schedule.NewService(repo, validate, emailsvc.NewConsoleServiceMock(conf, logger), logger, conf.AppName)
	return NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		ScheduleSvc:    svc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
}

func getToken(t *testing.T, roles ...string) string {
	t.Helper()
	token, err := GenerateToken(conf, NewClaims(conf, core.Principal{ID: "u1", Username: "segreteria"}, roles...))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func do(t *testing.T, app http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func run(t *testing.T, app http.Handler, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, app, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantData != "" {
				assert.JSONEq(t, tt.wantData, rec.Body.String())
			}
			if len(tt.wantKeys) > 0 {
				var got map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				for _, k := range tt.wantKeys {
					assert.Contains(t, got, k)
				}
			}
		})
	}
}

func validPayload() schedule.SchedulePayload {
	start := schedule.Timestamp(time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC))
	end := schedule.Timestamp(time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC))
	return schedule.SchedulePayload{
		CourseID:     "C1",
		StartDate:    start,
		EndDate:      end,
		DeliveryMode: schedule.DeliveryInPerson,
		Dates:        []schedule.SessionDate{{Date: "2024-03-04", Start: "09:00", End: "13:00", TrainerID: "t1"}},
		Companies:    []schedule.CompanyRef{{CompanyID: "comp1"}},
		CompanyIDs:   schedule.IDSet{"comp1"},
		Enrollments:  []schedule.Enrollment{{EmployeeID: "emp1"}},
		EmployeeIDs:  schedule.IDSet{"emp1"},
		Attendance:   []schedule.AttendanceRecord{},
	}
}

func createSchedule(t *testing.T, app http.Handler, token string) schedule.Schedule {
	t.Helper()
	rec := do(t, app, http.MethodPost, "/v1/schedules", token, validPayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sch schedule.Schedule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sch))
	return sch
}

func TestHome(t *testing.T) {
	app := newApp(t)
	rec := do(t, app, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Formazione API!", rec.Body.String())
}

func TestScheduleAPI_auth(t *testing.T) {
	app := newApp(t)
	viewer := getToken(t)

	run(t, app, []httpTest{
		{name: "no token", method: http.MethodGet, path: "/v1/schedules", wantCode: http.StatusUnauthorized, wantData: `{"error":"missing or malformed jwt"}`},
		{name: "bad token", method: http.MethodGet, path: "/v1/schedules", token: "abc", wantCode: http.StatusUnauthorized},
		{name: "viewer can list", method: http.MethodGet, path: "/v1/schedules", token: viewer, wantCode: http.StatusOK, wantData: `[]`},
		{name: "viewer cannot create", method: http.MethodPost, path: "/v1/schedules", token: viewer, body: validPayload(), wantCode: http.StatusForbidden, wantData: `{"error":"permission denied"}`},
		{name: "viewer cannot patch", method: http.MethodPatch, path: "/v1/schedules/s1", token: viewer, body: `{"status":"Conferma"}`, wantCode: http.StatusForbidden},
	})
}

func TestScheduleAPI_create(t *testing.T) {
	app := newApp(t)
	token := getToken(t, RoleScheduler)

	noDates := validPayload()
	noDates.Dates = nil
	badSession := validPayload()
	badSession.Dates[0].End = "25:00"
	unknownCourse := validPayload()
	unknownCourse.CourseID = "C404"

	run(t, app, []httpTest{
		{name: "no dates", method: http.MethodPost, path: "/v1/schedules", token: token, body: noDates, wantCode: http.StatusBadRequest, wantKeys: []string{"dates"}},
		{name: "bad session end", method: http.MethodPost, path: "/v1/schedules", token: token, body: badSession, wantCode: http.StatusBadRequest, wantKeys: []string{"dates[0].end"}},
		{name: "unknown course", method: http.MethodPost, path: "/v1/schedules", token: token, body: unknownCourse, wantCode: http.StatusBadRequest, wantData: `{"courseId":"course not found"}`},
		{name: "malformed json", method: http.MethodPost, path: "/v1/schedules", token: token, body: `{"courseId":`, wantCode: http.StatusBadRequest},
	})

	sch := createSchedule(t, app, token)
	assert.False(t, sch.ID.IsZero())
	assert.Equal(t, schedule.StatusQuote, sch.Status)
	assert.Equal(t, schedule.IDSet{"comp1"}, sch.CompanyIDs)
	assert.Len(t, emailsvc.Sent(), 1)

	rec := do(t, app, http.MethodGet, "/v1/schedules/"+sch.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got schedule.Schedule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, sch.ID, got.ID)
	assert.Equal(t, time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), got.StartDate.UTC())
}

func TestScheduleAPI_updates(t *testing.T) {
	app := newApp(t)
	token := getToken(t, RoleAdmin)
	sch := createSchedule(t, app, token)
	path := "/v1/schedules/" + sch.ID.String()

	updated := validPayload()
	updated.Notes = "aula 3"

	run(t, app, []httpTest{
		{name: "unknown schedule", method: http.MethodGet, path: "/v1/schedules/nope", token: token, wantCode: http.StatusNotFound, wantData: `{"error":"not found"}`},
		{name: "update unknown schedule", method: http.MethodPut, path: "/v1/schedules/nope", token: token, body: updated, wantCode: http.StatusNotFound},
		{name: "update", method: http.MethodPut, path: path, token: token, body: updated, wantCode: http.StatusOK},
		{name: "empty patch", method: http.MethodPatch, path: path, token: token, body: `{}`, wantCode: http.StatusBadRequest, wantData: `{"error":"nothing to update"}`},
		{name: "invalid status", method: http.MethodPatch, path: path, token: token, body: `{"status":"Bozza"}`, wantCode: http.StatusBadRequest, wantData: `{"status":"invalid document status"}`},
		{name: "status", method: http.MethodPatch, path: path, token: token, body: `{"status":"Fattura"}`, wantCode: http.StatusOK},
		{
			name:     "attendance",
			method:   http.MethodPatch,
			path:     path,
			token:    token,
			body:     `{"attendance":[{"date":"2024-03-04","employee_ids":["emp1"]}],"company_ids":["comp1"],"employee_ids":["emp1"]}`,
			wantCode: http.StatusOK,
		},
	})

	rec := do(t, app, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got schedule.Schedule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "aula 3", got.Notes)
	assert.Equal(t, schedule.StatusInvoice, got.Status)
	assert.Equal(t, schedule.IDSet{"emp1"}, schedule.NormalizeAttendance(got.Attendance).Get(0))

	run(t, app, []httpTest{
		{name: "list by status", method: http.MethodGet, path: "/v1/schedules?status=Fattura", token: token, wantCode: http.StatusOK},
		{name: "list by invalid status", method: http.MethodGet, path: "/v1/schedules?status=Bozza", token: token, wantCode: http.StatusBadRequest},
	})

	var list []schedule.Schedule
	rec = do(t, app, http.MethodGet, "/v1/schedules?company_id=comp1&ordering=-start_date", token, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, sch.ID, list[0].ID)

	rec = do(t, app, http.MethodGet, "/v1/schedules?course_id=C2", token, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)
}

func TestDirectoryAPI(t *testing.T) {
	app := newApp(t)
	token := getToken(t)

	count := func(path string) int {
		rec := do(t, app, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var items []json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		return len(items)
	}

	tests := []struct {
		path string
		want int
	}{
		{path: "/v1/courses", want: 2},
		{path: "/v1/trainers", want: 3},
		{path: "/v1/companies", want: 2},
		{path: "/v1/employees", want: 3},
		{path: "/v1/employees?company_id=comp1", want: 2},
		{path: "/v1/employees?company_id=comp1,comp2", want: 3},
		{path: "/v1/employees?company_id=comp1&company_id=comp2&search=anna", want: 1},
		{path: "/v1/employees?company_id=comp9", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, count(tt.path))
		})
	}

	rec := do(t, app, http.MethodGet, "/v1/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

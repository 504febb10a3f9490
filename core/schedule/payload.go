package schedule

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is an absolute time serialized in UTC with millisecond precision.
type Timestamp time.Time

func (t Timestamp) Time() time.Time { return time.Time(t) }

func (t Timestamp) String() string {
	return time.Time(t).UTC().Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return errors.Wrapf(err, "invalid timestamp %q", s)
	}
	*t = Timestamp(parsed.UTC())
	return nil
}

// SchedulePayload is the full representation of a schedule sent on create and update.
// companies/company_ids and enrollments/employee_ids carry the same selection in two shapes.
type SchedulePayload struct {
	ID              ID                 `json:"id,omitempty"`
	CourseID        ID                 `json:"courseId" validate:"notblank"`
	StartDate       Timestamp          `json:"start_date"`
	EndDate         Timestamp          `json:"end_date"`
	Location        string             `json:"location"`
	MaxParticipants int                `json:"max_participants" validate:"gte=0"`
	Notes           string             `json:"notes"`
	DeliveryMode    string             `json:"delivery_mode" validate:"notblank"`
	Dates           []SessionDate      `json:"dates" validate:"min=1,max=4,dive"`
	Companies       []CompanyRef       `json:"companies"`
	CompanyIDs      IDSet              `json:"company_ids"`
	Enrollments     []Enrollment       `json:"enrollments"`
	EmployeeIDs     IDSet              `json:"employee_ids"`
	Attendance      []AttendanceRecord `json:"attendance"`
	Status          DocumentStatus     `json:"status"`
}

// SchedulePatch is a partial update; nil fields are left unchanged.
type SchedulePatch struct {
	Attendance  *[]AttendanceRecord `json:"attendance,omitempty"`
	Status      *DocumentStatus     `json:"status,omitempty"`
	CompanyIDs  *IDSet              `json:"company_ids,omitempty"`
	EmployeeIDs *IDSet              `json:"employee_ids,omitempty"`
}

func (p SchedulePatch) IsEmpty() bool {
	return p.Attendance == nil && p.Status == nil && p.CompanyIDs == nil && p.EmployeeIDs == nil
}

// Draft is everything the wizard knows about a schedule.
type Draft struct {
	ID          ID
	Form        FormState
	CompanyIDs  IDSet
	EmployeeIDs IDSet
	Attendance  AttendanceMap
	Status      DocumentStatus
}

// Payload builds the full payload of d, session times being read in loc.
func (d Draft) Payload(loc *time.Location) (SchedulePayload, error) {
	start, end, err := Span(d.Form.Dates, loc)
	if err != nil {
		return SchedulePayload{}, err
	}

	dates := make([]SessionDate, len(d.Form.Dates))
	copy(dates, d.Form.Dates)

	companies := make([]CompanyRef, len(d.CompanyIDs))
	for i, id := range d.CompanyIDs {
		companies[i] = CompanyRef{CompanyID: id}
	}
	enrollments := make([]Enrollment, len(d.EmployeeIDs))
	for i, id := range d.EmployeeIDs {
		enrollments[i] = Enrollment{EmployeeID: id}
	}

	status := d.Status
	if status == "" {
		status = DefaultStatus
	}

	return SchedulePayload{
		ID:              d.ID,
		CourseID:        d.Form.CourseID,
		StartDate:       Timestamp(start.UTC()),
		EndDate:         Timestamp(end.UTC()),
		Location:        d.Form.Location,
		MaxParticipants: d.Form.MaxParticipants,
		Notes:           d.Form.Notes,
		DeliveryMode:    d.Form.DeliveryMode,
		Dates:           dates,
		Companies:       companies,
		CompanyIDs:      NewIDSet(d.CompanyIDs...),
		Enrollments:     enrollments,
		EmployeeIDs:     NewIDSet(d.EmployeeIDs...),
		Attendance:      d.Attendance.Records(d.Form.Dates),
		Status:          status,
	}, nil
}

// AttendancePatch carries the attendance and the current selections.
func (d Draft) AttendancePatch() SchedulePatch {
	records := d.Attendance.Records(d.Form.Dates)
	companies := NewIDSet(d.CompanyIDs...)
	employees := NewIDSet(d.EmployeeIDs...)
	return SchedulePatch{Attendance: &records, CompanyIDs: &companies, EmployeeIDs: &employees}
}

// DocumentsPatch is AttendancePatch plus the document status.
func (d Draft) DocumentsPatch() SchedulePatch {
	p := d.AttendancePatch()
	status := d.Status
	p.Status = &status
	return p
}

// StatusPatch only carries the document status.
func StatusPatch(status DocumentStatus) SchedulePatch {
	return SchedulePatch{Status: &status}
}

// SelectedCompanies merges both representations of the company selection.
func (p SchedulePayload) SelectedCompanies() IDSet {
	ids := NewIDSet(p.CompanyIDs...)
	for _, c := range p.Companies {
		ids = ids.Add(c.CompanyID)
	}
	return ids
}

// SelectedEmployees merges both representations of the employee selection.
func (p SchedulePayload) SelectedEmployees() IDSet {
	ids := NewIDSet(p.EmployeeIDs...)
	for _, e := range p.Enrollments {
		ids = ids.Add(e.EmployeeID)
	}
	return ids
}

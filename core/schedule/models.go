package schedule

import (
	"encoding/json"
	"strings"
	"time"
)

// DocumentStatus is the billing/administrative state of a schedule, independent of scheduling.
type DocumentStatus string

const (
	StatusQuote   DocumentStatus = "Preventivo"
	StatusConfirm DocumentStatus = "Conferma"
	StatusInvoice DocumentStatus = "Fattura"
	StatusPayment DocumentStatus = "Pagamento"

	DefaultStatus = StatusQuote
)

var DocumentStatuses = []DocumentStatus{StatusQuote, StatusConfirm, StatusInvoice, StatusPayment}

func (s DocumentStatus) Valid() bool {
	for _, st := range DocumentStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Delivery modes
const (
	DeliveryInPerson = "in-person"
	DeliveryOnline   = "online"
	DeliveryBlended  = "blended"
)

// CertificationList decodes either a comma separated string or a list of strings
// into trimmed, non-empty tokens, keeping the first occurrence of duplicates.
type CertificationList []string

func ParseCertifications(tokens ...string) CertificationList {
	out := make(CertificationList, 0, len(tokens))
	for _, tok := range tokens {
		for _, part := range strings.Split(tok, ",") {
			part = strings.TrimSpace(part)
			if part == "" || out.Has(part) {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

// Has compares case-insensitively.
func (l CertificationList) Has(cert string) bool {
	for _, c := range l {
		if strings.EqualFold(c, cert) {
			return true
		}
	}
	return false
}

// Covers reports whether l holds every certification in required.
func (l CertificationList) Covers(required CertificationList) bool {
	for _, r := range required {
		if !l.Has(r) {
			return false
		}
	}
	return true
}

func (l CertificationList) String() string { return strings.Join(l, ", ") }

func (l *CertificationList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*l = ParseCertifications(list...)
		return nil
	}
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*l = CertificationList{}
		return nil
	}
	*l = ParseCertifications(*s)
	return nil
}

type Course struct {
	ID             ID                `json:"id"`
	Title          string            `json:"title"`
	Code           string            `json:"code,omitempty"`
	Duration       float64           `json:"duration"` // hours
	Certifications CertificationList `json:"certifications"`
}

type Trainer struct {
	ID             ID                `json:"id"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	Email          string            `json:"email"`
	Certifications CertificationList `json:"certifications"`
}

func (t Trainer) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

type Company struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// CompanyLink is the nested company reference some employee records carry.
type CompanyLink struct {
	ID ID `json:"id"`
}

// Employee is a person enrolled through a company. The company reference arrives in one of
// three shapes depending on which endpoint produced the record; see EmployeeCompany.
type Employee struct {
	ID             ID           `json:"id"`
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	Email          string       `json:"email"`
	Position       string       `json:"position"`
	CompanyID      ID           `json:"companyId,omitempty"`
	CompanyIDSnake ID           `json:"company_id,omitempty"`
	Company        *CompanyLink `json:"company,omitempty"`
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// SessionDate is one teaching slot. Date is YYYY-MM-DD, Start/End are HH:MM.
type SessionDate struct {
	Date        string `json:"date" validate:"required,isodate"`
	Start       string `json:"start" validate:"required,hhmm"`
	End         string `json:"end" validate:"required,hhmm"`
	TrainerID   ID     `json:"trainer_id" validate:"notblank"`
	CoTrainerID ID     `json:"co_trainer_id"`
}

// FormState is the editable part of a schedule.
type FormState struct {
	CourseID        ID
	TrainerID       ID
	CoTrainerID     ID
	Dates           []SessionDate
	Location        string
	MaxParticipants int
	Notes           string
	DeliveryMode    string
}

type AttendanceRecord struct {
	Date        string `json:"date"`
	EmployeeIDs IDSet  `json:"employee_ids"`
}

type CompanyRef struct {
	CompanyID ID `json:"companyId"`
}

type Enrollment struct {
	EmployeeID ID `json:"employeeId"`
}

// Schedule is a persisted course schedule. Attendance is kept as received: rows written by
// earlier versions hold other shapes, readers normalize with NormalizeAttendance.
type Schedule struct {
	ID              ID              `json:"id"`
	CourseID        ID              `json:"courseId"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Location        string          `json:"location"`
	MaxParticipants int             `json:"max_participants"`
	Notes           string          `json:"notes"`
	DeliveryMode    string          `json:"delivery_mode"`
	Dates           []SessionDate   `json:"dates"`
	CompanyIDs      IDSet           `json:"company_ids"`
	EmployeeIDs     IDSet           `json:"employee_ids"`
	Attendance      json.RawMessage `json:"attendance"`
	Status          DocumentStatus  `json:"status"`
	CreatedAt       time.Time       `json:"created_at"` // UTC
	UpdatedAt       time.Time       `json:"updated_at"` // UTC
}

// Form rebuilds the editable state of a persisted schedule.
func (s Schedule) Form() FormState {
	dates := make([]SessionDate, len(s.Dates))
	copy(dates, s.Dates)
	f := FormState{
		CourseID:        s.CourseID,
		Dates:           dates,
		Location:        s.Location,
		MaxParticipants: s.MaxParticipants,
		Notes:           s.Notes,
		DeliveryMode:    s.DeliveryMode,
	}
	if len(dates) > 0 {
		f.TrainerID = dates[0].TrainerID
		f.CoTrainerID = dates[0].CoTrainerID
	}
	return f
}

type QueryFilter struct {
	CourseID  ID     `query:"course_id"`
	Status    string `query:"status"`
	CompanyID ID     `query:"company_id"`
	Ordering  string `query:"ordering"`
}

type EmployeeFilter struct {
	CompanyIDs IDSet
	Search     string
}

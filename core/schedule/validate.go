package schedule

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/formazione/core"
)

var (
	// form errors, reported to the user as is
	ErrCourseRequired       = errors.New("Seleziona un corso")
	ErrDatesRequired        = errors.New("Aggiungi almeno una data")
	ErrTrainerRequired      = errors.New("Seleziona un formatore per ogni data")
	ErrDeliveryModeRequired = errors.New("Seleziona la modalità di erogazione")
	ErrCompaniesRequired    = errors.New("Seleziona almeno un'azienda")
	ErrEmployeesRequired    = errors.New("Seleziona almeno un dipendente")
	ErrSessionDateInvalid   = errors.New("Inserisci una data valida (AAAA-MM-GG) per ogni sessione")
	ErrSessionTimeInvalid   = errors.New("Inserisci orari validi (HH:MM) per ogni sessione")
)

type formCheck struct {
	field string
	value func() interface{}
	tag   string
	err   error
}

// ValidateForm runs the checks required before a schedule is created or updated, in a fixed order,
// and returns a *core.ValidationError for the first one failing.
func ValidateForm(validate *validator.Validate, form FormState, companyIDs, employeeIDs IDSet) error {
	checks := []formCheck{
		{"courseId", func() interface{} { return string(form.CourseID) }, "notblank", ErrCourseRequired},
		{"dates", func() interface{} { return form.Dates }, "min=1", ErrDatesRequired},
		{"dates.trainer_id", func() interface{} { return trainerIDs(form.Dates) }, "dive,notblank", ErrTrainerRequired},
		{"delivery_mode", func() interface{} { return form.DeliveryMode }, "notblank", ErrDeliveryModeRequired},
		{"company_ids", func() interface{} { return companyIDs.Strings() }, "min=1", ErrCompaniesRequired},
		{"employee_ids", func() interface{} { return employeeIDs.Strings() }, "min=1", ErrEmployeesRequired},
		{"dates.date", func() interface{} { return sessionDays(form.Dates) }, "dive,isodate", ErrSessionDateInvalid},
		{"dates.time", func() interface{} { return sessionTimes(form.Dates) }, "dive,hhmm", ErrSessionTimeInvalid},
	}

	for _, c := range checks {
		if err := validate.Var(c.value(), c.tag); err != nil {
			if _, ok := err.(validator.ValidationErrors); !ok {
				return errors.Wrap(err, c.field)
			}
			return core.NewValidationError(c.err, core.FieldError{Field: c.field, Error: c.err.Error()})
		}
	}
	return nil
}

func trainerIDs(dates []SessionDate) []string {
	ids := make([]string, len(dates))
	for i, sd := range dates {
		ids[i] = string(sd.TrainerID)
	}
	return ids
}

func sessionDays(dates []SessionDate) []string {
	days := make([]string, len(dates))
	for i, sd := range dates {
		days[i] = sd.Date
	}
	return days
}

func sessionTimes(dates []SessionDate) []string {
	times := make([]string, 0, 2*len(dates))
	for _, sd := range dates {
		times = append(times, sd.Start, sd.End)
	}
	return times
}

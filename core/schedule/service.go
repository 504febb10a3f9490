package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/formazione/core"
)

var (
	// errors
	ErrNotFound       = errors.New("schedule not found")
	ErrCourseNotFound = errors.New("course not found")
	ErrInvalidStatus  = errors.New("invalid document status")
	ErrEmptyPatch     = errors.New("nothing to update")
	ErrUnknownTrainer = errors.New("unknown trainer")

	// OrderingFields are the schedule fields a listing can be ordered by.
	OrderingFields = []string{"start_date", "end_date", "created_at", "updated_at"}

	nowFunc = func() time.Time { return time.Now().UTC() }
)

type (
	Repository interface {
		CreateSchedule(ctx context.Context, sch Schedule) (Schedule, error)
		UpdateSchedule(ctx context.Context, sch Schedule) (Schedule, error)
		GetScheduleByID(ctx context.Context, id ID) (Schedule, error)
		// FilterSchedules applies AND operation on available QueryFilter fields.
		FilterSchedules(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Schedule, error)

		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id ID) (Course, error)
		QueryAllTrainers(ctx context.Context) ([]Trainer, error)
		QueryAllCompanies(ctx context.Context) ([]Company, error)
		// FilterEmployees returns the employees of filter.CompanyIDs (all employees when empty)
		// matching filter.Search on name, email or position.
		FilterEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		mailSvc  core.EmailService
		logger   core.Logger
		appName  string
	}
)

func NewService(repo Repository, validate *validator.Validate, mailSvc core.EmailService, logger core.Logger, appName string) *Service {
	return &Service{repo: repo, validate: validate, mailSvc: mailSvc, logger: logger, appName: appName}
}

func (svc *Service) Create(ctx context.Context, p SchedulePayload) (Schedule, error) {
	course, err := svc.check(ctx, p)
	if err != nil {
		return Schedule{}, err
	}

	sch, err := fromPayload(p)
	if err != nil {
		return Schedule{}, err
	}
	now := nowFunc()
	sch.ID = ID(uuid.New().String())
	sch.CreatedAt = now
	sch.UpdatedAt = now

	sch, err = svc.repo.CreateSchedule(ctx, sch)
	if err != nil {
		return Schedule{}, errors.Wrap(err, "creating schedule")
	}
	svc.notifyTrainers(ctx, sch, course)
	return sch, nil
}

// Update replaces the editable fields of schedule id with p.
func (svc *Service) Update(ctx context.Context, id ID, p SchedulePayload) (Schedule, error) {
	old, err := svc.repo.GetScheduleByID(ctx, id)
	if err != nil {
		return Schedule{}, err
	}
	if _, err := svc.check(ctx, p); err != nil {
		return Schedule{}, err
	}

	sch, err := fromPayload(p)
	if err != nil {
		return Schedule{}, err
	}
	sch.ID = old.ID
	sch.CreatedAt = old.CreatedAt
	sch.UpdatedAt = nowFunc()
	if p.Status == "" {
		sch.Status = old.Status
	}
	return svc.repo.UpdateSchedule(ctx, sch)
}

// Patch applies a partial update to schedule id.
func (svc *Service) Patch(ctx context.Context, id ID, p SchedulePatch) (Schedule, error) {
	if p.IsEmpty() {
		return Schedule{}, core.NewValidationError(ErrEmptyPatch)
	}
	sch, err := svc.repo.GetScheduleByID(ctx, id)
	if err != nil {
		return Schedule{}, err
	}

	if p.Status != nil {
		if !p.Status.Valid() {
			return Schedule{}, invalidStatus()
		}
		sch.Status = *p.Status
	}
	if p.CompanyIDs != nil {
		sch.CompanyIDs = NewIDSet(*p.CompanyIDs...)
	}
	if p.EmployeeIDs != nil {
		sch.EmployeeIDs = NewIDSet(*p.EmployeeIDs...)
	}
	if p.Attendance != nil {
		raw, err := json.Marshal(*p.Attendance)
		if err != nil {
			return Schedule{}, errors.Wrap(err, "encoding attendance")
		}
		sch.Attendance = raw
	}
	sch.UpdatedAt = nowFunc()
	return svc.repo.UpdateSchedule(ctx, sch)
}

func (svc *Service) GetByID(ctx context.Context, id ID) (Schedule, error) {
	return svc.repo.GetScheduleByID(ctx, id)
}

// Filter lists the schedules matching filter, ordered by filter.Ordering (start date by default).
func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Schedule, error) {
	if filter.Status != "" && !DocumentStatus(filter.Status).Valid() {
		return nil, invalidStatus()
	}
	ordering := core.ParseOrdering(filter.Ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "start_date", Ascending: true}}
	}
	return svc.repo.FilterSchedules(ctx, filter, ordering)
}

func (svc *Service) Courses(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) Trainers(ctx context.Context) ([]Trainer, error) {
	return svc.repo.QueryAllTrainers(ctx)
}

func (svc *Service) Companies(ctx context.Context) ([]Company, error) {
	return svc.repo.QueryAllCompanies(ctx)
}

func (svc *Service) Employees(ctx context.Context, filter EmployeeFilter) ([]Employee, error) {
	filter.Search = core.CleanString(filter.Search, true /* lower */)
	return svc.repo.FilterEmployees(ctx, filter)
}

// check validates p and returns the scheduled course.
func (svc *Service) check(ctx context.Context, p SchedulePayload) (Course, error) {
	if err := svc.validate.Struct(p); err != nil {
		return Course{}, err
	}
	if p.Status != "" && !p.Status.Valid() {
		return Course{}, invalidStatus()
	}
	course, err := svc.repo.GetCourseByID(ctx, p.CourseID)
	if err != nil {
		if errors.Cause(err) == ErrCourseNotFound {
			return Course{}, core.NewValidationError(err, core.FieldError{Field: "courseId", Error: err.Error()})
		}
		return Course{}, err
	}
	return course, nil
}

func invalidStatus() error {
	return core.NewValidationError(ErrInvalidStatus, core.FieldError{Field: "status", Error: ErrInvalidStatus.Error()})
}

func fromPayload(p SchedulePayload) (Schedule, error) {
	records := p.Attendance
	if records == nil {
		records = []AttendanceRecord{}
	}
	attendance, err := json.Marshal(records)
	if err != nil {
		return Schedule{}, errors.Wrap(err, "encoding attendance")
	}

	dates := make([]SessionDate, len(p.Dates))
	copy(dates, p.Dates)

	status := p.Status
	if status == "" {
		status = DefaultStatus
	}

	return Schedule{
		CourseID:        p.CourseID,
		StartDate:       p.StartDate.Time().UTC(),
		EndDate:         p.EndDate.Time().UTC(),
		Location:        p.Location,
		MaxParticipants: p.MaxParticipants,
		Notes:           p.Notes,
		DeliveryMode:    p.DeliveryMode,
		Dates:           dates,
		CompanyIDs:      p.SelectedCompanies(),
		EmployeeIDs:     p.SelectedEmployees(),
		Attendance:      attendance,
		Status:          status,
	}, nil
}

type sessionData struct {
	Date  string
	Start string
	End   string
}

type scheduleCreatedData struct {
	TrainerName  string
	CourseTitle  string
	DeliveryMode string
	Location     string
	Sessions     []sessionData
}

// notifyTrainers emails every trainer and co-trainer their sessions of a new schedule.
// Failures are logged, the schedule is already stored.
func (svc *Service) notifyTrainers(ctx context.Context, sch Schedule, course Course) {
	if svc.mailSvc == nil {
		return
	}
	trainers, err := svc.repo.QueryAllTrainers(ctx)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("notifying trainers of schedule %s: %v", sch.ID, err), err)
		return
	}

	byID := make(map[ID]Trainer, len(trainers))
	for _, t := range trainers {
		byID[t.ID] = t
	}

	sessions := make(map[ID][]sessionData)
	order := IDSet{}
	for _, sd := range sch.Dates {
		for _, tid := range NewIDSet(sd.TrainerID, sd.CoTrainerID) {
			order = order.Add(tid)
			sessions[tid] = append(sessions[tid], sessionData{Date: sd.Date, Start: sd.Start, End: sd.End})
		}
	}

	messages := make([]*core.EmailMessage, 0, len(order))
	for _, tid := range order {
		t, ok := byID[tid]
		if !ok || t.Email == "" {
			svc.logger.Warn(fmt.Sprintf("schedule %s: %v %s", sch.ID, ErrUnknownTrainer, tid))
			continue
		}
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: t.FullName(), Address: t.Email}},
			Subject:      "Nuovo corso programmato: " + course.Title,
			TemplateName: "schedule_created",
			AppName:      svc.appName,
			TemplateData: scheduleCreatedData{
				TrainerName:  t.FullName(),
				CourseTitle:  course.Title,
				DeliveryMode: sch.DeliveryMode,
				Location:     sch.Location,
				Sessions:     sessions[tid],
			},
		})
	}
	if len(messages) > 0 {
		svc.mailSvc.SendMessages(messages...)
	}
}

package wizard

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/formazione/core"
	"github.com/trezcool/formazione/core/schedule"
)

const (
	DefaultAutosaveDelay  = 2 * time.Second
	DefaultGatewayTimeout = 10 * time.Second

	// user facing error prefixes
	ScheduleErrorContext   = "Errore durante la programmazione del corso"
	AttendanceErrorContext = "Errore nel salvataggio delle presenze"
	DocumentsErrorContext  = "Errore salvando documenti"
)

var (
	ErrStepLocked          = errors.New("step locked until the schedule is stored")
	ErrStepOutOfRange      = errors.New("no such step")
	ErrActionInFlight      = errors.New("action already in progress")
	ErrNotScheduled        = errors.New("schedule not stored yet")
	ErrClosed              = errors.New("wizard closed")
	ErrSessionOutOfRange   = errors.New("no such session")
	ErrCompanyNotSelected  = errors.New("the employee's company is not selected")
	ErrUnknownEmployee     = errors.New("unknown employee")
	ErrEmployeeNotEnrolled = errors.New("employee not selected")
)

type action int

const (
	actionSchedule action = iota
	actionAttendance
	actionDocuments
)

type Options struct {
	Gateway   Gateway
	Directory Directory   // optional, employees are filtered from Catalog.Employees without it
	Statuses  StatusStore // optional, in memory by default
	Logger    core.Logger // optional, stderr by default
	Validate  *validator.Validate
	Catalog   Catalog

	Location       *time.Location // session dates time zone, UTC by default
	AutosaveDelay  time.Duration
	GatewayTimeout time.Duration // bounds the auto-save calls

	Now       func() time.Time
	Debouncer *Debouncer
}

// Wizard walks a user through scheduling a course: details, participants, attendance and
// documents. All methods are safe for concurrent use; remote calls are made without holding
// the wizard lock.
type Wizard struct {
	mu sync.Mutex

	gateway   Gateway
	directory Directory
	statuses  StatusStore
	logger    core.Logger
	validate  *validator.Validate
	catalog   Catalog
	loc       *time.Location
	timeout   time.Duration
	now       func() time.Time
	autosave  *Debouncer

	steps            StepMachine
	form             schedule.FormState
	companyIDs       schedule.IDSet
	employeeIDs      schedule.IDSet
	activeCompany    schedule.ID
	search           string
	employees        []schedule.Employee
	fetchSeq         uint64
	attendance       schedule.AttendanceMap
	filledSessions   int // sessions already given the default attendance
	scheduleID       schedule.ID
	hasScheduled     bool
	status           schedule.DocumentStatus
	errMsg           string
	inFlight         map[action]bool
	closed           bool
}

func newWizard(opts Options) *Wizard {
	w := &Wizard{
		gateway:     opts.Gateway,
		directory:   opts.Directory,
		statuses:    opts.Statuses,
		logger:      opts.Logger,
		validate:    opts.Validate,
		catalog:     opts.Catalog,
		loc:         opts.Location,
		timeout:     opts.GatewayTimeout,
		now:         opts.Now,
		autosave:    opts.Debouncer,
		companyIDs:  schedule.IDSet{},
		employeeIDs: schedule.IDSet{},
		employees:   []schedule.Employee{},
		attendance:  schedule.AttendanceMap{},
		status:      schedule.DefaultStatus,
		inFlight:    make(map[action]bool),
	}
	if w.statuses == nil {
		w.statuses = NewMemoryStatusStore()
	}
	if w.logger == nil {
		w.logger = core.NewStdLogger(log.New(os.Stderr, "WIZARD : ", log.LstdFlags|log.Lmicroseconds))
	}
	if w.validate == nil {
		w.validate, _ = core.NewValidator()
	}
	if w.loc == nil {
		w.loc = time.UTC
	}
	if w.timeout <= 0 {
		w.timeout = DefaultGatewayTimeout
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.autosave == nil {
		delay := opts.AutosaveDelay
		if delay <= 0 {
			delay = DefaultAutosaveDelay
		}
		w.autosave = NewDebouncer(delay)
	}
	return w
}

// New starts a wizard for a new schedule with a single default session.
func New(opts Options) *Wizard {
	w := newWizard(opts)
	w.form.Dates = []schedule.SessionDate{schedule.DefaultSessionDate(w.now().In(w.loc), "", "")}
	return w
}

// Edit starts a wizard on a stored schedule. A cached document status wins over the stored one.
func Edit(ctx context.Context, opts Options, sch schedule.Schedule) *Wizard {
	w := newWizard(opts)
	w.form = sch.Form()
	w.companyIDs = schedule.NewIDSet(sch.CompanyIDs...)
	w.employeeIDs = schedule.NewIDSet(sch.EmployeeIDs...)
	w.attendance = schedule.NormalizeAttendance(sch.Attendance)
	w.scheduleID = sch.ID
	w.hasScheduled = !sch.ID.IsZero()
	if sch.Status.Valid() {
		w.status = sch.Status
	}
	if cached, ok, err := w.statuses.GetStatus(sch.ID); err != nil {
		w.logger.Warn(fmt.Sprintf("reading cached status of %s: %v", sch.ID, err), err)
	} else if ok && cached.Valid() {
		w.status = cached
	}
	w.syncActiveCompany()
	w.refreshEmployees(ctx)
	return w
}

// Close discards the wizard; a pending auto-save is dropped.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.autosave.Stop()
}

// Error is the message to show to the user, empty when the last action succeeded.
func (w *Wizard) Error() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

func (w *Wizard) ClearError() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errMsg = ""
}

func (w *Wizard) ScheduleID() schedule.ID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scheduleID
}

func (w *Wizard) HasScheduled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hasScheduled
}

// Navigation

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps.Current()
}

// StepUnlocked reports whether the step pill for step is clickable.
func (w *Wizard) StepUnlocked(step Step) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Unlocked(step, w.hasScheduled)
}

func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.goTo(w.steps.Current() + 1)
}

func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.goTo(w.steps.Current() - 1)
}

// GoTo jumps to any unlocked step.
func (w *Wizard) GoTo(step Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.goTo(step)
}

func (w *Wizard) goTo(step Step) error {
	if w.closed {
		return ErrClosed
	}
	if !step.Valid() {
		return ErrStepOutOfRange
	}
	if !Unlocked(step, w.hasScheduled) {
		return ErrStepLocked
	}
	w.errMsg = ""
	if step == w.steps.Current() {
		return nil
	}
	w.steps.Set(step)
	if step == StepAttendance {
		w.fillAttendance()
	}
	w.rescheduleAutosave()
	return nil
}

// fillAttendance gives the sessions reaching the Attendance step for the first time the whole
// selection when nobody is marked yet. Sessions defaulted on an earlier visit keep what the user set.
func (w *Wizard) fillAttendance() {
	n := len(w.form.Dates)
	w.attendance = w.attendance.Fill(w.filledSessions, n, w.employeeIDs)
	if n > w.filledSessions {
		w.filledSessions = n
	}
}

// Form data

func (w *Wizard) Form() schedule.FormState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form.Clone()
}

// update applies fn to the form, unless the wizard is closed.
func (w *Wizard) update(fn func(f schedule.FormState) schedule.FormState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.errMsg = ""
	w.form = fn(w.form)
}

func (w *Wizard) SetCourse(id schedule.ID) {
	w.update(func(f schedule.FormState) schedule.FormState { f.CourseID = id; return f })
}

func (w *Wizard) SetDeliveryMode(mode string) {
	w.update(func(f schedule.FormState) schedule.FormState { f.DeliveryMode = mode; return f })
}

func (w *Wizard) SetLocation(location string) {
	w.update(func(f schedule.FormState) schedule.FormState { f.Location = location; return f })
}

func (w *Wizard) SetMaxParticipants(n int) {
	w.update(func(f schedule.FormState) schedule.FormState { f.MaxParticipants = n; return f })
}

func (w *Wizard) SetNotes(notes string) {
	w.update(func(f schedule.FormState) schedule.FormState { f.Notes = notes; return f })
}

// SetTrainer sets the default trainer and assigns it to the sessions that have none.
func (w *Wizard) SetTrainer(id schedule.ID) {
	w.update(func(f schedule.FormState) schedule.FormState {
		f.TrainerID = id
		for i, sd := range f.Dates {
			if sd.TrainerID.IsZero() {
				f = f.UpdateDate(i, schedule.FieldTrainer, id.String())
			}
		}
		return f
	})
}

// SetCoTrainer sets the default co-trainer and assigns it to the sessions that have none.
func (w *Wizard) SetCoTrainer(id schedule.ID) {
	w.update(func(f schedule.FormState) schedule.FormState {
		f.CoTrainerID = id
		for i, sd := range f.Dates {
			if sd.CoTrainerID.IsZero() {
				f = f.UpdateDate(i, schedule.FieldCoTrainer, id.String())
			}
		}
		return f
	})
}

// AddDate appends a session; it reports false once the maximum number of sessions is reached.
func (w *Wizard) AddDate() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	w.errMsg = ""
	form, ok := w.form.AddDate(w.now().In(w.loc))
	w.form = form
	return ok
}

// RemoveDate drops session i and the attendance recorded for it.
func (w *Wizard) RemoveDate(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if i < 0 || i >= len(w.form.Dates) {
		return ErrSessionOutOfRange
	}
	w.errMsg = ""
	w.form = w.form.RemoveDate(i)
	w.attendance = w.attendance.RemoveSession(i)
	if i < w.filledSessions {
		w.filledSessions--
	}
	return nil
}

func (w *Wizard) UpdateDate(i int, field schedule.SessionField, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if i < 0 || i >= len(w.form.Dates) {
		return ErrSessionOutOfRange
	}
	w.errMsg = ""
	w.form = w.form.UpdateDate(i, field, value)
	return nil
}

// Derived values

// Course is the selected course, if it is in the catalog.
func (w *Wizard) Course() (schedule.Course, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.catalog.Course(w.form.CourseID)
}

func (w *Wizard) requiredCertifications() schedule.CertificationList {
	course, ok := w.catalog.Course(w.form.CourseID)
	if !ok {
		return schedule.CertificationList{}
	}
	return schedule.RequiredCertifications(&course)
}

func (w *Wizard) RequiredCertifications() schedule.CertificationList {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.requiredCertifications()
}

// Trainers lists the trainers qualified for the selected course.
func (w *Wizard) Trainers() []schedule.Trainer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return schedule.FilterTrainers(w.catalog.Trainers, w.requiredCertifications())
}

// SessionTrainers lists the trainers selectable for session i.
func (w *Wizard) SessionTrainers(i int) ([]schedule.Trainer, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.form.Dates) {
		return nil, ErrSessionOutOfRange
	}
	return schedule.SessionTrainerOptions(w.catalog.Trainers, w.requiredCertifications(), w.form.Dates[i]), nil
}

func (w *Wizard) TotalHours() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return schedule.TotalHours(w.form.Dates)
}

// HoursLeft compares the scheduled hours with the course duration.
func (w *Wizard) HoursLeft() (float64, schedule.HoursBalance) {
	w.mu.Lock()
	defer w.mu.Unlock()
	course, _ := w.catalog.Course(w.form.CourseID)
	return schedule.HoursLeft(course.Duration, w.form.Dates), schedule.Balance(course.Duration, w.form.Dates)
}

// Selections

func (w *Wizard) CompanyIDs() schedule.IDSet {
	w.mu.Lock()
	defer w.mu.Unlock()
	return schedule.NewIDSet(w.companyIDs...)
}

func (w *Wizard) EmployeeIDs() schedule.IDSet {
	w.mu.Lock()
	defer w.mu.Unlock()
	return schedule.NewIDSet(w.employeeIDs...)
}

func (w *Wizard) ActiveCompany() schedule.ID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeCompany
}

// SetActiveCompany selects the company tab of the employee panel.
func (w *Wizard) SetActiveCompany(id schedule.ID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.errMsg = ""
	if !w.companyIDs.Has(id) {
		return ErrCompanyNotSelected
	}
	w.activeCompany = id
	return nil
}

// Employees lists the employees of the selected companies matching the search.
func (w *Wizard) Employees() []schedule.Employee {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]schedule.Employee{}, w.employees...)
}

// ActiveEmployees lists the employees shown under the active company tab.
func (w *Wizard) ActiveEmployees() []schedule.Employee {
	w.mu.Lock()
	defer w.mu.Unlock()
	return schedule.FilterEmployees(w.employees, schedule.EmployeeFilter{CompanyIDs: schedule.NewIDSet(w.activeCompany)})
}

// ToggleCompany selects or deselects a company. Deselecting removes the company's employees from
// the selection; the employee list is then refreshed.
func (w *Wizard) ToggleCompany(ctx context.Context, id schedule.ID) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.errMsg = ""
	if w.companyIDs.Has(id) {
		w.deselectCompany(id)
	} else {
		w.companyIDs = w.companyIDs.Add(id)
	}
	w.syncActiveCompany()
	w.mu.Unlock()

	w.refreshEmployees(ctx)
	return nil
}

func (w *Wizard) deselectCompany(id schedule.ID) {
	w.companyIDs = w.companyIDs.Remove(id)

	ids := schedule.EmployeeIDsForCompany(w.employees, id)
	for _, eid := range schedule.EmployeeIDsForCompany(w.catalog.Employees, id) {
		ids = ids.Add(eid)
	}
	w.employeeIDs = w.employeeIDs.Remove(ids...)
	w.attendance = w.attendance.Restrict(w.employeeIDs)
}

// syncActiveCompany keeps the active tab within the selected companies.
func (w *Wizard) syncActiveCompany() {
	switch {
	case w.companyIDs.Len() == 0:
		w.activeCompany = ""
	case !w.companyIDs.Has(w.activeCompany):
		w.activeCompany = w.companyIDs[0]
	}
}

// Search filters the employee list on name, email or position.
func (w *Wizard) Search(ctx context.Context, search string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.errMsg = ""
	w.search = search
	w.mu.Unlock()

	w.refreshEmployees(ctx)
}

// refreshEmployees reloads the employee list for the current companies and search. The directory
// is asked first; the catalog is filtered locally when it fails. Responses superseded by a later
// refresh are discarded. Must be called without holding the lock.
func (w *Wizard) refreshEmployees(ctx context.Context) {
	w.mu.Lock()
	w.fetchSeq++
	seq := w.fetchSeq
	filter := schedule.EmployeeFilter{CompanyIDs: schedule.NewIDSet(w.companyIDs...), Search: w.search}
	catalog := w.catalog.Employees
	w.mu.Unlock()

	var (
		employees []schedule.Employee
		err       error
	)
	switch {
	case filter.CompanyIDs.Len() == 0:
		employees = []schedule.Employee{}
	case w.directory == nil:
		employees = schedule.FilterEmployees(catalog, filter)
	default:
		employees, err = w.directory.EmployeesByCompanies(ctx, filter.CompanyIDs, filter.Search)
		if err != nil {
			w.logger.Warn(fmt.Sprintf("fetching employees, filtering locally: %v", err), err)
			employees = schedule.FilterEmployees(catalog, filter)
		} else {
			// the directory may return more than asked for
			employees = schedule.FilterEmployees(employees, filter)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.fetchSeq {
		return
	}
	w.employees = employees
}

// ToggleEmployee selects or deselects an employee. Only employees of a selected company can be selected.
func (w *Wizard) ToggleEmployee(id schedule.ID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.errMsg = ""

	if w.employeeIDs.Has(id) {
		w.employeeIDs = w.employeeIDs.Remove(id)
		w.attendance = w.attendance.Restrict(w.employeeIDs)
		return nil
	}

	e, ok := schedule.FindEmployee(w.employees, id)
	if !ok {
		if e, ok = schedule.FindEmployee(w.catalog.Employees, id); !ok {
			return ErrUnknownEmployee
		}
	}
	if !w.companyIDs.Has(schedule.EmployeeCompany(e)) {
		return ErrCompanyNotSelected
	}
	w.employeeIDs = w.employeeIDs.Add(id)
	return nil
}

// SelectAllEmployees selects every listed employee of the active company.
func (w *Wizard) SelectAllEmployees() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.errMsg = ""
	if w.activeCompany.IsZero() {
		return
	}
	for _, id := range schedule.EmployeeIDsForCompany(w.employees, w.activeCompany) {
		w.employeeIDs = w.employeeIDs.Add(id)
	}
}

// Attendance

func (w *Wizard) Attendance() schedule.AttendanceMap {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attendance.Clone()
}

// ToggleAttendance marks a selected employee present or absent at session i.
func (w *Wizard) ToggleAttendance(i int, id schedule.ID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if i < 0 || i >= len(w.form.Dates) {
		return ErrSessionOutOfRange
	}
	if !w.employeeIDs.Has(id) {
		return ErrEmployeeNotEnrolled
	}
	w.errMsg = ""
	w.attendance = w.attendance.Toggle(i, id)
	return nil
}

// Document status

func (w *Wizard) DocumentStatus() schedule.DocumentStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Remote actions

func (w *Wizard) draft() schedule.Draft {
	return schedule.Draft{
		ID:          w.scheduleID,
		Form:        w.form.Clone(),
		CompanyIDs:  schedule.NewIDSet(w.companyIDs...),
		EmployeeIDs: schedule.NewIDSet(w.employeeIDs...),
		Attendance:  w.attendance.Clone(),
		Status:      w.status,
	}
}

// begin marks act in flight. The returned func ends it.
func (w *Wizard) begin(act action) (func(), error) {
	if w.closed {
		return nil, ErrClosed
	}
	if w.inFlight[act] {
		return nil, ErrActionInFlight
	}
	w.inFlight[act] = true
	w.errMsg = ""
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.inFlight, act)
	}, nil
}

// Loading reports whether the Schedule action is in progress.
func (w *Wizard) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight[actionSchedule]
}

// fail records err as the user facing error, prefixed by msgContext.
func (w *Wizard) fail(msgContext string, err error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errMsg = msgContext + ": " + err.Error()
	return errors.Wrap(err, msgContext)
}

// Schedule validates the form and stores the schedule: created the first time, fully updated
// afterwards. Once stored, attendance and documents are unlocked.
func (w *Wizard) Schedule(ctx context.Context) error {
	w.mu.Lock()
	done, err := w.begin(actionSchedule)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	defer done()

	if err := schedule.ValidateForm(w.validate, w.form, w.companyIDs, w.employeeIDs); err != nil {
		w.errMsg = err.Error()
		w.mu.Unlock()
		return err
	}
	d := w.draft()
	w.mu.Unlock()

	p, err := d.Payload(w.loc)
	if err != nil {
		return w.fail(ScheduleErrorContext, err)
	}

	id := d.ID
	if id.IsZero() {
		if id, err = w.gateway.CreateSchedule(ctx, p); err != nil {
			return w.fail(ScheduleErrorContext, err)
		}
	} else if err = w.gateway.UpdateSchedule(ctx, id, p); err != nil {
		return w.fail(ScheduleErrorContext, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduleID = id
	w.hasScheduled = true
	w.rescheduleAutosave()
	return nil
}

// SaveAttendance stores the attendance with the current selections.
func (w *Wizard) SaveAttendance(ctx context.Context) error {
	w.mu.Lock()
	done, err := w.begin(actionAttendance)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	defer done()
	if !w.hasScheduled || w.scheduleID.IsZero() {
		w.mu.Unlock()
		return w.fail(AttendanceErrorContext, ErrNotScheduled)
	}
	d := w.draft()
	w.mu.Unlock()

	if err := w.gateway.PatchSchedule(ctx, d.ID, d.AttendancePatch()); err != nil {
		return w.fail(AttendanceErrorContext, err)
	}
	return nil
}

// SetDocumentStatus changes the document status and stores it right away.
func (w *Wizard) SetDocumentStatus(ctx context.Context, status schedule.DocumentStatus) error {
	if !status.Valid() {
		return schedule.ErrInvalidStatus
	}
	return w.saveDocuments(ctx, &status)
}

// SaveDocuments stores the document status along with the attendance and the selections.
func (w *Wizard) SaveDocuments(ctx context.Context) error {
	return w.saveDocuments(ctx, nil)
}

func (w *Wizard) saveDocuments(ctx context.Context, status *schedule.DocumentStatus) error {
	w.mu.Lock()
	done, err := w.begin(actionDocuments)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	defer done()
	if !w.hasScheduled || w.scheduleID.IsZero() {
		w.mu.Unlock()
		return w.fail(DocumentsErrorContext, ErrNotScheduled)
	}
	if status != nil {
		w.status = *status
	}
	d := w.draft()
	w.mu.Unlock()

	if err := w.statuses.SetStatus(d.ID, d.Status); err != nil {
		w.logger.Warn(fmt.Sprintf("caching status of %s: %v", d.ID, err), err)
	}

	patch := d.DocumentsPatch()
	if status != nil {
		patch = schedule.StatusPatch(d.Status)
	}
	if err := w.gateway.PatchSchedule(ctx, d.ID, patch); err != nil {
		return w.fail(DocumentsErrorContext, err)
	}
	return nil
}

// Auto-save

// rescheduleAutosave restarts the auto-save delay while the schedule is stored and the user is
// not on the attendance step, and cancels it otherwise. Called with the lock held whenever the
// step, the schedule id or the stored flag change.
func (w *Wizard) rescheduleAutosave() {
	if w.closed || w.scheduleID.IsZero() || !w.hasScheduled || w.steps.Current() == StepAttendance {
		w.autosave.Cancel()
		return
	}
	w.autosave.Schedule(w.autosaveAttendance)
}

// autosaveAttendance sends the attendance as it is when the delay expires. Failures are only logged.
func (w *Wizard) autosaveAttendance() {
	w.mu.Lock()
	if w.closed || w.scheduleID.IsZero() {
		w.mu.Unlock()
		return
	}
	d := w.draft()
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.gateway.PatchSchedule(ctx, d.ID, d.AttendancePatch()); err != nil {
		w.logger.Error(fmt.Sprintf("auto-saving attendance of %s: %v", d.ID, err), err)
	}
}

// AutosavePending reports whether an auto-save is waiting for its delay.
func (w *Wizard) AutosavePending() bool {
	return w.autosave.Pending()
}

// FlushAutosave runs a pending auto-save now.
func (w *Wizard) FlushAutosave() bool {
	return w.autosave.Flush()
}

package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/formazione/core"
	"github.com/trezcool/formazione/core/schedule"
)

const scheduleColumns = `id, course_id, start_date, end_date, location, max_participants, notes, delivery_mode,
	dates, company_ids, employee_ids, attendance, status, created_at, updated_at`

type (
	scheduleRow struct {
		ID              string         `db:"id"`
		CourseID        string         `db:"course_id"`
		StartDate       null.Time      `db:"start_date"`
		EndDate         null.Time      `db:"end_date"`
		Location        null.String    `db:"location"`
		MaxParticipants null.Int       `db:"max_participants"`
		Notes           null.String    `db:"notes"`
		DeliveryMode    string         `db:"delivery_mode"`
		Dates           types.JSONText `db:"dates"`
		CompanyIDs      types.JSONText `db:"company_ids"`
		EmployeeIDs     types.JSONText `db:"employee_ids"`
		Attendance      types.JSONText `db:"attendance"`
		Status          string         `db:"status"`
		CreatedAt       time.Time      `db:"created_at"`
		UpdatedAt       time.Time      `db:"updated_at"`
	}

	courseRow struct {
		ID             string      `db:"id"`
		Title          string      `db:"title"`
		Code           null.String `db:"code"`
		Duration       float64     `db:"duration"`
		Certifications null.String `db:"certifications"`
	}

	trainerRow struct {
		ID             string      `db:"id"`
		FirstName      string      `db:"first_name"`
		LastName       string      `db:"last_name"`
		Email          null.String `db:"email"`
		Certifications null.String `db:"certifications"`
	}

	employeeRow struct {
		ID        string      `db:"id"`
		CompanyID string      `db:"company_id"`
		FirstName string      `db:"first_name"`
		LastName  string      `db:"last_name"`
		Email     null.String `db:"email"`
		Position  null.String `db:"position"`
	}

	scheduleRepository struct {
		db *sqlx.DB
	}
)

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sqlx.DB) *scheduleRepository {
	return &scheduleRepository{db: db}
}

func toRow(sch schedule.Schedule) (scheduleRow, error) {
	dates, err := jsonText(sch.Dates)
	if err != nil {
		return scheduleRow{}, errors.Wrap(err, "encoding dates")
	}
	companies, err := jsonText(sch.CompanyIDs)
	if err != nil {
		return scheduleRow{}, errors.Wrap(err, "encoding company ids")
	}
	employees, err := jsonText(sch.EmployeeIDs)
	if err != nil {
		return scheduleRow{}, errors.Wrap(err, "encoding employee ids")
	}
	attendance := types.JSONText(sch.Attendance)
	if len(attendance) == 0 {
		attendance = types.JSONText("[]")
	}
	if !json.Valid(attendance) {
		return scheduleRow{}, errors.New("encoding attendance: invalid json")
	}

	return scheduleRow{
		ID:              sch.ID.String(),
		CourseID:        sch.CourseID.String(),
		StartDate:       null.NewTime(sch.StartDate.UTC(), !sch.StartDate.IsZero()),
		EndDate:         null.NewTime(sch.EndDate.UTC(), !sch.EndDate.IsZero()),
		Location:        null.NewString(sch.Location, sch.Location != ""),
		MaxParticipants: null.IntFrom(sch.MaxParticipants),
		Notes:           null.NewString(sch.Notes, sch.Notes != ""),
		DeliveryMode:    sch.DeliveryMode,
		Dates:           dates,
		CompanyIDs:      companies,
		EmployeeIDs:     employees,
		Attendance:      attendance,
		Status:          string(sch.Status),
		CreatedAt:       sch.CreatedAt.UTC(),
		UpdatedAt:       sch.UpdatedAt.UTC(),
	}, nil
}

func (row scheduleRow) schedule() (schedule.Schedule, error) {
	sch := schedule.Schedule{
		ID:              schedule.ID(row.ID),
		CourseID:        schedule.ID(row.CourseID),
		StartDate:       row.StartDate.Time,
		EndDate:         row.EndDate.Time,
		Location:        row.Location.String,
		MaxParticipants: row.MaxParticipants.Int,
		Notes:           row.Notes.String,
		DeliveryMode:    row.DeliveryMode,
		Attendance:      []byte(row.Attendance),
		Status:          schedule.DocumentStatus(row.Status),
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
	if err := row.Dates.Unmarshal(&sch.Dates); err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "decoding dates")
	}
	if err := row.CompanyIDs.Unmarshal(&sch.CompanyIDs); err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "decoding company ids")
	}
	if err := row.EmployeeIDs.Unmarshal(&sch.EmployeeIDs); err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "decoding employee ids")
	}
	return sch, nil
}

func jsonText(v interface{}) (types.JSONText, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return types.JSONText(b), nil
}

// trapNoRowsErr maps psql "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo *scheduleRepository) CreateSchedule(ctx context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	row, err := toRow(sch)
	if err != nil {
		return schedule.Schedule{}, err
	}
	q := `INSERT INTO schedule (` + scheduleColumns + `) VALUES (
		:id, :course_id, :start_date, :end_date, :location, :max_participants, :notes, :delivery_mode,
		:dates, :company_ids, :employee_ids, :attendance, :status, :created_at, :updated_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "inserting schedule")
	}
	return row.schedule()
}

func (repo *scheduleRepository) UpdateSchedule(ctx context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	row, err := toRow(sch)
	if err != nil {
		return schedule.Schedule{}, err
	}
	q := `UPDATE schedule SET
		course_id = :course_id, start_date = :start_date, end_date = :end_date, location = :location,
		max_participants = :max_participants, notes = :notes, delivery_mode = :delivery_mode, dates = :dates,
		company_ids = :company_ids, employee_ids = :employee_ids, attendance = :attendance, status = :status,
		updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "updating schedule")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	return repo.GetScheduleByID(ctx, sch.ID)
}

func (repo *scheduleRepository) GetScheduleByID(ctx context.Context, id schedule.ID) (schedule.Schedule, error) {
	var row scheduleRow
	q := `SELECT ` + scheduleColumns + ` FROM schedule WHERE id::text = $1`
	if err := repo.db.GetContext(ctx, &row, q, id.String()); err != nil {
		return schedule.Schedule{}, trapNoRowsErr(err, schedule.ErrNotFound, "finding schedule by ID")
	}
	return row.schedule()
}

func (repo *scheduleRepository) FilterSchedules(ctx context.Context, filter schedule.QueryFilter, ordering []core.DBOrdering) ([]schedule.Schedule, error) {
	var (
		where []string
		args  []interface{}
	)
	if !filter.CourseID.IsZero() {
		where = append(where, "course_id = ?")
		args = append(args, filter.CourseID.String())
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if !filter.CompanyID.IsZero() {
		company, err := jsonText([]string{filter.CompanyID.String()})
		if err != nil {
			return nil, errors.Wrap(err, "encoding company filter")
		}
		where = append(where, "company_ids @> ?::jsonb")
		args = append(args, company.String())
	}

	q := `SELECT ` + scheduleColumns + ` FROM schedule`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		q += " ORDER BY " + strings.Join(orderList, ", ")
	}

	var rows []scheduleRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying schedules")
	}
	schedules := make([]schedule.Schedule, 0, len(rows))
	for _, row := range rows {
		sch, err := row.schedule()
		if err != nil {
			return nil, errors.Wrapf(err, "schedule %s", row.ID)
		}
		schedules = append(schedules, sch)
	}
	return schedules, nil
}

func (row courseRow) course() schedule.Course {
	return schedule.Course{
		ID:             schedule.ID(row.ID),
		Title:          row.Title,
		Code:           row.Code.String,
		Duration:       row.Duration,
		Certifications: schedule.ParseCertifications(row.Certifications.String),
	}
}

func (repo *scheduleRepository) QueryAllCourses(ctx context.Context) ([]schedule.Course, error) {
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT id, title, code, duration, certifications FROM course ORDER BY title`); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]schedule.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.course())
	}
	return courses, nil
}

func (repo *scheduleRepository) GetCourseByID(ctx context.Context, id schedule.ID) (schedule.Course, error) {
	var row courseRow
	q := `SELECT id, title, code, duration, certifications FROM course WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id.String()); err != nil {
		return schedule.Course{}, trapNoRowsErr(err, schedule.ErrCourseNotFound, "finding course by ID")
	}
	return row.course(), nil
}

func (repo *scheduleRepository) QueryAllTrainers(ctx context.Context) ([]schedule.Trainer, error) {
	var rows []trainerRow
	q := `SELECT id, first_name, last_name, email, certifications FROM trainer ORDER BY last_name, first_name`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying trainers")
	}
	trainers := make([]schedule.Trainer, 0, len(rows))
	for _, row := range rows {
		trainers = append(trainers, schedule.Trainer{
			ID:             schedule.ID(row.ID),
			FirstName:      row.FirstName,
			LastName:       row.LastName,
			Email:          row.Email.String,
			Certifications: schedule.ParseCertifications(row.Certifications.String),
		})
	}
	return trainers, nil
}

func (repo *scheduleRepository) QueryAllCompanies(ctx context.Context) ([]schedule.Company, error) {
	companies := make([]schedule.Company, 0)
	if err := repo.db.SelectContext(ctx, &companies, `SELECT id, name FROM company ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying companies")
	}
	return companies, nil
}

func (repo *scheduleRepository) FilterEmployees(ctx context.Context, filter schedule.EmployeeFilter) ([]schedule.Employee, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.CompanyIDs.Len() > 0 {
		where = append(where, "company_id IN (?)")
		args = append(args, filter.CompanyIDs.Strings())
	}
	// employees with name, email or position matching the search keyword
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		where = append(where, "(first_name || ' ' || last_name ILIKE ? OR email ILIKE ? OR position ILIKE ?)")
		args = append(args, val, val, val)
	}

	q := `SELECT id, company_id, first_name, last_name, email, position FROM employee`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY last_name, first_name"

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "building employees query")
	}
	var rows []employeeRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying employees")
	}

	employees := make([]schedule.Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, schedule.Employee{
			ID:        schedule.ID(row.ID),
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Email:     row.Email.String,
			Position:  row.Position.String,
			CompanyID: schedule.ID(row.CompanyID),
		})
	}
	return employees, nil
}

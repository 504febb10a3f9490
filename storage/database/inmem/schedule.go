package inmemdb

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/formazione/core"
	"github.com/trezcool/formazione/core/schedule"
)

type scheduleRepository struct {
	db *DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) *scheduleRepository {
	return &scheduleRepository{db: db}
}

// copySchedule detaches sch from the stored value.
func copySchedule(sch schedule.Schedule) schedule.Schedule {
	out := sch
	out.Dates = append([]schedule.SessionDate(nil), sch.Dates...)
	out.CompanyIDs = schedule.NewIDSet(sch.CompanyIDs...)
	out.EmployeeIDs = schedule.NewIDSet(sch.EmployeeIDs...)
	out.Attendance = append(json.RawMessage(nil), sch.Attendance...)
	return out
}

func (repo *scheduleRepository) CreateSchedule(_ context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored := copySchedule(sch)
	repo.db.schedules[sch.ID] = &stored
	return copySchedule(stored), nil
}

func (repo *scheduleRepository) UpdateSchedule(_ context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.schedules[sch.ID]; !ok {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	stored := copySchedule(sch)
	repo.db.schedules[sch.ID] = &stored
	return copySchedule(stored), nil
}

func (repo *scheduleRepository) GetScheduleByID(_ context.Context, id schedule.ID) (schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sch, ok := repo.db.schedules[id]; ok {
		return copySchedule(*sch), nil
	}
	return schedule.Schedule{}, schedule.ErrNotFound
}

func (repo *scheduleRepository) FilterSchedules(_ context.Context, filter schedule.QueryFilter, ordering []core.DBOrdering) ([]schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	schedules := make([]schedule.Schedule, 0, len(repo.db.schedules))
	for _, sch := range repo.db.schedules {
		if !filter.CourseID.IsZero() && sch.CourseID != filter.CourseID {
			continue
		}
		if filter.Status != "" && string(sch.Status) != filter.Status {
			continue
		}
		if !filter.CompanyID.IsZero() && !sch.CompanyIDs.Has(filter.CompanyID) {
			continue
		}
		schedules = append(schedules, copySchedule(*sch))
	}

	sort.SliceStable(schedules, func(i, j int) bool {
		for _, ord := range ordering {
			a, b := scheduleField(schedules[i], ord.Field), scheduleField(schedules[j], ord.Field)
			if a.Equal(b) {
				continue
			}
			if ord.Ascending {
				return a.Before(b)
			}
			return a.After(b)
		}
		return schedules[i].ID < schedules[j].ID
	})
	return schedules, nil
}

func scheduleField(sch schedule.Schedule, field string) time.Time {
	switch field {
	case "start_date":
		return sch.StartDate
	case "end_date":
		return sch.EndDate
	case "created_at":
		return sch.CreatedAt
	case "updated_at":
		return sch.UpdatedAt
	}
	return time.Time{}
}

func (repo *scheduleRepository) QueryAllCourses(_ context.Context) ([]schedule.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]schedule.Course{}, repo.db.courses...), nil
}

func (repo *scheduleRepository) GetCourseByID(_ context.Context, id schedule.ID) (schedule.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, c := range repo.db.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return schedule.Course{}, schedule.ErrCourseNotFound
}

func (repo *scheduleRepository) QueryAllTrainers(_ context.Context) ([]schedule.Trainer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]schedule.Trainer{}, repo.db.trainers...), nil
}

func (repo *scheduleRepository) QueryAllCompanies(_ context.Context) ([]schedule.Company, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]schedule.Company{}, repo.db.companies...), nil
}

func (repo *scheduleRepository) FilterEmployees(_ context.Context, filter schedule.EmployeeFilter) ([]schedule.Employee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	employees := make([]schedule.Employee, 0)
	for _, e := range repo.db.employees {
		if filter.CompanyIDs.Len() > 0 && !filter.CompanyIDs.Has(schedule.EmployeeCompany(e)) {
			continue
		}
		if !e.MatchesSearch(strings.TrimSpace(filter.Search)) {
			continue
		}
		employees = append(employees, e)
	}
	return employees, nil
}

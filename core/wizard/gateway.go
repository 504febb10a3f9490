package wizard

import (
	"context"

	"github.com/trezcool/formazione/core/schedule"
)

// Gateway persists schedules to the schedules resource.
type Gateway interface {
	CreateSchedule(ctx context.Context, p schedule.SchedulePayload) (schedule.ID, error)
	UpdateSchedule(ctx context.Context, id schedule.ID, p schedule.SchedulePayload) error
	PatchSchedule(ctx context.Context, id schedule.ID, p schedule.SchedulePatch) error
}

// Directory lists the employees of a set of companies.
type Directory interface {
	EmployeesByCompanies(ctx context.Context, companyIDs schedule.IDSet, search string) ([]schedule.Employee, error)
}

// Catalog is the reference data the wizard picks from.
type Catalog struct {
	Courses   []schedule.Course
	Trainers  []schedule.Trainer
	Companies []schedule.Company
	Employees []schedule.Employee
}

func (c Catalog) Course(id schedule.ID) (schedule.Course, bool) {
	for _, course := range c.Courses {
		if course.ID == id {
			return course, true
		}
	}
	return schedule.Course{}, false
}

// ServiceGateway talks to a schedule.Service in the same process.
type ServiceGateway struct {
	svc *schedule.Service
}

var (
	_ Gateway   = (*ServiceGateway)(nil)
	_ Directory = (*ServiceGateway)(nil)
)

func NewServiceGateway(svc *schedule.Service) *ServiceGateway {
	return &ServiceGateway{svc: svc}
}

func (g *ServiceGateway) CreateSchedule(ctx context.Context, p schedule.SchedulePayload) (schedule.ID, error) {
	sch, err := g.svc.Create(ctx, p)
	if err != nil {
		return "", err
	}
	return sch.ID, nil
}

func (g *ServiceGateway) UpdateSchedule(ctx context.Context, id schedule.ID, p schedule.SchedulePayload) error {
	_, err := g.svc.Update(ctx, id, p)
	return err
}

func (g *ServiceGateway) PatchSchedule(ctx context.Context, id schedule.ID, p schedule.SchedulePatch) error {
	_, err := g.svc.Patch(ctx, id, p)
	return err
}

func (g *ServiceGateway) EmployeesByCompanies(ctx context.Context, companyIDs schedule.IDSet, search string) ([]schedule.Employee, error) {
	if companyIDs.Len() == 0 {
		return []schedule.Employee{}, nil
	}
	return g.svc.Employees(ctx, schedule.EmployeeFilter{CompanyIDs: companyIDs, Search: search})
}

// LoadCatalog reads the whole catalog from svc.
func LoadCatalog(ctx context.Context, svc *schedule.Service) (Catalog, error) {
	var (
		cat Catalog
		err error
	)
	if cat.Courses, err = svc.Courses(ctx); err != nil {
		return Catalog{}, err
	}
	if cat.Trainers, err = svc.Trainers(ctx); err != nil {
		return Catalog{}, err
	}
	if cat.Companies, err = svc.Companies(ctx); err != nil {
		return Catalog{}, err
	}
	if cat.Employees, err = svc.Employees(ctx, schedule.EmployeeFilter{}); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

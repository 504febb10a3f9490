package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/formazione/core/schedule"
)

// directoryApi exposes the catalog the scheduling wizard picks from.
type directoryApi struct {
	svc *schedule.Service
}

func registerDirectoryAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *schedule.Service) {
	api := directoryApi{svc: svc}

	ag := g.Group("", jwt)
	ag.GET("/courses", api.courses)
	ag.GET("/trainers", api.trainers)
	ag.GET("/companies", api.companies)
	ag.GET("/employees", api.employees)
}

func (api *directoryApi) courses(ctx echo.Context) error {
	courses, err := api.svc.Courses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *directoryApi) trainers(ctx echo.Context) error {
	trainers, err := api.svc.Trainers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying trainers")
	}
	return ctx.JSON(http.StatusOK, trainers)
}

func (api *directoryApi) companies(ctx echo.Context) error {
	companies, err := api.svc.Companies(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying companies")
	}
	return ctx.JSON(http.StatusOK, companies)
}

// employees accepts company_id (repeated or comma separated) and search.
func (api *directoryApi) employees(ctx echo.Context) error {
	filter := schedule.EmployeeFilter{
		CompanyIDs: bindIDSet(ctx, "company_id"),
		Search:     ctx.QueryParam("search"),
	}
	employees, err := api.svc.Employees(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "filtering employees")
	}
	return ctx.JSON(http.StatusOK, employees)
}

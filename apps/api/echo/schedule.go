package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/formazione/core/schedule"
)

type scheduleApi struct {
	svc *schedule.Service
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *schedule.Service) {
	api := scheduleApi{svc: svc}

	sg := g.Group("/schedules", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create, roleMiddleware(RoleAdmin, RoleScheduler))

	// detail endpoints
	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, roleMiddleware(RoleAdmin, RoleScheduler))
	dg.PATCH("", api.patch, roleMiddleware(RoleAdmin, RoleScheduler))
}

// Handlers

func (api *scheduleApi) create(ctx echo.Context) error {
	var data schedule.SchedulePayload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SchedulePayload")
	}

	sch, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating schedule")
	}
	return ctx.JSON(http.StatusCreated, sch)
}

func (api *scheduleApi) query(ctx echo.Context) error {
	var filter schedule.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	schedules, err := api.svc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "filtering schedules")
	}
	return ctx.JSON(http.StatusOK, schedules)
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	id, err := bindScheduleID(ctx)
	if err != nil {
		return err
	}
	sch, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting schedule")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *scheduleApi) update(ctx echo.Context) error {
	id, err := bindScheduleID(ctx)
	if err != nil {
		return err
	}
	var data schedule.SchedulePayload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SchedulePayload")
	}

	sch, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating schedule")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *scheduleApi) patch(ctx echo.Context) error {
	id, err := bindScheduleID(ctx)
	if err != nil {
		return err
	}
	var data schedule.SchedulePatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SchedulePatch")
	}

	sch, err := api.svc.Patch(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "patching schedule")
	}
	return ctx.JSON(http.StatusOK, sch)
}

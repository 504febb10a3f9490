package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/formazione/core/schedule"
	"github.com/trezcool/formazione/core/wizard"
)

type scheduleOptions struct {
	course          string
	mode            string
	location        string
	maxParticipants int
	notes           string
	trainer         string
	coTrainer       string
	companies       string
	employees       string
	dates           string
	attendance      bool
	status          string
}

// schedule walks the wizard through every step the way a user would.
func (cli *commandLine) schedule(ctx context.Context, opts scheduleOptions) error {
	cat, err := wizard.LoadCatalog(ctx, cli.schSvc)
	if err != nil {
		return errors.Wrap(err, "loading catalog")
	}
	gw := wizard.NewServiceGateway(cli.schSvc)

	w := wizard.New(wizard.Options{
		Gateway:        gw,
		Directory:      gw,
		Statuses:       cli.statuses,
		Logger:         cli.logger,
		Validate:       cli.validate,
		Catalog:        cat,
		Location:       cli.conf.Location(),
		GatewayTimeout: cli.conf.GatewayTimeout,
		Now:            cli.now,
	})
	defer w.Close()

	// Details
	w.SetCourse(schedule.ID(opts.course))
	w.SetDeliveryMode(opts.mode)
	w.SetLocation(opts.location)
	w.SetMaxParticipants(opts.maxParticipants)
	w.SetNotes(opts.notes)
	w.SetTrainer(schedule.ID(opts.trainer))
	w.SetCoTrainer(schedule.ID(opts.coTrainer))

	if opts.dates != "" {
		if err = setDates(w, opts.dates); err != nil {
			return err
		}
	} else {
		// propose sessions until the course duration is covered
		for {
			if left, _ := w.HoursLeft(); left <= 0 || !w.AddDate() {
				break
			}
		}
	}

	// Participants
	for _, id := range splitList(opts.companies) {
		if err = w.ToggleCompany(ctx, schedule.ID(id)); err != nil {
			return errors.Wrapf(err, "selecting company %s", id)
		}
	}
	if opts.employees == "all" {
		for _, id := range w.CompanyIDs() {
			if err = w.SetActiveCompany(id); err != nil {
				return err
			}
			w.SelectAllEmployees()
		}
	} else {
		for _, id := range splitList(opts.employees) {
			if err = w.ToggleEmployee(schedule.ID(id)); err != nil {
				return errors.Wrapf(err, "selecting employee %s", id)
			}
		}
	}

	if err = w.Schedule(ctx); err != nil {
		return err
	}
	id := w.ScheduleID()
	total := w.TotalHours()
	left, balance := w.HoursLeft()
	fmt.Fprintf(cli.out, "schedule %s: %d sessions, %.1f hours (%s %.1f)\n", id, len(w.Form().Dates), total, balance, left)

	// Attendance
	if opts.attendance {
		if err = w.GoTo(wizard.StepAttendance); err != nil {
			return err
		}
		if err = w.SaveAttendance(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "attendance saved for %d participants\n", w.EmployeeIDs().Len())
	}

	// Documents
	if opts.status != "" {
		if err = w.SetDocumentStatus(ctx, schedule.DocumentStatus(opts.status)); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "status: %s\n", w.DocumentStatus())
	}
	return nil
}

// setDates replaces the proposed sessions with the ones of list: "2024-03-04 09:00-13:00;2024-03-05 09:00-13:00".
func setDates(w *wizard.Wizard, list string) error {
	sessions := strings.Split(list, ";")
	if len(sessions) > schedule.MaxSessionDates {
		return errors.Errorf("at most %d sessions", schedule.MaxSessionDates)
	}
	for i, s := range sessions {
		parts := strings.Fields(s)
		if len(parts) != 2 {
			return errors.Errorf("invalid session %q", s)
		}
		times := strings.SplitN(parts[1], "-", 2)
		if len(times) != 2 {
			return errors.Errorf("invalid session times %q", parts[1])
		}
		if i > 0 && !w.AddDate() {
			return errors.Errorf("at most %d sessions", schedule.MaxSessionDates)
		}
		for field, val := range map[schedule.SessionField]string{
			schedule.FieldDate:  parts[0],
			schedule.FieldStart: times[0],
			schedule.FieldEnd:   times[1],
		} {
			if err := w.UpdateDate(i, field, val); err != nil {
				return err
			}
		}
	}
	return nil
}

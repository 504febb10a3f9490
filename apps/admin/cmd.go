package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	echoapi "github.com/trezcool/formazione/apps/api/echo"
	"github.com/trezcool/formazione/core"
	"github.com/trezcool/formazione/core/schedule"
	"github.com/trezcool/formazione/core/wizard"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf     *core.Config
	db       *sql.DB
	schSvc   *schedule.Service
	statuses wizard.StatusStore
	validate *validator.Validate
	logger   core.Logger
	out      io.Writer
	now      func() time.Time
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate up|up-by-one|down|redo - apply or roll back database migrations")
	fmt.Fprintln(cli.out, "  token -subject ID [-username NAME] [-email EMAIL] [-roles admin,scheduler] - issue an API token")
	fmt.Fprintln(cli.out, "  schedule -course ID -trainer ID -companies IDS [-employees IDS|all] [-dates DATES] ... - schedule a course")
	fmt.Fprintln(cli.out, "  status -id ID - show the document status of a schedule")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2])

	case "token":
		tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
		tokenCmd.SetOutput(cli.out)
		subject := tokenCmd.String("subject", "", "The user id the token is issued to.")
		username := tokenCmd.String("username", "", "The user's username.")
		email := tokenCmd.String("email", "", "The user's email.")
		roles := tokenCmd.String("roles", "", "Comma separated roles: admin, scheduler.")
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if strings.TrimSpace(*subject) == "" {
			tokenCmd.Usage()
			return errHelp
		}
		principal := core.Principal{ID: strings.TrimSpace(*subject), Username: *username, Email: *email}
		return cli.token(principal, splitList(*roles)...)

	case "schedule":
		var opts scheduleOptions
		scheduleCmd := flag.NewFlagSet("schedule", flag.ContinueOnError)
		scheduleCmd.SetOutput(cli.out)
		scheduleCmd.StringVar(&opts.course, "course", "", "The course id.")
		scheduleCmd.StringVar(&opts.mode, "mode", schedule.DeliveryInPerson, "Delivery mode: in-person, online or blended.")
		scheduleCmd.StringVar(&opts.location, "location", "", "Where the course takes place.")
		scheduleCmd.IntVar(&opts.maxParticipants, "max", 0, "Max participants (0: no limit).")
		scheduleCmd.StringVar(&opts.notes, "notes", "", "Free notes.")
		scheduleCmd.StringVar(&opts.trainer, "trainer", "", "The trainer id.")
		scheduleCmd.StringVar(&opts.coTrainer, "cotrainer", "", "The co-trainer id.")
		scheduleCmd.StringVar(&opts.companies, "companies", "", "Comma separated company ids.")
		scheduleCmd.StringVar(&opts.employees, "employees", "", "Comma separated employee ids, or all.")
		scheduleCmd.StringVar(&opts.dates, "dates", "", `Semicolon separated sessions "YYYY-MM-DD HH:MM-HH:MM". Proposed from the course duration when empty.`)
		scheduleCmd.BoolVar(&opts.attendance, "attendance", false, "Mark every participant present at every session.")
		scheduleCmd.StringVar(&opts.status, "status", "", "Document status: Preventivo, Conferma, Fattura or Pagamento.")
		if err := scheduleCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if opts.course == "" || opts.trainer == "" || opts.companies == "" {
			scheduleCmd.Usage()
			return errHelp
		}
		return cli.schedule(context.Background(), opts)

	case "status":
		statusCmd := flag.NewFlagSet("status", flag.ContinueOnError)
		statusCmd.SetOutput(cli.out)
		id := statusCmd.String("id", "", "The schedule id.")
		if err := statusCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if strings.TrimSpace(*id) == "" {
			statusCmd.Usage()
			return errHelp
		}
		return cli.status(context.Background(), schedule.ID(strings.TrimSpace(*id)))

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) token(principal core.Principal, roles ...string) error {
	for _, role := range roles {
		if role != echoapi.RoleAdmin && role != echoapi.RoleScheduler {
			return errors.Errorf("%q: no such role", role)
		}
	}
	token, err := echoapi.GenerateToken(cli.conf, echoapi.NewClaims(cli.conf, principal, roles...))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	fmt.Fprintln(cli.out, token)
	return nil
}

// status prints the cached document status next to the stored one.
func (cli *commandLine) status(ctx context.Context, id schedule.ID) error {
	sch, err := cli.schSvc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	cached, ok, err := cli.statuses.GetStatus(id)
	if err != nil {
		return err
	}
	if !ok {
		cached = "-"
	}
	fmt.Fprintf(cli.out, "schedule %s: stored %s, cached %s\n", sch.ID, sch.Status, cached)
	return nil
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

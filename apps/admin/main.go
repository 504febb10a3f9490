package main

import (
	"log"
	"os"
	"time"

	"github.com/trezcool/formazione/core"
	"github.com/trezcool/formazione/core/schedule"
	emailsvc "github.com/trezcool/formazione/services/email"
	logsvc "github.com/trezcool/formazione/services/logger"
	badgercache "github.com/trezcool/formazione/storage/cache/badger"
	"github.com/trezcool/formazione/storage/database"
	sqlxrepos "github.com/trezcool/formazione/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.OpenX(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	statuses, err := badgercache.Open(conf.StatusCacheDir)
	if err != nil {
		_ = db.Close()
		logger.Fatal("opening status cache", err)
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	validate, _ := core.NewValidator()

	// start CLI
	cli := commandLine{
		conf:     conf,
		db:       db.DB,
		schSvc:   schedule.NewService(sqlxrepos.NewScheduleRepository(db), validate, mailSvc, logger, conf.AppName),
		statuses: statuses,
		validate: validate,
		logger:   logger,
		out:      os.Stdout,
		now:      time.Now,
	}
	err = cli.run(os.Args)

	_ = statuses.Close()
	_ = db.Close()
	logger.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
			logger.Close()
		}
		os.Exit(1)
	}
}

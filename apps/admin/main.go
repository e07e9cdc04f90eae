package main

import (
	"log"
	"os"

	"github.com/jpcarvalho/diario/core"
	"github.com/jpcarvalho/diario/core/grading"
	"github.com/jpcarvalho/diario/core/school"
	emailsvc "github.com/jpcarvalho/diario/services/email"
	logsvc "github.com/jpcarvalho/diario/services/logger"
	"github.com/jpcarvalho/diario/storage/database"
	sqlxrepos "github.com/jpcarvalho/diario/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// set up services
	mailSvc := emailsvc.NewConsoleService(conf)
	schoolRepo := sqlxrepos.NewSchoolRepository(db)
	gradingRepo := sqlxrepos.NewGradingRepository(db)
	schoolSvc := school.NewService(db, schoolRepo, gradingRepo)
	gradingSvc := grading.NewService(db, gradingRepo, schoolSvc, mailSvc, appLogger, conf.Grading)

	// start CLI
	cli := commandLine{
		db:         db,
		schoolSvc:  schoolSvc,
		gradingSvc: gradingSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

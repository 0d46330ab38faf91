package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/DARIENBATHALTER/wasabi/core"
	"github.com/DARIENBATHALTER/wasabi/core/flag"
	"github.com/DARIENBATHALTER/wasabi/core/student"
	emailsvc "github.com/DARIENBATHALTER/wasabi/services/email"
	logsvc "github.com/DARIENBATHALTER/wasabi/services/logger"
	"github.com/DARIENBATHALTER/wasabi/storage/database"
	sqlxrepos "github.com/DARIENBATHALTER/wasabi/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	svcLogger := logsvc.NewRollbarLogger(logger, conf)
	svcLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())
	dbx := sqlx.NewDb(db, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, svcLogger)
	}
	ruleRepo := sqlxrepos.NewRuleRepository(dbx)
	stuSvc := student.NewService(sqlxrepos.NewStudentRepository(dbx))
	flagSvc := flag.NewService(ruleRepo, stuSvc, svcLogger)

	// start CLI
	cli := commandLine{
		db:       db,
		conf:     conf,
		ruleRepo: ruleRepo,
		flagSvc:  flagSvc,
		mailSvc:  mailSvc,
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

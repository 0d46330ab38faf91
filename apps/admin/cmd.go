package main

import (
	"database/sql"
	"errors"
	stdflag "flag"
	"fmt"

	"github.com/DARIENBATHALTER/wasabi/core"
	"github.com/DARIENBATHALTER/wasabi/core/flag"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db       *sql.DB
	conf     *core.Config
	ruleRepo flag.Repository
	flagSvc  *flag.Service
	mailSvc  core.EmailService
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run database migrations (goose commands)")
	fmt.Println("  loadrules -file FILE [-replace] - load flag rules from a JSON file")
	fmt.Println("  digest - email the flagged-students digest to the school admins")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loadRulesCmd := stdflag.NewFlagSet("loadrules", stdflag.ExitOnError)
	loadRulesFile := loadRulesCmd.String("file", "", "Path to a JSON file containing an array of flag rules.")
	loadRulesReplace := loadRulesCmd.Bool("replace", false, "Delete all existing rules before loading.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "loadrules":
		if err := loadRulesCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loadRulesFile == "" {
			loadRulesCmd.Usage()
			return errHelp
		}
		return cli.loadRules(*loadRulesFile, *loadRulesReplace)
	case "digest":
		return cli.digest()
	default:
		cli.printUsage()
		return errHelp
	}
}

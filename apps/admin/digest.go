package main

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/DARIENBATHALTER/wasabi/core/flag"
)

// digest evaluates all active rules against all students and emails the
// flagged-students summary to the configured admin addresses.
func (cli *commandLine) digest() error {
	if len(cli.conf.AdminEmails) == 0 {
		return errors.New("no admin emails configured")
	}

	flagged, err := cli.flagSvc.EvaluateAll(context.Background())
	if err != nil {
		return errors.Wrap(err, "evaluating students")
	}

	recipients := make([]mail.Address, 0, len(cli.conf.AdminEmails))
	for _, addr := range cli.conf.AdminEmails {
		recipients = append(recipients, mail.Address{Address: addr})
	}

	cli.mailSvc.SendMessages(flag.BuildDigestEmail(recipients, flagged))
	fmt.Printf("digest sent to %d recipient(s); %d student(s) flagged\n", len(recipients), len(flagged))
	return nil
}

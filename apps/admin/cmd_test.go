package main

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DARIENBATHALTER/wasabi/core"
	"github.com/DARIENBATHALTER/wasabi/core/flag"
	"github.com/DARIENBATHALTER/wasabi/core/student"
	emailsvc "github.com/DARIENBATHALTER/wasabi/services/email"
	dummydb "github.com/DARIENBATHALTER/wasabi/storage/database/dummy"
	testutil "github.com/DARIENBATHALTER/wasabi/tests"
)

func setup(t *testing.T) (*commandLine, *dummydb.DB) {
	db := testutil.OpenDB(t)
	ruleRepo := dummydb.NewRuleRepository(db)
	stuSvc := student.NewService(dummydb.NewStudentRepository(db))

	conf := &core.Config{
		TestMode:    true,
		AppName:     "Wasabi",
		AdminEmails: []string{"principal@school.test"},
	}

	return &commandLine{
		conf:     conf,
		ruleRepo: ruleRepo,
		flagSvc:  flag.NewService(ruleRepo, stuSvc, testutil.Logger{}),
		mailSvc:  emailsvc.NewConsoleServiceMock(conf),
	}, db
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		return nil
	}

	tests := []struct {
		name    string
		args    []string // without program name
		wantErr error
	}{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate: no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "migrate up", args: []string{"migrate", "up"}},
		{name: "migrate down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "loadrules: no file", args: []string{"loadrules"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_loadRules(t *testing.T) {
	cli, _ := setup(t)
	ctx := context.Background()

	writeFile := func(t *testing.T, content string) string {
		path := filepath.Join(t.TempDir(), "rules.json")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
		return path
	}

	valid := `[
		{
			"name": "Low attendance",
			"category": "attendance",
			"criteria": {"type": "attendance", "threshold": "90", "condition": "below"},
			"color": "red",
			"isActive": true
		},
		{
			"name": "Discipline watch",
			"category": "discipline",
			"criteria": {"type": "discipline", "threshold": 2, "condition": "above"},
			"color": "yellow",
			"isActive": false
		}
	]`

	if err := cli.loadRules(writeFile(t, valid), false); err != nil {
		t.Fatalf("loadRules() failed: %v", err)
	}
	rules, err := cli.ruleRepo.QueryAllRules(ctx)
	if err != nil {
		t.Fatalf("QueryAllRules() failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	for _, rule := range rules {
		if rule.ID == "" {
			t.Error("loaded rule has no id")
		}
		if rule.CreatedAt.IsZero() {
			t.Error("loaded rule has no createdAt")
		}
	}

	// replace drops the existing rules first
	if err := cli.loadRules(writeFile(t, `[{
		"name": "Only rule",
		"category": "grades",
		"criteria": {"threshold": 2.0, "condition": "below"},
		"color": "orange",
		"isActive": true
	}]`), true); err != nil {
		t.Fatalf("loadRules(replace) failed: %v", err)
	}
	rules, err = cli.ruleRepo.QueryAllRules(ctx)
	if err != nil {
		t.Fatalf("QueryAllRules() failed: %v", err)
	}
	if len(rules) != 1 || rules[0].Name != "Only rule" {
		t.Errorf("after replace got %+v, want the single new rule", rules)
	}

	// invalid payloads are rejected before any write
	tests := []struct {
		name    string
		content string
		wantIn  string
	}{
		{name: "bad category", content: `[{"name": "x", "category": "lol", "criteria": {"threshold": 1, "condition": "below"}, "color": "red"}]`, wantIn: "invalid category"},
		{name: "bad condition", content: `[{"name": "x", "category": "grades", "criteria": {"threshold": 1, "condition": "lol"}, "color": "red"}]`, wantIn: "invalid condition"},
		{name: "bad color", content: `[{"name": "x", "category": "grades", "criteria": {"threshold": 1, "condition": "below"}, "color": "lol"}]`, wantIn: "invalid color"},
		{name: "missing name", content: `[{"category": "grades", "criteria": {"threshold": 1, "condition": "below"}, "color": "red"}]`, wantIn: "name is required"},
		{name: "not json", content: `lol`, wantIn: "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.loadRules(writeFile(t, tt.content), false)
			if err == nil || !strings.Contains(err.Error(), tt.wantIn) {
				t.Errorf("loadRules() error = %v, want containing %q", err, tt.wantIn)
			}
		})
	}
}

func Test_commandLine_digest(t *testing.T) {
	cli, db := setup(t)

	stu := testutil.CreateStudent(t, db, "1001", "Ada", "Mwangi", "5", "5A")
	testutil.Attendance(t, db, stu.ID, "P", "A", "A", "A")
	testutil.CreateRule(t, cli.ruleRepo, "Low attendance", flag.CategoryAttendance, flag.ConditionBelow, 90, flag.ColorRed, true)

	before := len(emailsvc.SentMessages)
	if err := cli.digest(); err != nil {
		t.Fatalf("digest() failed: %v", err)
	}
	if len(emailsvc.SentMessages) != before+1 {
		t.Fatalf("digest sent %d messages, want 1", len(emailsvc.SentMessages)-before)
	}

	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	if len(msg.To) != 1 || msg.To[0].Address != "principal@school.test" {
		t.Errorf("recipients = %v, want the configured admin", msg.To)
	}
	if !strings.Contains(msg.TextContent, "Ada Mwangi") {
		t.Errorf("digest body does not mention the flagged student:\n%s", msg.TextContent)
	}

	cli.conf.AdminEmails = nil
	if err := cli.digest(); err == nil {
		t.Error("digest() with no recipients should fail")
	}
}

// The production mail services hand messages to background goroutines; the
// CLI exits as soon as digest() returns, so the send must have completed by
// then or the email is lost.
func Test_commandLine_digest_waitsForSend(t *testing.T) {
	cli, db := setup(t)
	cli.mailSvc = emailsvc.NewConsoleService(cli.conf)

	stu := testutil.CreateStudent(t, db, "1002", "Ben", "Cruz", "5", "5A")
	testutil.Attendance(t, db, stu.ID, "A", "A", "A", "P")
	testutil.CreateRule(t, cli.ruleRepo, "Low attendance", flag.CategoryAttendance, flag.ConditionBelow, 90, flag.ColorRed, true)

	before := len(emailsvc.SentMessages)
	if err := cli.digest(); err != nil {
		t.Fatalf("digest() failed: %v", err)
	}
	if len(emailsvc.SentMessages) != before+1 {
		t.Fatalf("digest() returned before the message was sent: %d sent, want 1", len(emailsvc.SentMessages)-before)
	}
}

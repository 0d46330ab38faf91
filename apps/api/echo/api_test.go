package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/DARIENBATHALTER/wasabi/core"
	"github.com/DARIENBATHALTER/wasabi/core/flag"
	"github.com/DARIENBATHALTER/wasabi/core/student"
	dummydb "github.com/DARIENBATHALTER/wasabi/storage/database/dummy"
	testutil "github.com/DARIENBATHALTER/wasabi/tests"
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func setup(t *testing.T) (Server, flag.Repository, *dummydb.DB) {
	db := testutil.OpenDB(t)
	ruleRepo := dummydb.NewRuleRepository(db)
	stuSvc := student.NewService(dummydb.NewStudentRepository(db))
	flagSvc := flag.NewService(ruleRepo, stuSvc, testutil.Logger{})

	validate, translator := testutil.NewValidator()

	app := NewServer(ServerDeps{
		Conf:       &core.Config{TestMode: true, AppName: "Wasabi"},
		Logger:     testutil.Logger{},
		StudentSvc: stuSvc,
		FlagSvc:    flagSvc,
		Validate:   validate,
		Translator: translator,
	})
	return app, ruleRepo, db
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %s; wantData %s", rec.Body.Bytes(), tt.wantData)
	}
}

func Test_studentApi_query(t *testing.T) {
	app, _, db := setup(t)

	ada := testutil.CreateStudent(t, db, "1", "Ada", "Mwangi", "5", "5A")
	ben := testutil.CreateStudent(t, db, "2", "Ben", "Okafor", "3", "3B")
	cara := testutil.CreateStudent(t, db, "3", "Cara", "Mwangi", "5", "5B")

	tests := []httpTest{
		{name: "Get all", path: "/v1/students", wantCode: http.StatusOK, wantData: marchallObj(t, []student.Student{ada, cara, ben})},
		{name: "search by name", path: "/v1/students?search=mwangi", wantCode: http.StatusOK, wantData: marchallObj(t, []student.Student{ada, cara})},
		{name: "search (unknown)", path: "/v1/students?search=lol", wantCode: http.StatusOK, wantData: marchallObj(t, []student.Student{})},
		{name: "filter by grade", path: "/v1/students?grade=3", wantCode: http.StatusOK, wantData: marchallObj(t, []student.Student{ben})},
		{name: "filter by class", path: "/v1/students?className=5B", wantCode: http.StatusOK, wantData: marchallObj(t, []student.Student{cara})},
		{name: "grade and class combo (empty)", path: "/v1/students?grade=3&className=5B", wantCode: http.StatusOK, wantData: marchallObj(t, []student.Student{})},
		{name: "retrieve", path: "/v1/students/2", wantCode: http.StatusOK, wantData: marchallObj(t, ben)},
		{name: "retrieve trailing slash", path: "/v1/students/2/", wantCode: http.StatusOK, wantData: marchallObj(t, ben)},
		{name: "retrieve not found", path: "/v1/students/99", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_flags(t *testing.T) {
	app, repo, db := setup(t)

	stu := testutil.CreateStudent(t, db, "10", "Hal", "Diallo", "5", "5A")
	testutil.Attendance(t, db, stu.ID, "P", "A", "A", "A")
	testutil.CreateRule(t, repo, "Low attendance", flag.CategoryAttendance, flag.ConditionBelow, 90, flag.ColorYellow, true)
	testutil.CreateRule(t, repo, "Chronic absence", flag.CategoryAttendance, flag.ConditionBelow, 50, flag.ColorRed, true)

	req, rec := newRequest(http.MethodGet, "/v1/students/10/flags")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v, want 200; body = %s", rec.Code, rec.Body.String())
	}
	var results map[flag.Category][]flag.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(results[flag.CategoryAttendance]) != 2 {
		t.Errorf("got %d attendance flags, want 2: %s", len(results[flag.CategoryAttendance]), rec.Body.String())
	}

	// both rules matched; the worst color represents the category
	req, rec = newRequest(http.MethodGet, "/v1/students/10/flags/colors")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v, want 200; body = %s", rec.Code, rec.Body.String())
	}
	var colors map[flag.Category]flag.Color
	if err := json.Unmarshal(rec.Body.Bytes(), &colors); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if colors[flag.CategoryAttendance] != flag.ColorRed {
		t.Errorf("attendance color = %v, want red", colors[flag.CategoryAttendance])
	}

	req, rec = newRequest(http.MethodGet, "/v1/students/99/flags")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %v, want 404", rec.Code)
	}
}

func Test_flagApi_crud(t *testing.T) {
	app, _, _ := setup(t)

	do := func(method, path string, data ...[]byte) *httptest.ResponseRecorder {
		req, rec := newRequest(method, path, data...)
		app.ServeHTTP(rec, req)
		return rec
	}

	// create: threshold arrives as a string, the editor has always sent it so
	rec := do(http.MethodPost, "/v1/flag-rules", []byte(`{
		"name": " Low attendance ",
		"category": "attendance",
		"criteria": {"type": "attendance", "threshold": "90", "condition": "below"},
		"filters": {"grades": ["3", "5"]},
		"color": "red",
		"description": "Attendance below 90%"
	}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %v, want 201; body = %s", rec.Code, rec.Body.String())
	}
	var rule flag.Rule
	if err := json.Unmarshal(rec.Body.Bytes(), &rule); err != nil {
		t.Fatalf("decoding created rule: %v", err)
	}
	if rule.ID == "" {
		t.Error("created rule has no id")
	}
	if rule.Name != "Low attendance" {
		t.Errorf("name = %q, want cleaned %q", rule.Name, "Low attendance")
	}
	if !rule.IsActive {
		t.Error("created rule must start active")
	}
	if rule.Criteria.Threshold != 90 {
		t.Errorf("threshold = %v, want 90", rule.Criteria.Threshold)
	}

	// validation errors
	rec = do(http.MethodPost, "/v1/flag-rules", []byte(`{"name": "No category", "color": "red", "criteria": {"threshold": 1, "condition": "below"}}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("create without category code = %v, want 400; body = %s", rec.Code, rec.Body.String())
	}
	rec = do(http.MethodPost, "/v1/flag-rules", []byte(`{"name": "Bad color", "category": "grades", "color": "magenta", "criteria": {"threshold": 1, "condition": "below"}}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("create with bad color code = %v, want 400; body = %s", rec.Code, rec.Body.String())
	}

	// retrieve & list
	rec = do(http.MethodGet, "/v1/flag-rules/"+rule.ID)
	if rec.Code != http.StatusOK {
		t.Errorf("retrieve code = %v, want 200", rec.Code)
	}
	rec = do(http.MethodGet, "/v1/flag-rules")
	if rec.Code != http.StatusOK {
		t.Fatalf("list code = %v, want 200", rec.Code)
	}
	var rules []flag.Rule
	if err := json.Unmarshal(rec.Body.Bytes(), &rules); err != nil {
		t.Fatalf("decoding rules: %v", err)
	}
	if len(rules) != 1 {
		t.Errorf("got %d rules, want 1", len(rules))
	}

	// partial update keeps unset fields
	rec = do(http.MethodPut, "/v1/flag-rules/"+rule.ID, []byte(`{"color": "orange"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("update code = %v, want 200; body = %s", rec.Code, rec.Body.String())
	}
	var updated flag.Rule
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decoding updated rule: %v", err)
	}
	if updated.Color != flag.ColorOrange {
		t.Errorf("color = %v, want orange", updated.Color)
	}
	if updated.Name != rule.Name || updated.Category != rule.Category {
		t.Errorf("update clobbered unset fields: %+v", updated)
	}

	// toggle
	rec = do(http.MethodPost, "/v1/flag-rules/"+rule.ID+"/toggle")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle code = %v, want 200", rec.Code)
	}
	var toggled flag.Rule
	if err := json.Unmarshal(rec.Body.Bytes(), &toggled); err != nil {
		t.Fatalf("decoding toggled rule: %v", err)
	}
	if toggled.IsActive {
		t.Error("toggle did not deactivate the rule")
	}

	// delete
	rec = do(http.MethodDelete, "/v1/flag-rules/"+rule.ID)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete code = %v, want 204", rec.Code)
	}
	rec = do(http.MethodGet, "/v1/flag-rules/"+rule.ID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("retrieve after delete code = %v, want 404", rec.Code)
	}
	rec = do(http.MethodPut, "/v1/flag-rules/nope", []byte(`{"color": "red"}`))
	if rec.Code != http.StatusNotFound {
		t.Errorf("update unknown code = %v, want 404", rec.Code)
	}
}

func Test_flagApi_evaluate(t *testing.T) {
	app, repo, db := setup(t)

	stu := testutil.CreateStudent(t, db, "20", "Joy", "Petit", "3", "3B")
	testutil.Attendance(t, db, stu.ID, "P", "P", "A", "A")
	rule := testutil.CreateRule(t, repo, "Low attendance", flag.CategoryAttendance, flag.ConditionBelow, 90, flag.ColorRed, true)

	req, rec := newRequest(http.MethodPost, "/v1/flag-rules/"+rule.ID+"/evaluate/"+stu.ID)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v, want 200; body = %s", rec.Code, rec.Body.String())
	}
	var ev flag.Evaluation
	if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
		t.Fatalf("decoding evaluation: %v", err)
	}
	if !ev.IsFlagged {
		t.Errorf("evaluation = %+v, want flagged", ev)
	}

	req, rec = newRequest(http.MethodPost, "/v1/flag-rules/nope/evaluate/"+stu.ID)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown rule code = %v, want 404", rec.Code)
	}
}

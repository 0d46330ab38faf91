package flag

import "testing"

func TestRepresentativeColor(t *testing.T) {
	res := func(colors ...Color) []Result {
		results := make([]Result, 0, len(colors))
		for _, c := range colors {
			results = append(results, Result{Color: c})
		}
		return results
	}

	tests := []struct {
		name    string
		results []Result
		want    Color
		wantOk  bool
	}{
		{name: "worst wins", results: res(ColorGreen, ColorRed, ColorYellow), want: ColorRed, wantOk: true},
		{name: "orange over yellow", results: res(ColorYellow, ColorOrange), want: ColorOrange, wantOk: true},
		{name: "single", results: res(ColorBlue), want: ColorBlue, wantOk: true},
		{name: "empty", results: nil, wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RepresentativeColor(tt.results)
			if ok != tt.wantOk {
				t.Fatalf("RepresentativeColor() ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("RepresentativeColor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRepresentativeColors(t *testing.T) {
	byCategory := map[Category][]Result{
		CategoryAttendance: {{Color: ColorYellow}, {Color: ColorRed}},
		CategoryGrades:     {{Color: ColorBlue}},
		CategoryDiscipline: {},
	}

	colors := RepresentativeColors(byCategory)
	if len(colors) != 2 {
		t.Fatalf("got %d colors, want 2", len(colors))
	}
	if colors[CategoryAttendance] != ColorRed {
		t.Errorf("attendance = %v, want red", colors[CategoryAttendance])
	}
	if colors[CategoryGrades] != ColorBlue {
		t.Errorf("grades = %v, want blue", colors[CategoryGrades])
	}
	if _, ok := colors[CategoryDiscipline]; ok {
		t.Error("discipline has no results, should have no color")
	}
}

func Test_severityFor(t *testing.T) {
	rule := func(c Category, threshold float64) Rule {
		return Rule{Category: c, Criteria: Criteria{Threshold: Threshold(threshold)}}
	}

	tests := []struct {
		name string
		rule Rule
		want Severity
	}{
		{name: "attendance drastic", rule: rule(CategoryAttendance, 75), want: SeverityHigh},
		{name: "attendance moderate", rule: rule(CategoryAttendance, 85), want: SeverityMedium},
		{name: "attendance mild", rule: rule(CategoryAttendance, 95), want: SeverityLow},
		{name: "grades drastic", rule: rule(CategoryGrades, 1.0), want: SeverityHigh},
		{name: "grades moderate", rule: rule(CategoryGrades, 2.0), want: SeverityMedium},
		{name: "grades mild", rule: rule(CategoryGrades, 3.0), want: SeverityLow},
		{name: "discipline drastic", rule: rule(CategoryDiscipline, 6), want: SeverityHigh},
		{name: "discipline moderate", rule: rule(CategoryDiscipline, 3), want: SeverityMedium},
		{name: "discipline mild", rule: rule(CategoryDiscipline, 1), want: SeverityLow},
		{name: "iready drastic", rule: rule(CategoryIReadyMath, 400), want: SeverityHigh},
		{name: "iready moderate", rule: rule(CategoryIReadyReading, 480), want: SeverityMedium},
		{name: "fast drastic", rule: rule(CategoryFASTELA, 250), want: SeverityHigh},
		{name: "fast mild", rule: rule(CategoryFASTWriting, 320), want: SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := severityFor(tt.rule); got != tt.want {
				t.Errorf("severityFor(%v, %v) = %v, want %v",
					tt.rule.Category, float64(tt.rule.Criteria.Threshold), got, tt.want)
			}
		})
	}
}

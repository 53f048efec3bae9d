package doctor

import (
	"encoding/json"
	"testing"
)

// fakeCheck returns a fixed result.
type fakeCheck struct {
	name   string
	result *CheckResult
}

func (f *fakeCheck) Name() string { return f.name }
func (f *fakeCheck) Category() string { return "test" }
func (f *fakeCheck) Run() *CheckResult { return f.result }

func TestRunner_Run(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []Severity
		wantPassed   int
		wantInfo     int
		wantWarnings int
		wantErrors   int
	}{
		{name: "empty runner"},
		{name: "single pass", statuses: []Severity{SeverityPass}, wantPassed: 1},
		{name: "single info", statuses: []Severity{SeverityInfo}, wantInfo: 1},
		{name: "single warning", statuses: []Severity{SeverityWarning}, wantWarnings: 1},
		{name: "single error", statuses: []Severity{SeverityError}, wantErrors: 1},
		{
			name:         "mixed",
			statuses:     []Severity{SeverityPass, SeverityError, SeverityPass, SeverityWarning, SeverityInfo},
			wantPassed:   2,
			wantInfo:     1,
			wantWarnings: 1,
			wantErrors:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner()
			for _, s := range tt.statuses {
				r.AddCheck(&fakeCheck{name: "c", result: &CheckResult{Status: s}})
			}

			report := r.Run()
			if len(report.Results) != len(tt.statuses) {
				t.Errorf("Results = %d, want %d", len(report.Results), len(tt.statuses))
			}
			want := Summary{Passed: tt.wantPassed, Info: tt.wantInfo, Warnings: tt.wantWarnings, Errors: tt.wantErrors}
			if report.Summary != want {
				t.Errorf("Summary = %+v, want %+v", report.Summary, want)
			}
			if report.HasErrors() != (tt.wantErrors > 0) {
				t.Errorf("HasErrors() = %v", report.HasErrors())
			}
			if report.HasWarnings() != (tt.wantWarnings > 0) {
				t.Errorf("HasWarnings() = %v", report.HasWarnings())
			}
			if report.Timestamp.IsZero() {
				t.Error("Timestamp should be set")
			}
		})
	}
}

func TestRunner_FillsNameAndCategory(t *testing.T) {
	r := NewRunner(&fakeCheck{name: "first", result: &CheckResult{}})
	report := r.Run()

	got := report.Results[0]
	if got.Name != "first" || got.Category != "test" {
		t.Errorf("result = %q/%q, want first/test", got.Category, got.Name)
	}
}

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		s    Severity
		want string
	}{
		{SeverityPass, "pass"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{Severity(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestReport_JSON(t *testing.T) {
	report := NewRunner(&fakeCheck{name: "x", result: &CheckResult{Status: SeverityWarning, Message: "m"}}).Run()

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded struct {
		Results []struct {
			Status string `json:"status"`
		} `json:"results"`
		Summary Summary `json:"summary"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Results[0].Status != "warning" {
		t.Errorf("status = %q, want %q", decoded.Results[0].Status, "warning")
	}
	if decoded.Summary.Warnings != 1 {
		t.Errorf("Summary.Warnings = %d, want 1", decoded.Summary.Warnings)
	}
}

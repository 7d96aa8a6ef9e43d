package scenario

import "testing"

// TestSeedAndBoundaryScenarios runs every bundled scenario fixture
// through the full pipeline, the same way `rasp --unit-tests` does.
func TestSeedAndBoundaryScenarios(t *testing.T) {
	scenarios, err := Load("../../testdata/scenarios")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(scenarios) == 0 {
		t.Fatal("expected at least one bundled scenario")
	}
	for _, s := range scenarios {
		s := s
		t.Run(s.Name, func(t *testing.T) {
			outcome := Run(s)
			if err := Check(s, outcome); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestLoadScenarioNamesAreUnique(t *testing.T) {
	scenarios, err := Load("../../testdata/scenarios")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	names := map[string]bool{}
	for _, s := range scenarios {
		if names[s.Name] {
			t.Fatalf("duplicate scenario name %q across fixture files", s.Name)
		}
		names[s.Name] = true
	}
}

func TestCheckReportsMismatchedResult(t *testing.T) {
	s := Scenario{Name: "x", Source: "1", Expect: Expect{Result: "2"}}
	outcome := Run(s)
	if err := Check(s, outcome); err == nil {
		t.Fatal("expected a mismatched result to be reported")
	}
}

func TestCheckReportsUnexpectedSuccess(t *testing.T) {
	s := Scenario{Name: "x", Source: "1", Expect: Expect{ErrorKind: "execution"}}
	outcome := Run(s)
	if err := Check(s, outcome); err == nil {
		t.Fatal("expected an unexpected success to be reported")
	}
}

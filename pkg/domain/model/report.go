package model

// Check is a single preflight check result.
type Check struct {
	Name   string // Short identifier, e.g. "artifact-dir"
	Passed bool
	Detail string // Human-readable explanation, always set on failure
}

// CheckReport collects the preflight checks of one verify run.
type CheckReport struct {
	Checks []Check
}

// Add records a check result.
func (r *CheckReport) Add(name string, passed bool, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Passed: passed, Detail: detail})
}

// OK reports whether every check passed.
func (r *CheckReport) OK() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Failed returns the checks that did not pass.
func (r *CheckReport) Failed() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

package migrate

import (
	"time"

	"github.com/hupe1980/pupilrec/version"
)

// Status is the outcome of one attempted step.
type Status string

const (
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// StepResult describes one attempted step.
type StepResult struct {
	Dir       string
	Step      StepID
	Threshold version.Version // zero for the worldless check
	Status    Status
	Attempts  int
	Duration  time.Duration
	Err       error
}

// Report summarizes a run.
type Report struct {
	Dir      string
	From     version.Version
	To       version.Version
	Steps    []StepResult
	Archived bool
	Started  time.Time
	Duration time.Duration
}

// Done reports how many steps completed.
func (r *Report) Done() int { return r.count(StatusDone) }

// Skipped reports how many steps were skipped for missing resources.
func (r *Report) Skipped() int { return r.count(StatusSkipped) }

func (r *Report) count(s Status) int {
	n := 0
	for _, res := range r.Steps {
		if res.Status == s {
			n++
		}
	}
	return n
}

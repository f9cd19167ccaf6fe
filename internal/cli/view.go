package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/pupilrec/journal"
	"github.com/hupe1980/pupilrec/migrate"
	"github.com/hupe1980/pupilrec/version"
)

type stepView struct {
	Step     string        `json:"step"`
	Status   string        `json:"status"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

type runView struct {
	Dir      string     `json:"dir"`
	From     string     `json:"from,omitempty"`
	To       string     `json:"to,omitempty"`
	Archived bool       `json:"archived"`
	Steps    []stepView `json:"steps"`
	Error    string     `json:"error,omitempty"`
}

func (v runView) withDir(dir string) runView {
	v.Dir = dir
	return v
}

type inspectView struct {
	Dir      string              `json:"dir"`
	Version  string              `json:"version"`
	Software string              `json:"software,omitempty"`
	Pending  []string            `json:"pending"`
	Runs     []journal.RunRecord `json:"runs,omitempty"`
}

func reportView(rep *migrate.Report, err error) runView {
	var v runView
	if err != nil {
		v.Error = err.Error()
	}
	if rep == nil {
		return v
	}
	v.Dir = rep.Dir
	v.From = label(rep.From)
	v.To = label(rep.To)
	v.Archived = rep.Archived
	for _, s := range rep.Steps {
		sv := stepView{
			Step:     string(s.Step),
			Status:   string(s.Status),
			Attempts: s.Attempts,
			Duration: s.Duration,
		}
		if s.Err != nil {
			sv.Error = s.Err.Error()
		}
		v.Steps = append(v.Steps, sv)
	}
	return v
}

func label(v version.Version) string {
	if v.IsZero() {
		return ""
	}
	return v.String()
}

func printReport(w io.Writer, rep *migrate.Report, err error) {
	fmt.Fprintf(w, "%s: %s -> %s, %d done, %d skipped", rep.Dir, rep.From, rep.To, rep.Done(), rep.Skipped())
	if rep.Archived {
		fmt.Fprint(w, ", archived")
	}
	if err != nil {
		fmt.Fprintf(w, ": %v", err)
	}
	fmt.Fprintln(w)
}

package migrate

import (
	"github.com/hupe1980/pupilrec/version"
)

// StepID names a migration step.
type StepID string

// Steps in execution order.
const (
	StepLegacy         StepID = "legacy-to-v0.7.4"
	StepV082           StepID = "v0.8.2"
	StepV083           StepID = "v0.8.3"
	StepV086           StepID = "v0.8.6"
	StepV087           StepID = "v0.8.7"
	StepBytesToUnicode StepID = "bytes-to-unicode"
	StepV091           StepID = "v0.9.1"
	StepV093           StepID = "v0.9.3"
	StepV094           StepID = "v0.9.4"
	StepV0913          StepID = "v0.9.13"
	StepV0915          StepID = "v0.9.15"
	StepV13            StepID = "v1.3"
	StepV14            StepID = "v1.4"
	StepV18            StepID = "v1.8"
	StepV19            StepID = "v1.9"
	StepWorldless      StepID = "worldless-check"
)

var (
	// Oldest is the oldest data format that can be migrated.
	Oldest = version.New(0, 3, 0)
	// Newest is the data format every migration ends at.
	Newest = version.New(1, 9, 0)
)

type threshold struct {
	version version.Version
	step    StepID
}

// thresholds is sorted by strictly increasing version.
var thresholds = []threshold{
	{version.New(0, 7, 4), StepLegacy},
	{version.New(0, 8, 2), StepV082},
	{version.New(0, 8, 3), StepV083},
	{version.New(0, 8, 6), StepV086},
	{version.New(0, 8, 7), StepV087},
	{version.New(0, 8, 8), StepBytesToUnicode},
	{version.New(0, 9, 1), StepV091},
	{version.New(0, 9, 3), StepV093},
	{version.New(0, 9, 4), StepV094},
	{version.New(0, 9, 13), StepV0913},
	{version.New(0, 9, 15), StepV0915},
	{version.New(1, 3, 0), StepV13},
	{version.New(1, 4, 0), StepV14},
	{version.New(1, 8, 0), StepV18},
	{version.New(1, 9, 0), StepV19},
}

// Compute returns the steps a recording at version current still needs, in
// execution order. A version-gated step is included iff current is below its
// threshold. The worldless check is always last.
func Compute(current version.Version) []StepID {
	var out []StepID
	for _, t := range thresholds {
		if current.Less(t.version) {
			out = append(out, t.step)
		}
	}
	return append(out, StepWorldless)
}

// Threshold returns the version a step advances a recording to. The
// worldless check has none.
func Threshold(id StepID) (version.Version, bool) {
	for _, t := range thresholds {
		if t.step == id {
			return t.version, true
		}
	}
	return version.Version{}, false
}

// Steps returns every step identifier in execution order.
func Steps() []StepID {
	return Compute(version.Version{})
}

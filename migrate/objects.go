package migrate

import (
	"errors"
	iofs "io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hupe1980/pupilrec/media"
	"github.com/hupe1980/pupilrec/recording"
	"github.com/hupe1980/pupilrec/version"
)

// pupilDataFile is the single-object event container used before 1.8.
const pupilDataFile = "pupil_data"

// Legacy pupil_data keys.
const (
	keyPupilPositions = "pupil_positions"
	keyGazePositions  = "gaze_positions"
	keyNotifications  = "notifications"
)

// nonObjectExt lists extensions of files that are never object files.
var nonObjectExt = []string{
	".mp4", ".avi", ".mkv", ".h264", ".mjpeg", ".wav", ".m4a",
	".npy", ".csv", ".pldata", ".time", ".deprecated",
}

// env is what a step sees of the run.
type env struct {
	rec        *recording.Recording
	store      recording.Store
	step       StepID
	from       version.Version
	log        *slog.Logger
	transcoder media.Transcoder
	prober     media.Prober
}

// missing turns not-exist errors into a MissingResourceError.
func (e *env) missing(resource string, err error) error {
	if errors.Is(err, iofs.ErrNotExist) {
		return &MissingResourceError{Step: e.step, Resource: resource, cause: err}
	}
	return err
}

func (e *env) exists(name string) (bool, error) {
	return e.store.Exists(name)
}

// abs returns the local path of a recording file for external tools.
func (e *env) abs(name string) string {
	return filepath.Join(e.store.Root(), filepath.FromSlash(name))
}

func (e *env) loadPupilData() (map[string]any, error) {
	v, err := e.store.LoadObject(pupilDataFile)
	if err != nil {
		return nil, e.missing(pupilDataFile, err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &recording.FormatError{Path: pupilDataFile, Reason: "not a mapping"}
	}
	return m, nil
}

func (e *env) savePupilData(data map[string]any) error {
	return e.store.SaveObject(pupilDataFile, data)
}

// objectFiles lists root entries that may hold object files.
func (e *env) objectFiles() ([]string, error) {
	names, err := e.store.List("")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, ".") || slices.Contains(nonObjectExt, strings.ToLower(path.Ext(n))) {
			continue
		}
		isDir, err := e.store.IsDir(n)
		if err != nil {
			return nil, err
		}
		if !isDir {
			out = append(out, n)
		}
	}
	return out, nil
}

// datums returns the mappings stored in the list under key. Entries that
// are not mappings are left alone.
func datums(data map[string]any, key string) []map[string]any {
	list, _ := data[key].([]any)
	out := make([]map[string]any, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// str reads a string that early recordings may have stored as bytes.
func str(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

func rename(m map[string]any, from, to string) bool {
	return recording.Event(m).Rename(from, to)
}

func point(x, y float64) []any { return []any{x, y} }

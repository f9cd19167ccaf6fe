package recording

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Found is a recording located by Discover.
type Found struct {
	Dir string
	// Label joins the directory names from the search root down to the
	// recording with "_", e.g. "study_subject01_000".
	Label string
}

// IsRecordingDir reports whether dir holds readable recording metadata.
func IsRecordingDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	_, err = NewLocalStore(dir).ReadMeta()
	return err == nil
}

// Discover walks root and returns every recording below it, including root
// itself. Hidden entries are skipped and recordings are not searched for
// nested recordings. Results are in lexical directory order.
func Discover(root string) ([]Found, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return discover(root)
}

func discover(dir string) ([]Found, error) {
	name := filepath.Base(dir)
	if IsRecordingDir(dir) {
		return []Found{{Dir: dir, Label: name}}, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b os.DirEntry) int { return strings.Compare(a.Name(), b.Name()) })

	var out []Found
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !e.IsDir() {
			continue
		}
		sub, err := discover(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		for _, f := range sub {
			f.Label = name + "_" + f.Label
			out = append(out, f)
		}
	}
	return out, nil
}

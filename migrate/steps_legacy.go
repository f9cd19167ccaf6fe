package migrate

import (
	"context"
	"fmt"

	"github.com/hupe1980/pupilrec/recording"
	"github.com/hupe1980/pupilrec/version"
)

const pupilDataBackup = "pupil_data_old"

// legacyToV074 brings any pre-0.7.4 recording to the v0.7.4 layout. The
// conversion depends on the version the run started from.
func legacyToV074(_ context.Context, e *env) error {
	switch {
	case !e.from.Less(version.New(0, 7, 4)):
		return nil
	case !e.from.Less(version.New(0, 7, 3)):
		return fromV073(e)
	case !e.from.Less(version.New(0, 5, 0)):
		return fromV05(e)
	case !e.from.Less(version.New(0, 4, 0)):
		return fromV04(e)
	default:
		return fromV03(e)
	}
}

// fromV073 renames the camelCase fields of the 3D detector.
func fromV073(e *env) error {
	data, err := e.loadPupilData()
	if err != nil {
		return err
	}
	modified := false
	for _, p := range datums(data, keyPupilPositions) {
		if m, _ := str(p["method"]); m != "3D c++" {
			continue
		}
		p["method"] = "3d c++"
		if !rename(p, "projectedSphere", "projected_sphere") {
			p["projected_sphere"] = map[string]any{"center": point(0, 0), "angle": 0.0, "axes": point(0, 0)}
		}
		rename(p, "modelConfidence", "model_confidence")
		rename(p, "modelID", "model_id")
		rename(p, "circle3D", "circle_3d")
		rename(p, "diameter_3D", "diameter_3d")
		modified = true
	}
	if !modified {
		return nil
	}
	if err := e.store.Copy(pupilDataFile, pupilDataBackup); err != nil {
		return err
	}
	return e.savePupilData(data)
}

// fromV05 resets the detection method of every pupil datum after keeping a
// backup of the original object.
func fromV05(e *env) error {
	data, err := e.loadPupilData()
	if err != nil {
		return err
	}
	if err := e.store.Copy(pupilDataFile, pupilDataBackup); err != nil {
		return err
	}
	for _, p := range datums(data, keyPupilPositions) {
		p["method"] = "2d python"
	}
	return e.savePupilData(data)
}

// fromV04 builds pupil_data from the separate gaze and pupil arrays.
// Rows are (ts, confidence, x, y) for gaze and
// (ts, confidence, id, x, y, diameter, ...) for pupil.
func fromV04(e *env) error {
	gazeArr, err := e.store.ReadArray("gaze_positions.npy")
	if err != nil {
		return e.missing("gaze_positions.npy", err)
	}
	pupilArr, err := e.store.ReadArray("pupil_positions.npy")
	if err != nil {
		return e.missing("pupil_positions.npy", err)
	}
	if err := requireCols(gazeArr, "gaze_positions.npy", 4); err != nil {
		return err
	}
	if err := requireCols(pupilArr, "pupil_positions.npy", 6); err != nil {
		return err
	}

	pupil := make([]any, 0, pupilArr.Rows())
	byTS := make(map[float64]map[string]any, pupilArr.Rows())
	for i := range pupilArr.Rows() {
		r := pupilArr.Row(i)
		p := map[string]any{
			"timestamp":  r[0],
			"confidence": r[1],
			"id":         r[2],
			"norm_pos":   point(r[3], r[4]),
			"diameter":   r[5],
			"method":     "2d python",
			"ellipse":    map[string]any{"angle": 0.0, "center": point(0, 0), "axes": point(0, 0)},
		}
		pupil = append(pupil, p)
		byTS[r[0]] = p
	}

	gaze := make([]any, 0, gazeArr.Rows())
	for i := range gazeArr.Rows() {
		r := gazeArr.Row(i)
		var base any
		if p, ok := byTS[r[0]]; ok {
			base = p
		}
		gaze = append(gaze, map[string]any{
			"timestamp":  r[0],
			"confidence": r[1],
			"norm_pos":   point(r[2], r[3]),
			"base":       []any{base},
		})
	}
	return e.savePupilData(map[string]any{keyPupilPositions: pupil, keyGazePositions: gaze})
}

// fromV03 splits the combined gaze/pupil array into pupil_data. Rows are
// (gaze x, gaze y, pupil x, pupil y, ts, confidence). Size and id were not
// recorded and get placeholder values.
func fromV03(e *env) error {
	arr, err := e.store.ReadArray("gaze_positions.npy")
	if err != nil {
		return e.missing("gaze_positions.npy", err)
	}
	if err := requireCols(arr, "gaze_positions.npy", 6); err != nil {
		return err
	}

	pupil := make([]any, 0, arr.Rows())
	gaze := make([]any, 0, arr.Rows())
	for i := range arr.Rows() {
		r := arr.Row(i)
		p := map[string]any{
			"timestamp":  r[4],
			"confidence": r[5],
			"id":         int64(0),
			"norm_pos":   point(r[2], r[3]),
			"diameter":   50.0,
			"method":     "2d python",
		}
		pupil = append(pupil, p)
		gaze = append(gaze, map[string]any{
			"timestamp":  r[4],
			"confidence": r[5],
			"norm_pos":   point(r[0], r[1]),
			"base":       []any{p},
		})
	}
	if err := e.savePupilData(map[string]any{keyPupilPositions: pupil, keyGazePositions: gaze}); err != nil {
		return err
	}

	hasWorld, err := e.exists("world_timestamps.npy")
	if err != nil {
		return err
	}
	hasOld, err := e.exists("timestamps.npy")
	if err != nil {
		return err
	}
	if !hasWorld && hasOld {
		return e.store.Rename("timestamps.npy", "world_timestamps.npy")
	}
	return nil
}

func requireCols(a *recording.Array, name string, n int) error {
	if a.Rows() > 0 && (len(a.Shape) != 2 || a.Cols() < n) {
		return &recording.FormatError{Path: name, Reason: fmt.Sprintf("shape %v, want (n, >=%d)", a.Shape, n)}
	}
	return nil
}

package migrate

import (
	"context"
	"errors"
	iofs "io/fs"
	"unicode/utf8"

	"github.com/hupe1980/pupilrec/recording"
	"golang.org/x/text/encoding/charmap"
)

// normPosLimit bounds normalized gaze positions. Values beyond it come from
// bad extrapolation and overflow when denormalized to int32 pixels.
const normPosLimit = 100.0

func bumpOnly(context.Context, *env) error { return nil }

// gazeBaseData renames gaze "base" to "base_data".
func gazeBaseData(_ context.Context, e *env) error {
	data, err := e.loadPupilData()
	if err != nil {
		return err
	}
	for _, g := range datums(data, keyGazePositions) {
		rename(g, "base", "base_data")
	}
	return e.savePupilData(data)
}

// topicFields tags every datum with the key of the list it is stored in.
func topicFields(_ context.Context, e *env) error {
	data, err := e.loadPupilData()
	if err != nil {
		return err
	}
	for key := range data {
		for _, d := range datums(data, key) {
			d[recording.FieldTopic] = key
		}
	}
	return e.savePupilData(data)
}

// clampGaze defaults the gaze topic and clamps norm_pos.
func clampGaze(_ context.Context, e *env) error {
	data, err := e.loadPupilData()
	if err != nil {
		return err
	}
	for _, g := range datums(data, keyGazePositions) {
		if _, ok := g[recording.FieldTopic]; !ok {
			g[recording.FieldTopic] = "gaze"
		}
		x, y, ok := recording.AsPoint(g[recording.FieldNormPos])
		if !ok {
			continue
		}
		g[recording.FieldNormPos] = point(clamp(x), clamp(y))
	}
	return e.savePupilData(data)
}

func clamp(v float64) float64 {
	return min(normPosLimit, max(-normPosLimit, v))
}

// floatNormPos stores gaze norm_pos as a pair of floats.
func floatNormPos(_ context.Context, e *env) error {
	data, err := e.loadPupilData()
	if err != nil {
		return err
	}
	for _, g := range datums(data, keyGazePositions) {
		if x, y, ok := recording.AsPoint(g[recording.FieldNormPos]); ok {
			g[recording.FieldNormPos] = point(x, y)
		}
	}
	return e.savePupilData(data)
}

// bytesToUnicode rewrites byte strings in object files as text. Bytes that
// are not valid UTF-8 are decoded as Windows-1252. The metadata file is
// rewritten in canonical form.
func bytesToUnicode(_ context.Context, e *env) error {
	names, err := e.objectFiles()
	if err != nil {
		return err
	}
	for _, name := range names {
		obj, err := e.store.LoadObject(name)
		if err != nil {
			var fe *recording.FormatError
			if errors.As(err, &fe) {
				continue
			}
			return err
		}
		converted, changed := toText(obj)
		if !changed {
			continue
		}
		if err := e.store.SaveObject(name, converted); err != nil {
			return err
		}
		e.log.Info("converted byte strings to text", "file", name)
	}
	return e.rec.SaveMeta()
}

func toText(v any) (any, bool) {
	switch t := v.(type) {
	case []byte:
		return decodeText(t), true
	case map[string]any:
		changed := false
		for k, item := range t {
			if c, ok := toText(item); ok {
				t[k] = c
				changed = true
			}
		}
		return t, changed
	case []any:
		changed := false
		for i, item := range t {
			if c, ok := toText(item); ok {
				t[i] = c
				changed = true
			}
		}
		return t, changed
	}
	return v, false
}

func decodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// resaveObjects rewrites every object file in the current encoding. Files
// that do not decode are handed to the store's legacy decoder; those it
// cannot read either are left alone.
func resaveObjects(_ context.Context, e *env) error {
	names, err := e.objectFiles()
	if err != nil {
		return err
	}
	for _, name := range names {
		obj, err := e.store.LoadObject(name)
		if err == nil {
			if err := e.store.SaveObject(name, obj); err != nil {
				return err
			}
			continue
		}
		var fe *recording.FormatError
		if !errors.As(err, &fe) {
			return err
		}
		obj, err = e.store.LoadLegacyObject(name)
		if err != nil {
			e.log.Warn("object not converted", "file", name, "error", err)
			continue
		}
		if err := e.store.SaveObject(name, obj); err != nil {
			return err
		}
		e.log.Info("converted legacy object to msgpack", "file", name)
	}
	return nil
}

// notificationsAndIntrinsics adds the notifications list and replaces
// camera_calibration with world.intrinsics.
func notificationsAndIntrinsics(_ context.Context, e *env) error {
	data, err := e.loadPupilData()
	if err != nil {
		return err
	}
	if _, ok := data[keyNotifications]; !ok {
		data[keyNotifications] = []any{}
		if err := e.savePupilData(data); err != nil {
			return err
		}
	}

	const calibFile = "camera_calibration"
	obj, err := e.store.LoadObject(calibFile)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	calib, ok := obj.(map[string]any)
	if !ok {
		return &recording.FormatError{Path: calibFile, Reason: "not a mapping"}
	}
	w, h, ok := recording.AsPoint(calib["resolution"])
	if !ok {
		return &recording.FormatError{Path: calibFile, Reason: "no resolution"}
	}
	delete(calib, "resolution")
	delete(calib, "camera_name")
	calib["cam_type"] = "radial"

	intrinsics := map[string]any{resolutionKey(int(w), int(h)): calib, "version": int64(1)}
	if err := e.store.SaveObject(intrinsicsFile("world"), intrinsics); err != nil {
		return err
	}
	e.log.Info("replaced camera_calibration with world.intrinsics")
	return e.store.Rename(calibFile, calibFile+".deprecated")
}

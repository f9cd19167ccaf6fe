package migrate

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/hupe1980/pupilrec/recording"
)

const (
	audioWAV           = "audio.wav"
	audioAAC           = "audio.mp4"
	audioTimestamps    = "audio_timestamps.npy"
	audioTimestampsOld = "audio_timestamps_old.npy"
)

// mediaExt lists the extensions a .time file's media may have, by priority.
var mediaExt = []string{".mjpeg", ".mp4", ".m4a"}

// transcodeAudio replaces audio.wav by an AAC stream and re-interpolates the
// audio timestamps onto the new frames. The old timestamps are kept in
// audio_timestamps_old.npy.
func transcodeAudio(ctx context.Context, e *env) error {
	hasWAV, err := e.exists(audioWAV)
	if err != nil {
		return err
	}
	hasTS, err := e.exists(audioTimestamps)
	if err != nil {
		return err
	}
	if !hasWAV || !hasTS {
		return nil
	}
	if e.transcoder == nil {
		return &TranscodeError{Src: audioWAV, cause: fmt.Errorf("no transcoder configured")}
	}

	stats, err := e.transcoder.TranscodeAudio(ctx, e.abs(audioWAV), e.abs(audioAAC))
	if err != nil {
		return &TranscodeError{Src: audioWAV, cause: err}
	}

	// An interrupted earlier attempt may have left the backup behind. It
	// holds the timestamps of the wav frames.
	src := audioTimestamps
	hasBackup, err := e.exists(audioTimestampsOld)
	if err != nil {
		return err
	}
	if hasBackup {
		src = audioTimestampsOld
	}
	old, err := e.store.ReadArray(src)
	if err != nil {
		return err
	}
	if !hasBackup {
		if err := e.store.WriteTimestamps(audioTimestampsOld, old.Data); err != nil {
			return err
		}
	}
	if stats.InFrames > 0 && len(old.Data) != stats.InFrames {
		e.log.Debug("audio frame count differs from timestamp count", "frames", stats.InFrames, "timestamps", len(old.Data))
	}
	return e.store.WriteTimestamps(audioTimestamps, reinterpolateAudio(old.Data, stats))
}

// timeFile is a Pupil Mobile style raw timestamp file and its media.
type timeFile struct {
	name  string // base name without .time
	media string // existing media file name
}

func (e *env) timeFiles() ([]timeFile, error) {
	names, err := e.store.Glob("*.time")
	if err != nil {
		return nil, err
	}
	var out []timeFile
	for _, n := range names {
		base := strings.TrimSuffix(n, ".time")
		for _, ext := range mediaExt {
			ok, err := e.exists(base + ext)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, timeFile{name: base, media: base + ext})
				break
			}
		}
	}
	return out, nil
}

// convertTimeFile writes <target>_timestamps.npy from a .time file and
// renames its media to target, keeping the media extension unless dstExt
// is set.
func (e *env) convertTimeFile(tf timeFile, target, dstExt string) error {
	ts, err := e.store.ReadRawTimes(tf.name + ".time")
	if err != nil {
		return err
	}
	tsFile := recording.TimestampsFile(target)
	e.log.Info("creating timestamps", "file", tsFile)
	if err := e.store.WriteTimestamps(tsFile, ts); err != nil {
		return err
	}
	if dstExt == "" {
		dstExt = path.Ext(tf.media)
	}
	dst := target + dstExt
	e.log.Info("renaming media", "from", tf.media, "to", dst)
	return e.store.Rename(tf.media, dst)
}

// eyeName maps Pupil Cam eye cameras to eye0/eye1.
func eyeName(name string, prefixes ...string) (string, bool) {
	for _, p := range prefixes {
		if name == p+" ID0" || name == p+" ID1" {
			return "eye" + name[len(name)-1:], true
		}
	}
	return "", false
}

// cam2TimeFiles converts remaining Pupil Cam2 eye videos.
func cam2TimeFiles(_ context.Context, e *env) error {
	files, err := e.timeFiles()
	if err != nil {
		return err
	}
	for _, tf := range files {
		target, ok := eyeName(tf.name, "Pupil Cam2")
		if !ok {
			continue
		}
		if err := e.convertTimeFile(tf, target, ""); err != nil {
			return err
		}
	}
	return nil
}

// worldCameras are the scene cameras Pupil Mobile records.
var worldCameras = []string{"Pupil Cam1 ID2", "Logitech Webcam C930e"}

// convertPupilMobile turns a Pupil Mobile recording into a v0.9.4 one.
func convertPupilMobile(ctx context.Context, e *env) error {
	e.log.Info("converting Pupil Mobile recording")
	files, err := e.timeFiles()
	if err != nil {
		return err
	}
	for _, tf := range files {
		target, dstExt := tf.name, ""
		if eye, ok := eyeName(tf.name, "Pupil Cam1", "Pupil Cam2"); ok {
			target = eye
		} else if slices.Contains(worldCameras, tf.name) {
			target = "world"
			if err := e.writeWorldIntrinsics(ctx, tf); err != nil {
				return err
			}
		} else if strings.HasPrefix(tf.name, "audio_") {
			target, dstExt = "audio", ".mp4"
		}
		if err := e.convertTimeFile(tf, target, dstExt); err != nil {
			return err
		}
	}

	ok, err := e.exists(pupilDataFile)
	if err != nil || ok {
		return err
	}
	e.log.Info("creating empty pupil_data")
	return e.savePupilData(map[string]any{
		keyPupilPositions: []any{},
		keyGazePositions:  []any{},
		keyNotifications:  []any{},
	})
}

func (e *env) writeWorldIntrinsics(ctx context.Context, tf timeFile) error {
	if e.prober == nil {
		e.log.Warn("no video prober configured, world intrinsics not generated", "camera", tf.name)
		return nil
	}
	w, h, err := e.prober.VideoSize(ctx, e.abs(tf.media))
	if err != nil {
		e.log.Warn("cannot probe world video, intrinsics not generated", "camera", tf.name, "error", err)
		return nil
	}
	return e.store.SaveObject(intrinsicsFile("world"), dummyIntrinsics(tf.name, w, h))
}

func intrinsicsFile(camera string) string { return camera + ".intrinsics" }

// resolutionKey renders a resolution the way intrinsics files key them.
func resolutionKey(w, h int) string { return fmt.Sprintf("(%d, %d)", w, h) }

// dummyFocalLength is the focal length assumed for uncalibrated cameras.
const dummyFocalLength = 1000.0

func dummyIntrinsics(camera string, w, h int) map[string]any {
	matrix := []any{
		[]any{dummyFocalLength, 0.0, float64(w) / 2},
		[]any{0.0, dummyFocalLength, float64(h) / 2},
		[]any{0.0, 0.0, 1.0},
	}
	return map[string]any{
		resolutionKey(w, h): map[string]any{
			"camera_matrix": matrix,
			"dist_coefs":    []any{[]any{0.0, 0.0, 0.0, 0.0, 0.0}},
			"cam_type":      "dummy",
			"camera_name":   camera,
		},
		"version": int64(1),
	}
}

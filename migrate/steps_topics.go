package migrate

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"math"
	"path"
	"slices"
	"strings"

	"github.com/hupe1980/pupilrec/recording"
)

// legacyTopics maps pupil_data keys to per-topic file names.
var legacyTopics = map[string]string{
	keyNotifications:  recording.TopicNotify,
	keyGazePositions:  recording.TopicGaze,
	keyPupilPositions: recording.TopicPupil,
}

// splitPupilData writes every list of the legacy pupil_data object into its
// own topic files and fixes the per-datum topic names.
func splitPupilData(_ context.Context, e *env) error {
	data, err := e.loadPupilData()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, old := range keys {
		name := old
		if mapped, ok := legacyTopics[old]; ok {
			name = mapped
		}
		topic := recording.NewTopic(name)
		for _, d := range datums(data, old) {
			if err := fixTopic(name, d); err != nil {
				return fmt.Errorf("topic %s: %w", old, err)
			}
			ts, ok := recording.Event(d).Timestamp()
			if !ok {
				return &recording.FormatError{Path: pupilDataFile, Reason: fmt.Sprintf("%s datum without timestamp", old)}
			}
			if err := topic.AppendEvent(ts, recording.Event(d)); err != nil {
				return err
			}
		}
		if err := e.store.WriteTopic(topic); err != nil {
			return err
		}
		e.log.Info("wrote topic", "topic", name, "events", topic.Len())
	}
	return nil
}

func fixTopic(name string, d map[string]any) error {
	current, _ := str(d[recording.FieldTopic])
	switch {
	case name == recording.TopicNotify:
		subject, ok := str(d["subject"])
		if !ok {
			return errors.New("notification without subject")
		}
		d[recording.FieldTopic] = "notify." + subject
	case name == recording.TopicPupil:
		id, ok := recording.AsInt(d[recording.FieldID])
		if !ok {
			return errors.New("pupil datum without id")
		}
		if current == "" {
			current = recording.TopicPupil
		}
		d[recording.FieldTopic] = fmt.Sprintf("%s.%d", current, id)
	case strings.HasPrefix(name, "surface"):
		surface, _ := str(d["name"])
		d[recording.FieldTopic] = "surfaces." + surface
	case name == "blinks" || name == "fixations":
		if current == "" {
			current = strings.TrimSuffix(name, "s")
		}
		d[recording.FieldTopic] = current + "s"
	case current != "":
		d[recording.FieldTopic] = current
	}
	return nil
}

// Annotation sources.
const (
	cachedAnnotations   = recording.OfflineDir + "/annotations"
	recordedAnnotations = "notify.annotation"
)

// annotations creates the annotation topic. Annotations edited in the
// player's offline cache are copied first, then the recorded notifications
// are written over them, so the recorded ones end up in the topic.
func annotations(_ context.Context, e *env) error {
	ok, err := e.exists(recording.DataFile(cachedAnnotations))
	if err != nil {
		return err
	}
	if ok {
		e.log.Info("copying annotations edited in player")
		if err := e.store.Copy(recording.DataFile(cachedAnnotations), recording.DataFile(recording.TopicAnnotation)); err != nil {
			return err
		}
		if err := e.store.Copy(recording.TimestampsFile(cachedAnnotations), recording.TimestampsFile(recording.TopicAnnotation)); err != nil {
			return err
		}
	}

	out := recording.NewTopic(recording.TopicAnnotation)
	notify, err := e.store.ReadTopic(recording.TopicNotify)
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		e.log.Info("no recorded notifications")
	case err != nil:
		return err
	default:
		for i, label := range notify.Labels {
			if label == recordedAnnotations {
				out.Append(notify.Timestamps[i], recording.TopicAnnotation, notify.Payloads[i])
			}
		}
	}
	e.log.Info("copying recorded annotations", "count", out.Len())
	return e.store.WriteTopic(out)
}

// worldVideoExt lists extensions of world videos.
var worldVideoExt = []string{".mp4", ".mkv", ".avi", ".h264", ".mjpeg"}

// fakeWorldRate is the frame rate of synthesized world timelines.
const fakeWorldRate = 30

// checkWorldless synthesizes a world timeline for recordings without a
// world video, spanning the eye timestamps.
func checkWorldless(_ context.Context, e *env) error {
	worlds, err := e.store.Glob("world.*")
	if err != nil {
		return err
	}
	for _, w := range worlds {
		if slices.Contains(worldVideoExt, path.Ext(w)) {
			return nil
		}
	}

	eyes, err := e.store.Glob("eye*_timestamps.npy")
	if err != nil {
		return err
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, name := range eyes {
		a, err := e.store.ReadArray(name)
		if err != nil {
			return err
		}
		if len(a.Shape) != 1 || len(a.Data) < 2 {
			continue
		}
		lo = min(lo, a.Data[0])
		hi = max(hi, a.Data[len(a.Data)-1])
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || !(lo < hi) {
		return ErrInvalidRecording
	}

	e.log.Warn("no world video found, constructing an artificial replacement")
	if err := e.store.WriteTimestamps(recording.TimestampsFile("world"), arange(lo, hi, 1.0/fakeWorldRate)); err != nil {
		return err
	}
	return e.store.SaveObject("world.fake", map[string]any{
		"frame_rate": int64(fakeWorldRate),
		"frame_size": []any{int64(1280), int64(720)},
		"version":    int64(0),
	})
}

// arange returns start, start+step, ... below stop.
func arange(start, stop, step float64) []float64 {
	n := int(math.Ceil((stop - start) / step))
	out := make([]float64, max(n, 0))
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

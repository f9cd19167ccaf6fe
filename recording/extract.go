package recording

import (
	"errors"
	iofs "io/fs"
)

// Well-known topics.
const (
	TopicPupil      = "pupil"
	TopicGaze       = "gaze"
	TopicNotify     = "notify"
	TopicAnnotation = "annotation"
)

// PupilRow is the flattened view of one pupil datum.
type PupilRow struct {
	EyeID      int
	Timestamp  float64
	Confidence float64
	Diameter   float64
	// Diameter3D is zero for recordings without 3D detection.
	Diameter3D float64
	NormX      float64
	NormY      float64
}

// AnnotationRow is the flattened view of one annotation.
type AnnotationRow struct {
	Timestamp float64
	Label     string
}

// ExtractPupilRows flattens the pupil topic, preferring the offline cache.
// The timestamp of a row is the one stored in the timestamp array, not in
// the payload.
func ExtractPupilRows(s Store) ([]PupilRow, error) {
	t, err := s.ReadTopicPreferOffline(TopicPupil)
	if err != nil {
		return nil, err
	}
	rows := make([]PupilRow, 0, t.Len())
	for i := range t.Len() {
		e, err := t.Decode(i)
		if err != nil {
			return nil, err
		}
		row := PupilRow{Timestamp: t.Timestamps[i]}
		var ok bool
		if row.EyeID, ok = AsInt(e[FieldID]); !ok {
			return nil, &FormatError{Path: DataFile(t.Name), Reason: "pupil datum without id"}
		}
		row.Confidence, _ = e.Float(FieldConfidence)
		row.Diameter, _ = e.Float("diameter")
		row.Diameter3D, _ = e.Float("diameter_3d")
		row.NormX, row.NormY, _ = e.Point(FieldNormPos)
		rows = append(rows, row)
	}
	return rows, nil
}

// ExtractAnnotations returns the labels of recorded notifications, falling
// back to the annotation topic when the recording has no notify topic.
func ExtractAnnotations(s Store) ([]AnnotationRow, error) {
	topic := TopicNotify
	ok, err := s.Exists(TimestampsFile(topic))
	if err != nil {
		return nil, err
	}
	if !ok {
		topic = TopicAnnotation
	}
	t, err := s.ReadTopic(topic)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rows := make([]AnnotationRow, 0, t.Len())
	for i := range t.Len() {
		e, err := t.Decode(i)
		if err != nil {
			return nil, err
		}
		label, _ := e.String(FieldLabel)
		rows = append(rows, AnnotationRow{Timestamp: t.Timestamps[i], Label: label})
	}
	return rows, nil
}

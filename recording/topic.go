package recording

import (
	"fmt"
	"io"

	"github.com/hupe1980/pupilrec/codec"
	"github.com/hupe1980/pupilrec/timeindex"
	"github.com/tinylib/msgp/msgp"
)

// Offline cache layout.
const (
	OfflineDir    = "offline_data"
	offlinePrefix = "offline_"
)

// TimestampsFile returns the timestamp array file name of topic.
func TimestampsFile(topic string) string { return topic + "_timestamps.npy" }

// DataFile returns the event log file name of topic.
func DataFile(topic string) string { return topic + ".pldata" }

// OfflineTimestampsFile returns the cached timestamp file of topic.
func OfflineTimestampsFile(topic string) string {
	return OfflineDir + "/" + offlinePrefix + TimestampsFile(topic)
}

// OfflineDataFile returns the cached event log file of topic.
func OfflineDataFile(topic string) string {
	return OfflineDir + "/" + offlinePrefix + DataFile(topic)
}

// Topic is one event stream: timestamps paired one-to-one by position with
// framed payloads. Payloads stay serialized until decoded.
type Topic struct {
	Name       string
	Timestamps []float64
	Labels     []string
	Payloads   [][]byte
}

// NewTopic returns an empty topic.
func NewTopic(name string) *Topic {
	return &Topic{Name: name}
}

// Len returns the number of events.
func (t *Topic) Len() int { return len(t.Timestamps) }

// Append adds an already serialized payload.
func (t *Topic) Append(ts float64, label string, payload []byte) {
	t.Timestamps = append(t.Timestamps, ts)
	t.Labels = append(t.Labels, label)
	t.Payloads = append(t.Payloads, payload)
}

// AppendEvent serializes e and appends it. The event's "topic" field is used
// as frame label when present, the topic name otherwise.
func (t *Topic) AppendEvent(ts float64, e Event) error {
	payload, err := codec.MsgPack{}.Marshal(map[string]any(e))
	if err != nil {
		return fmt.Errorf("encode %s event: %w", t.Name, err)
	}
	label, ok := e.String(FieldTopic)
	if !ok {
		label = t.Name
	}
	t.Append(ts, label, payload)
	return nil
}

// Decode deserializes the i-th payload.
func (t *Topic) Decode(i int) (Event, error) {
	var m map[string]any
	if err := (codec.MsgPack{}).Unmarshal(t.Payloads[i], &m); err != nil {
		return nil, &FormatError{Path: DataFile(t.Name), Reason: fmt.Sprintf("payload %d", i), cause: err}
	}
	return Event(m), nil
}

// Events decodes every payload.
func (t *Topic) Events() ([]Event, error) {
	out := make([]Event, t.Len())
	for i := range out {
		e, err := t.Decode(i)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// Index decodes the topic into a timestamp index.
func (t *Topic) Index() (*timeindex.Index[Event], error) {
	events, err := t.Events()
	if err != nil {
		return nil, err
	}
	return timeindex.New(events, t.Timestamps)
}

// writeFrames encodes (label, payload) frames.
func writeFrames(w io.Writer, t *Topic) error {
	mw := msgp.NewWriter(w)
	for i := range t.Payloads {
		if err := mw.WriteArrayHeader(2); err != nil {
			return err
		}
		if err := mw.WriteString(t.Labels[i]); err != nil {
			return err
		}
		if err := mw.WriteBytes(t.Payloads[i]); err != nil {
			return err
		}
	}
	return mw.Flush()
}

// readFrames decodes every frame in data.
func readFrames(data []byte, path string) (labels []string, payloads [][]byte, err error) {
	b := data
	for i := 0; len(b) > 0; i++ {
		var sz uint32
		sz, b, err = msgp.ReadArrayHeaderBytes(b)
		if err != nil {
			return nil, nil, &FormatError{Path: path, Reason: fmt.Sprintf("frame %d header", i), cause: err}
		}
		if sz != 2 {
			return nil, nil, &FormatError{Path: path, Reason: fmt.Sprintf("frame %d has %d elements, want 2", i, sz)}
		}
		var label string
		label, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, nil, &FormatError{Path: path, Reason: fmt.Sprintf("frame %d label", i), cause: err}
		}
		var payload []byte
		if msgp.NextType(b) == msgp.StrType {
			// written without bin type by early releases
			var raw []byte
			raw, b, err = msgp.ReadStringZC(b)
			payload = append([]byte(nil), raw...)
		} else {
			payload, b, err = msgp.ReadBytesBytes(b, nil)
		}
		if err != nil {
			return nil, nil, &FormatError{Path: path, Reason: fmt.Sprintf("frame %d payload", i), cause: err}
		}
		labels = append(labels, label)
		payloads = append(payloads, payload)
	}
	return labels, payloads, nil
}

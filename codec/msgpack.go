package codec

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// MsgPack encodes dynamic values (maps, slices, scalars) as msgpack.
//
// Decoding yields the generic value model of msgp: map[string]any, []any,
// int64, uint64, float64, float32, string, []byte, bool and nil.
type MsgPack struct{}

// Marshal encodes v as a single msgpack value.
func (MsgPack) Marshal(v any) ([]byte, error) {
	return msgp.AppendIntf(nil, v)
}

// Unmarshal decodes a single msgpack value into v, which must be *any or
// *map[string]any. Trailing bytes are an error.
func (MsgPack) Unmarshal(data []byte, v any) error {
	out, rest, err := msgp.ReadIntfBytes(data)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return fmt.Errorf("msgpack: %d trailing bytes", len(rest))
	}
	switch p := v.(type) {
	case *any:
		*p = out
	case *map[string]any:
		m, ok := out.(map[string]any)
		if !ok {
			return fmt.Errorf("msgpack: expected map, got %T", out)
		}
		*p = m
	default:
		return fmt.Errorf("msgpack: unsupported target %T", v)
	}
	return nil
}

// Name returns the unique name of the codec ("msgpack").
func (MsgPack) Name() string { return "msgpack" }

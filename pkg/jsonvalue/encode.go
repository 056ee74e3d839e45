package jsonvalue

import (
	"bytes"

	"github.com/goccy/go-json"
)

// String renders v as compact JSON. Object members keep their insertion order.
func (v Value) String() string {
	var buf bytes.Buffer
	v.write(&buf)
	return buf.String()
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.write(&buf)
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping object order and number kinds.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func (v Value) write(buf *bytes.Buffer) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindInteger, KindFloat:
		buf.WriteString(v.s)
	case KindString:
		writeString(buf, v.s)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.write(buf)
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		first := true
		v.obj.Each(func(k string, item Value) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			writeString(buf, k)
			buf.WriteByte(':')
			item.write(buf)
			return true
		})
		buf.WriteByte('}')
	}
}

func writeString(buf *bytes.Buffer, s string) {
	quoted, err := json.MarshalNoEscape(s)
	if err != nil {
		// strings always marshal; keep output well formed regardless
		buf.WriteString(`""`)
		return
	}
	buf.Write(quoted)
}

// Interface converts v into plain Go values: nil, bool, json.Number, string,
// []any and map[string]any. Member order is lost.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInteger, KindFloat:
		return json.Number(v.s)
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, v.obj.Len())
		v.obj.Each(func(k string, item Value) bool {
			out[k] = item.Interface()
			return true
		})
		return out
	default:
		return nil
	}
}

package jsonvalue

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// FromInterface converts plain Go values into a Value.
// Map keys are sorted since Go maps carry no order.
func FromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		return number(string(t))
	case string:
		return String(t), nil
	case []string:
		items := make([]Value, len(t))
		for i, s := range t {
			items[i] = String(s)
		}
		return Array(items...), nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := FromInterface(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = v
		}
		return Array(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		obj := NewObject()
		for _, k := range keys {
			v, err := FromInterface(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			obj.Set(k, v)
		}
		return FromObject(obj), nil
	}
	return Value{}, fmt.Errorf("unsupported type %T", x)
}

// MustParse decodes JSON text and panics on failure. Intended for tests and literals.
func MustParse(text string) Value {
	v, err := Decode([]byte(text))
	if err != nil {
		panic(fmt.Sprintf("jsonvalue: MustParse(%q): %v", text, err))
	}
	return v
}

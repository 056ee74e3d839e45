package jsonvalue

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// MaxDecodeDepth bounds array/object nesting accepted by the decoders.
const MaxDecodeDepth = 5000

var (
	// ErrSyntax is returned when the input is not well formed.
	ErrSyntax = errors.New("invalid JSON syntax")
	// ErrTooDeep is returned when nesting exceeds MaxDecodeDepth.
	ErrTooDeep = errors.New("document nesting too deep")
	// ErrTooLarge is returned when YAML aliases expand past the document's budget.
	ErrTooLarge = errors.New("document expands too much")
)

// Decode parses a single JSON document.
// Object member order and the integer/float distinction are preserved.
func Decode(data []byte) (Value, error) {
	if !json.Valid(data) {
		// Re-run through the standard decode path to get a positioned message.
		var discard any
		if err := json.Unmarshal(data, &discard); err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return Value{}, ErrSyntax
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec, 0)
	if err != nil {
		return Value{}, err
	}
	if dec.More() {
		return Value{}, fmt.Errorf("%w: trailing data after document", ErrSyntax)
	}
	return v, nil
}

// DecodeReader reads r to the end and decodes it as JSON.
func DecodeReader(r io.Reader) (Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Value{}, fmt.Errorf("read document: %w", err)
	}
	return Decode(data)
}

// DecodeAuto decodes YAML for .yaml/.yml names and JSON otherwise.
func DecodeAuto(name string, data []byte) (Value, error) {
	if IsYAMLName(name) {
		return DecodeYAML(data)
	}
	return Decode(data)
}

// IsYAMLName reports whether a file name carries a YAML extension.
func IsYAMLName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return fromToken(dec, tok, depth)
}

func fromToken(dec *json.Decoder, tok json.Token, depth int) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		v, err := number(string(t))
		if err != nil {
			return Value{}, fmt.Errorf("%w: bad number %q", ErrSyntax, string(t))
		}
		return v, nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		if depth+1 > MaxDecodeDepth {
			return Value{}, ErrTooDeep
		}
		switch t {
		case '[':
			return decodeArray(dec, depth+1)
		case '{':
			return decodeObject(dec, depth+1)
		}
	}
	return Value{}, fmt.Errorf("%w: unexpected token %v", ErrSyntax, tok)
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	items := []Value{}
	for dec.More() {
		item, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
	// closing ']'
	if _, err := dec.Token(); err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return Array(items...), nil
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("%w: object key must be a string, got %v", ErrSyntax, tok)
		}
		item, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, item)
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return FromObject(obj), nil
}

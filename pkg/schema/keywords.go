package schema

import (
	"errors"
	"fmt"

	"github.com/aretw0/schemacheck/pkg/jsonvalue"
)

// Recognised keywords, in evaluation order.
const (
	KeywordType       = "type"
	KeywordEnum       = "enum"
	KeywordPattern    = "pattern"
	KeywordRequired   = "required"
	KeywordProperties = "properties"
	KeywordItems      = "items"
)

// Keywords lists the interpreted schema keys in the order they are checked.
var Keywords = []string{KeywordType, KeywordEnum, KeywordPattern, KeywordRequired, KeywordProperties, KeywordItems}

// walker owns the error sink of a single validation run.
type walker struct {
	opts options
	errs []ValidationError
}

func (w *walker) fail(path Path, kind ErrorKind, format string, args ...any) bool {
	w.errs = append(w.errs, ValidationError{
		Path:    path.String(),
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
	return false
}

// validateValue applies one schema node. The first failing keyword ends the
// checks at this node; properties and items still visit every child.
func (w *walker) validateValue(value, schema jsonvalue.Value, path Path, depth int) bool {
	if depth > w.opts.maxDepth {
		return w.fail(path, KindDepth, "Maximum validation depth %d exceeded", w.opts.maxDepth)
	}

	node := schema.Object()
	if node == nil {
		return w.fail(path, KindSchema, "Schema must be an object")
	}

	if t, ok := node.Get(KeywordType); ok {
		if !w.validateType(value, t, path) {
			return false
		}
	}

	if e, ok := node.Get(KeywordEnum); ok {
		if !w.validateEnum(value, e, path) {
			return false
		}
	}

	if p, ok := node.Get(KeywordPattern); ok {
		if s, isString := value.AsString(); isString {
			if !w.validatePattern(s, p, path) {
				return false
			}
		}
	}

	obj := value.Object()

	if r, ok := node.Get(KeywordRequired); ok && obj != nil {
		if !w.validateRequired(obj, r, path) {
			return false
		}
	}

	if p, ok := node.Get(KeywordProperties); ok && obj != nil {
		if !w.validateProperties(obj, p, path, depth) {
			return false
		}
	}

	if i, ok := node.Get(KeywordItems); ok && value.IsArray() {
		if !w.validateItems(value.Items(), i, path, depth) {
			return false
		}
	}

	return true
}

func (w *walker) validateType(value, expected jsonvalue.Value, path Path) bool {
	if expected.IsArray() {
		for _, entry := range expected.Items() {
			if matchesTypeEntry(value, entry) {
				return true
			}
		}
		return w.fail(path, KindType, "Value '%s' is not one of types %s (got %s)",
			value.Text(), expected.String(), value.Kind())
	}

	if matchesTypeEntry(value, expected) {
		return true
	}
	return w.fail(path, KindType, "Value '%s' is not of type %s (got %s)",
		value.Text(), expected.Text(), value.Kind())
}

func (w *walker) validateEnum(value, allowed jsonvalue.Value, path Path) bool {
	members := allowed.Items()
	if !allowed.IsArray() {
		members = []jsonvalue.Value{allowed}
	}
	if jsonvalue.Contains(members, value) {
		return true
	}
	return w.fail(path, KindEnum, "Value '%s' is not in enum %s", value.Text(), jsonvalue.Array(members...).String())
}

func (w *walker) validatePattern(s string, pattern jsonvalue.Value, path Path) bool {
	expr, ok := pattern.AsString()
	if !ok {
		return w.fail(path, KindInvalidPattern, "Invalid regex pattern '%s'", pattern.Text())
	}

	matched, err := w.opts.patterns.MatchPrefix(expr, s)
	switch {
	case errors.Is(err, errInvalidPattern):
		return w.fail(path, KindInvalidPattern, "Invalid regex pattern '%s'", expr)
	case err != nil:
		return w.fail(path, KindPattern, "Pattern '%s' timed out", expr)
	case !matched:
		return w.fail(path, KindPattern, "String '%s' doesn't match pattern '%s'", s, expr)
	}
	return true
}

// validateRequired reports every missing key, not only the first.
func (w *walker) validateRequired(obj *jsonvalue.Object, required jsonvalue.Value, path Path) bool {
	valid := true
	for _, entry := range required.Items() {
		name, ok := entry.AsString()
		if !ok {
			continue
		}
		if !obj.Has(name) {
			w.fail(path, KindRequired, "Missing required property '%s'", name)
			valid = false
		}
	}
	return valid
}

// validateProperties walks the value's members in order. Members without a
// matching entry in properties are not checked.
func (w *walker) validateProperties(obj *jsonvalue.Object, properties jsonvalue.Value, path Path, depth int) bool {
	declared := properties.Object()
	if declared == nil {
		return true
	}

	valid := true
	obj.Each(func(key string, child jsonvalue.Value) bool {
		childSchema, ok := declared.Get(key)
		if !ok {
			return true
		}
		if !w.validateValue(child, childSchema, path.Key(key), depth+1) {
			valid = false
		}
		return true
	})
	return valid
}

func (w *walker) validateItems(items []jsonvalue.Value, itemSchema jsonvalue.Value, path Path, depth int) bool {
	valid := true
	for i, item := range items {
		if !w.validateValue(item, itemSchema, path.Index(i), depth+1) {
			valid = false
		}
	}
	return valid
}

// IsKeyword reports whether key is interpreted by the engine.
func IsKeyword(key string) bool {
	for _, k := range Keywords {
		if k == key {
			return true
		}
	}
	return false
}

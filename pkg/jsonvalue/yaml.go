package jsonvalue

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlNodeBudget returns how many values a YAML document of size n may expand to.
// Aliases can repeat a subtree, but a document is never allowed to grow far
// beyond its own size.
func yamlNodeBudget(n int) int {
	return 4*n + 1024
}

// DecodeYAML parses a YAML document into a Value.
// Mapping order is kept; scalars follow their resolved YAML tag.
// Alias expansion is bounded: a document that would produce more values than
// its size allows fails with ErrTooLarge.
func DecodeYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return Null(), nil
	}
	conv := &yamlConverter{budget: yamlNodeBudget(len(data))}
	return conv.fromYAML(doc.Content[0], 0)
}

type yamlConverter struct {
	budget int
}

func (c *yamlConverter) fromYAML(n *yaml.Node, depth int) (Value, error) {
	if depth > MaxDecodeDepth {
		return Value{}, ErrTooDeep
	}
	if n.Kind != yaml.DocumentNode && n.Kind != yaml.AliasNode {
		if c.budget--; c.budget < 0 {
			return Value{}, ErrTooLarge
		}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return c.fromYAML(n.Content[0], depth)
	case yaml.AliasNode:
		return c.fromYAML(n.Alias, depth+1)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := c.fromYAML(child, depth+1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Array(items...), nil
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("%w: line %d: mapping keys must be scalars", ErrSyntax, keyNode.Line)
			}
			item, err := c.fromYAML(valNode, depth+1)
			if err != nil {
				return Value{}, err
			}
			obj.Set(keyNode.Value, item)
		}
		return FromObject(obj), nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return Value{}, fmt.Errorf("%w: line %d: unsupported YAML node", ErrSyntax, n.Line)
}

func yamlScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("%w: line %d: %v", ErrSyntax, n.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("%w: line %d: %v", ErrSyntax, n.Line, err)
		}
		return Float(f), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("%w: line %d: %v", ErrSyntax, n.Line, err)
		}
		return Float(f), nil
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text
		return String(n.Value), nil
	}
}

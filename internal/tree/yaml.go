package tree

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeYAML parses a YAML document into a Node, preserving mapping order.
func DecodeYAML(data []byte) (Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, fmt.Errorf("empty YAML document")
	}
	return FromYAML(&doc)
}

// FromYAML converts a yaml.v3 node tree into a Node.
// Floats are rejected; aliases are expanded.
func FromYAML(n *yaml.Node) (Node, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return FromYAML(n.Content[0])

	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("line %d: dangling alias", n.Line)
		}
		return FromYAML(n.Alias)

	case yaml.SequenceNode:
		arr := make(Array, 0, len(n.Content))
		for i, child := range n.Content {
			elem, err := FromYAML(child)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr = append(arr, elem)
		}
		return arr, nil

	case yaml.MappingNode:
		obj := make(Object, 0, len(n.Content)/2)
		seen := make(map[string]bool)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			key := keyNode.Value
			if seen[key] {
				return nil, fmt.Errorf("line %d: duplicate key %q", keyNode.Line, key)
			}
			seen[key] = true

			val, err := FromYAML(valNode)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", key, err)
			}
			obj = append(obj, M(key, val))
		}
		return obj, nil

	case yaml.ScalarNode:
		return scalarFromYAML(n)

	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %v", n.Line, n.Kind)
	}
}

func scalarFromYAML(n *yaml.Node) (Node, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Int(i), nil
	case "!!float":
		return nil, fmt.Errorf("line %d: floats are forbidden: %s", n.Line, n.Value)
	default:
		return String(n.Value), nil
	}
}

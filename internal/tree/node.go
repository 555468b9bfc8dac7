package tree

import (
	"fmt"
)

// Node is a sealed interface representing constrained configuration values.
// Only Null, String, Int, Bool, Array and Object implement it.
type Node interface {
	node() // Sealed
}

// Null represents a JSON null.
type Null struct{}

func (Null) node() {}

// String represents a string value.
type String string

func (String) node() {}

// Int represents an integer value. Always int64, never float64.
type Int int64

func (Int) node() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) node() {}

// Array represents an ordered list of nodes.
type Array []Node

func (Array) node() {}

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value Node
}

// Object is an ordered list of members with unique keys.
type Object []Member

func (Object) node() {}

// M is a shorthand for Member for ergonomic construction.
// Example: Object{M("type", String("REF")), M("config", Object{})}
func M(key string, value Node) Member {
	return Member{Key: key, Value: value}
}

// Get returns the value for key.
func (obj Object) Get(key string) (Node, bool) {
	for _, m := range obj {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns member keys in order.
func (obj Object) Keys() []string {
	keys := make([]string, len(obj))
	for i, m := range obj {
		keys[i] = m.Key
	}
	return keys
}

// Kind returns a short name for the node's type, for error messages.
func Kind(n Node) string {
	switch n.(type) {
	case nil:
		return "missing"
	case Null:
		return "null"
	case String:
		return "string"
	case Int:
		return "integer"
	case Bool:
		return "boolean"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("%T", n)
	}
}

// Plain converts a node into the map/slice/json.Number form produced by
// encoding/json with UseNumber. Object member order is lost.
func Plain(n Node) any {
	switch val := n.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return jsonNumber(val)
	case Bool:
		return bool(val)
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Plain(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for _, m := range val {
			out[m.Key] = Plain(m.Value)
		}
		return out
	default:
		return nil
	}
}

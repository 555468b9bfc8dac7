package ir

import (
	"strconv"
)

// EntityType names a collection or table. It is stable across the source and
// target systems.
type EntityType = string

// ID is a sealed interface for an opaque identifier in either the source or the
// target identifier space. Only IntID and UUID implement it.
type ID interface {
	id() // Sealed

	// Text returns the string form of the identifier.
	Text() string
}

// IntID is an unsigned integer identifier (e.g. an auto-increment key).
type IntID uint64

func (IntID) id() {}

// Text returns the base-10 representation.
func (i IntID) Text() string { return strconv.FormatUint(uint64(i), 10) }

// UUID is a string identifier. It is not required to be a well-formed UUID.
type UUID string

func (UUID) id() {}

// Text returns the identifier itself.
func (u UUID) Text() string { return string(u) }

// Dep records that a row depends on entity ID of type Type.
// ID is always expressed in the source identifier space.
type Dep struct {
	Type EntityType `json:"type"`
	ID   ID         `json:"id"`
}

// NewDep creates a Dep.
func NewDep(etype EntityType, id ID) Dep {
	return Dep{Type: etype, ID: id}
}

// FieldValueToID converts a stored value into an identifier.
// Null has no identifier: ok is false. Int maps to IntID (two's complement
// reinterpretation for negative values), String maps to UUID.
func FieldValueToID(v FieldValue) (ID, bool) {
	switch val := v.(type) {
	case Int:
		return IntID(uint64(val)), true
	case String:
		return UUID(string(val)), true
	default:
		return nil, false
	}
}

// IDToFieldValue converts an identifier back into a stored value. It is total.
func IDToFieldValue(id ID) FieldValue {
	switch val := id.(type) {
	case IntID:
		return Int(int64(val))
	case UUID:
		return String(string(val))
	default:
		return Null{}
	}
}

// DeserializedValue is the value to persist on import together with the
// dependencies it introduces. It is immutable once constructed.
type DeserializedValue struct {
	deps  []Dep
	value FieldValue
}

// NewDeserializedValue creates a DeserializedValue. deps is copied.
func NewDeserializedValue(deps []Dep, value FieldValue) DeserializedValue {
	if value == nil {
		value = Null{}
	}
	return DeserializedValue{
		deps:  append([]Dep(nil), deps...),
		value: value,
	}
}

// Deps returns a copy of the dependencies.
func (d DeserializedValue) Deps() []Dep {
	return append([]Dep(nil), d.deps...)
}

// Value returns the value to store.
func (d DeserializedValue) Value() FieldValue {
	if d.value == nil {
		return Null{}
	}
	return d.value
}

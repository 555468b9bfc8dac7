// Package tree provides the generic structured-value representation used to
// persist ingredient configuration.
//
// A Node is one of Null, String, Int, Bool, Array or Object. Object keeps
// member order: matcher patterns are evaluated in document order, so order is
// part of a configuration's meaning. NO floats anywhere - numbers are int64.
//
// Documents enter as JSON (DecodeJSON) or YAML (FromYAML) and leave through
// Marshal, MarshalIndent, or MarshalCanonical for content addressing.
package tree

// Package recipe composes ingredients into a Recipe: one ingredient per
// column plus an optional primary-key column.
//
// A Recipe is built once from a configuration document and is read-only
// afterwards; it may be shared freely across goroutines processing rows.
//
// Document shape:
//
//	{
//	  "primary_key": null | "<column>",
//	  "ingredients": {
//	    "<column>": {"type": "<TAG>", "config": {...}},
//	    ...
//	  }
//	}
//
// Documents are accepted as JSON, YAML or CUE (see Load). Every document
// passes the embedded JSON Schema before it is decoded, and decoding fails
// as a whole on the first shape error.
package recipe

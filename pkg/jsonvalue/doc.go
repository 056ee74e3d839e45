// Package jsonvalue provides a closed representation of JSON documents.
//
// A Value is exactly one of null, boolean, integer, float, string, array or
// object. Booleans and numbers are separate variants, so code that inspects a
// Value never confuses true with 1. Objects remember the order in which their
// members were decoded, which keeps anything derived from a traversal (such as
// violation lists) stable across runs.
//
// Documents can be decoded from JSON text or YAML:
//
//	v, err := jsonvalue.Decode([]byte(`{"name": "schemacheck", "tags": [1, 2.5]}`))
//	if err != nil {
//	    // malformed input
//	}
//	name, _ := v.Object().Get("name")
package jsonvalue

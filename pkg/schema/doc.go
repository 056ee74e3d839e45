// Package schema validates JSON values against a subset of JSON Schema.
//
// Six keywords are interpreted: type, enum, pattern, required, properties and
// items. Every other key in a schema object is ignored, which keeps the engine
// a safe subset of full JSON Schema: an empty schema accepts any value.
//
// Basic usage:
//
//	value := jsonvalue.MustParse(`{"name": 42}`)
//	s := jsonvalue.MustParse(`{
//	    "type": "object",
//	    "required": ["name"],
//	    "properties": {"name": {"type": "string"}}
//	}`)
//
//	res := schema.Validate(value, s)
//	for _, e := range res.Errors {
//	    fmt.Println(e) // name: Value '42' is not of type string (got integer)
//	}
//
// Validation never stops at the first problem. The engine walks the value
// depth first and records every violation it can reach, each annotated with a
// dotted/bracketed path such as "orders[2].sku". Within a single schema node
// the keywords run in a fixed order (type, enum, pattern, required,
// properties, items) and the first failing keyword ends the checks for that
// node only; sibling properties and array elements are still visited.
//
// Problems with the schema itself (a non-object where a schema is expected, an
// unparsable pattern) are reported as violations rather than returned as Go
// errors, so a call always yields a complete result.
//
// The package-level Validate is safe for concurrent use. A Validator keeps the
// errors of its last run and must not be shared between goroutines.
package schema

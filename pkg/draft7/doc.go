// Package draft7 validates documents against the complete JSON Schema
// Draft-07 vocabulary.
//
// It complements the subset engine in package schema: violations come back in
// the same []schema.ValidationError shape, with dotted paths that follow the
// document's member order, so both engines can feed one report.
package draft7

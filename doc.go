/*
Package schemacheck validates JSON documents against JSON schemas.

Two engines are available. The subset engine interprets the keywords type,
enum, pattern, required, properties and items, reports every violation with
a dotted path (foo.bar[2]) and never stops at the first failure. The draft7
engine applies the full Draft-07 vocabulary and reports in the same shape.

# Concept

A Checker wraps both engines behind one entry point. It decodes raw
documents, applies the upload pre-checks (same file name, identical content),
runs the selected engine and produces a domain.Report. Reports can be kept in
a ports.ReportStore (memory, Redis or one JSON file per report) and observed
through lifecycle hooks, which is how the Prometheus metrics are fed.

# Usage

	package main

	import (
		"context"
		"fmt"

		"github.com/aretw0/schemacheck"
		"github.com/aretw0/schemacheck/pkg/domain"
	)

	func main() {
		checker := schemacheck.New()

		report, err := checker.CheckDocuments(context.Background(), domain.Submission{
			Data:   []byte(`{"name": 42}`),
			Schema: []byte(`{"properties": {"name": {"type": "string"}}}`),
		})
		if err != nil {
			panic(err)
		}

		for _, msg := range report.Messages() {
			fmt.Println(msg) // name: Value '42' is not of type string (got integer)
		}
	}

For in-process use on already decoded values, package schema offers
schema.Validate and the reusable schema.Validator directly.
*/
package schemacheck

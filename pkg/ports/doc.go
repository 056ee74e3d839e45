/*
Package ports defines the driven and driving ports of schemacheck.

These interfaces decouple the validation core from its surroundings, so the
same checker can be served over HTTP or MCP and can keep reports in memory or
in Redis.

# Key Interfaces

  - Checker: Runs validations and produces reports (implemented by the root package).
  - ReportStore: Persists validation reports so they can be fetched by id.
*/
package ports

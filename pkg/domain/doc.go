/*
Package domain contains the core models shared by the schemacheck adapters.

It is kept free of I/O and persistence so that the HTTP, MCP and CLI surfaces
can exchange the same values.

# Key Entities

  - Submission: a pair of raw documents (data and schema) as received from a caller.
  - Report: the outcome of one validation, with every violation and its path.
  - Engine: which keyword engine produced a report.
  - LifecycleHooks: callbacks fired after each validation or rejected submission.
*/
package domain

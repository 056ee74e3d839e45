package ports

import (
	"context"

	"github.com/aretw0/schemacheck/pkg/domain"
	"github.com/aretw0/schemacheck/pkg/jsonvalue"
)

// Checker is the primary interface used by adapters (e.g., HTTP, MCP).
type Checker interface {
	// Check validates an already decoded value against a decoded schema.
	Check(ctx context.Context, value, schema jsonvalue.Value, engine domain.Engine) *domain.Report

	// CheckDocuments decodes and validates a pair of raw documents.
	// Pre-check refusals are returned as errors (domain.ErrSameFile, domain.ErrIdenticalContent);
	// malformed documents produce an invalid report instead.
	CheckDocuments(ctx context.Context, sub domain.Submission) (*domain.Report, error)

	// Report loads a previously stored report.
	// Returns domain.ErrReportNotFound if it does not exist.
	Report(ctx context.Context, id string) (*domain.Report, error)
}

package ports

import (
	"context"

	"github.com/aretw0/schemacheck/pkg/domain"
)

// ReportStore defines the interface for persisting validation reports.
type ReportStore interface {
	// Save persists the report under report.ID.
	Save(ctx context.Context, report *domain.Report) error

	// Load retrieves a report by id.
	// Returns domain.ErrReportNotFound if the report does not exist.
	Load(ctx context.Context, id string) (*domain.Report, error)

	// Delete removes a report. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of the stored reports.
	List(ctx context.Context) ([]string, error)
}

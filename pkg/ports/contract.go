package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/schemacheck/pkg/domain"
	"github.com/aretw0/schemacheck/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunReportStoreContract runs a suite of tests to verify that a ReportStore implementation
// adheres to the defined interface contract.
func RunReportStoreContract(t *testing.T, store ReportStore) {
	ctx := context.Background()
	reportID := "contract-test-report-" + time.Now().Format("20060102150405")

	newReport := func(id string) *domain.Report {
		return &domain.Report{
			ID:     id,
			Valid:  false,
			Engine: domain.EngineSubset,
			Violations: []schema.ValidationError{
				{Path: "user.age", Kind: schema.KindType, Message: "Value 'x' is not of type integer (got string)"},
				{Path: "", Kind: schema.KindRequired, Message: "Missing required property 'id'"},
			},
			CreatedAt: time.Now().UTC().Truncate(time.Second),
			Duration:  1500 * time.Microsecond,
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		report := newReport(reportID)

		err := store.Save(ctx, report)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, reportID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, report.ID, loaded.ID)
		assert.Equal(t, report.Valid, loaded.Valid)
		assert.Equal(t, report.Engine, loaded.Engine)
		assert.Equal(t, report.Violations, loaded.Violations, "violations keep their order")
		assert.True(t, report.CreatedAt.Equal(loaded.CreatedAt))
		assert.Equal(t, report.Duration, loaded.Duration)
	})

	t.Run("Loaded Report Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, reportID)
		require.NoError(t, err)
		loaded.Violations[0].Message = "mutated"

		again, err := store.Load(ctx, reportID)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", again.Violations[0].Message)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+reportID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, newReport(reportID))
		require.NoError(t, err)

		err = store.Delete(ctx, reportID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, reportID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound, "Load after Delete should return ErrReportNotFound")

		assert.NoError(t, store.Delete(ctx, reportID), "Delete of an unknown id should succeed")
	})

	t.Run("List", func(t *testing.T) {
		id1 := reportID + "-1"
		id2 := reportID + "-2"
		require.NoError(t, store.Save(ctx, newReport(id1)))
		require.NoError(t, store.Save(ctx, newReport(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

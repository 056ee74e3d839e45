package mcp

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/schemacheck"
	"github.com/aretw0/schemacheck/internal/logging"
	"github.com/aretw0/schemacheck/pkg/adapters/memory"
	"github.com/aretw0/schemacheck/pkg/domain"
	"github.com/aretw0/schemacheck/pkg/schema"
)

func newTestServer() *Server {
	checker := schemacheck.New(schemacheck.WithStore(memory.NewStore()))
	return NewServer(checker, logging.NewNop())
}

func TestHandleValidate(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	res, err := s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"json":   `{"id": "x", "tags": ["a", 2]}`,
		"schema": `{"properties": {"id": {"type": "integer"}, "tags": {"items": {"type": "string"}}}}`,
	})
	require.NoError(t, err)

	assert.False(t, res.Valid)
	assert.Equal(t, domain.EngineSubset, res.Engine)
	assert.Equal(t, []string{
		"id: Value 'x' is not of type integer (got string)",
		"tags[1]: Value '2' is not of type string (got integer)",
	}, res.Errors)
	require.NotEmpty(t, res.ReportID)

	stored, err := s.handleGetReport(ctx, mcp.CallToolRequest{}, map[string]interface{}{"id": res.ReportID})
	require.NoError(t, err)
	assert.Equal(t, res.Errors, stored.Errors)
}

func TestHandleValidate_Draft7(t *testing.T) {
	s := newTestServer()

	res, err := s.handleValidate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"json":   `"abc"`,
		"schema": `{"maxLength": 2}`,
		"engine": "draft7",
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, domain.EngineDraft7, res.Engine)
	assert.Equal(t, schema.KindConstraint, res.Violations[0].Kind)
}

func TestHandleValidate_DecodeFailure(t *testing.T) {
	s := newTestServer()

	res, err := s.handleValidate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"json":   `{`,
		"schema": `{}`,
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, schema.KindDecode, res.Violations[0].Kind)
}

func TestHandleValidate_UnknownEngine(t *testing.T) {
	s := newTestServer()

	_, err := s.handleValidate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"json": `1`, "schema": `{}`, "engine": "draft3",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownEngine)
}

func TestHandleGetReport_NotFound(t *testing.T) {
	s := newTestServer()

	_, err := s.handleGetReport(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"id": "nope"})
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestReadKeywords(t *testing.T) {
	s := newTestServer()

	contents, err := s.readKeywords(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, KeywordsURI, text.URI)

	var doc keywordsDocument
	require.NoError(t, json.Unmarshal([]byte(text.Text), &doc))
	assert.Equal(t, schema.Keywords, doc.Keywords)
	assert.Len(t, doc.Types, 7)
}

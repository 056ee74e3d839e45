package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"

	"github.com/aretw0/schemacheck"
	"github.com/aretw0/schemacheck/pkg/domain"
	"github.com/aretw0/schemacheck/pkg/ports"
	"github.com/aretw0/schemacheck/pkg/schema"
)

// KeywordsURI is the resource describing the interpreted keywords.
const KeywordsURI = "schemacheck://keywords"

// ValidateResult aligns with the HTTP response and provides a unified structure across adapters.
type ValidateResult struct {
	Valid      bool                     `json:"valid" jsonschema_description:"True when the document satisfies the schema"`
	Errors     []string                 `json:"errors" jsonschema_description:"Violations rendered as 'path: message'"`
	Violations []schema.ValidationError `json:"violations" jsonschema_description:"Structured violations with path, kind and message"`
	ReportID   string                   `json:"report_id,omitempty" jsonschema_description:"Id of the stored report, when a store is configured"`
	Engine     domain.Engine            `json:"engine" jsonschema_description:"Engine that produced the result"`
}

// Server wraps a checker and exposes it as an MCP Server.
type Server struct {
	checker   ports.Checker
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(checker ports.Checker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		checker:   checker,
		logger:    logger,
		mcpServer: server.NewMCPServer("schemacheck-mcp", schemacheck.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
	})

	mux := http.NewServeMux()
	mux.Handle("/sse", c.Handler(sseServer.SSEHandler()))
	mux.Handle("/message", c.Handler(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: validate_json
	validateTool := mcp.NewTool("validate_json",
		mcp.WithDescription("Validate a JSON document against a JSON schema and list every violation with its path."),
		mcp.WithString("json", mcp.Required(), mcp.Description("The document to validate, as JSON text")),
		mcp.WithString("schema", mcp.Required(), mcp.Description("The schema, as JSON text")),
		mcp.WithString("engine",
			mcp.Description("subset (type, enum, pattern, required, properties, items) or draft7 (full Draft-07)"),
			mcp.Enum(string(domain.EngineSubset), string(domain.EngineDraft7)),
		),
		mcp.WithOutputSchema[ValidateResult](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: get_report
	reportTool := mcp.NewTool("get_report",
		mcp.WithDescription("Fetch a stored validation report by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Report id returned by validate_json")),
		mcp.WithOutputSchema[ValidateResult](),
	)
	s.mcpServer.AddTool(reportTool, mcp.NewStructuredToolHandler(s.handleGetReport))
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResult, error) {
	data, _ := args["json"].(string)
	doc, _ := args["schema"].(string)
	engine, _ := args["engine"].(string)

	report, err := s.checker.CheckDocuments(ctx, domain.Submission{
		Data:   []byte(data),
		Schema: []byte(doc),
		Engine: domain.Engine(engine),
	})
	if err != nil {
		s.logger.Warn("MCP validate_json: rejected", "error", err)
		return ValidateResult{}, fmt.Errorf("validation rejected: %w", err)
	}
	return resultFrom(report), nil
}

func (s *Server) handleGetReport(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResult, error) {
	id, _ := args["id"].(string)
	report, err := s.checker.Report(ctx, id)
	if err != nil {
		return ValidateResult{}, fmt.Errorf("report %q: %w", id, err)
	}
	return resultFrom(report), nil
}

func resultFrom(r *domain.Report) ValidateResult {
	return ValidateResult{
		Valid:      r.Valid,
		Errors:     r.Messages(),
		Violations: r.Violations,
		ReportID:   r.ID,
		Engine:     r.Engine,
	}
}

// keywordsDocument describes what the subset engine interprets.
type keywordsDocument struct {
	Keywords []string          `json:"keywords"`
	Types    []schema.TypeName `json:"types"`
	Engines  []domain.Engine   `json:"engines"`
	MaxDepth int               `json:"max_depth"`
}

func (s *Server) registerResources() {
	// EXPOSE: schemacheck://keywords
	s.mcpServer.AddResource(mcp.NewResource(KeywordsURI, "Interpreted Schema Keywords",
		mcp.WithResourceDescription("Keywords, type names and engines understood by the validator"),
		mcp.WithMIMEType("application/json"),
	), s.readKeywords)
}

func (s *Server) readKeywords(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(keywordsDocument{
		Keywords: schema.Keywords,
		Types:    schema.TypeNames,
		Engines:  []domain.Engine{domain.EngineSubset, domain.EngineDraft7},
		MaxDepth: schema.DefaultMaxDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode keywords: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      KeywordsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/cors"

	"github.com/aretw0/schemacheck"
	"github.com/aretw0/schemacheck/pkg/domain"
	"github.com/aretw0/schemacheck/pkg/ports"
	"github.com/aretw0/schemacheck/pkg/schema"
)

// DefaultMaxBodyBytes caps request bodies, uploads included.
const DefaultMaxBodyBytes = 10 << 20

// Server exposes a ports.Checker over HTTP.
type Server struct {
	Checker ports.Checker
	Streams *StreamManager

	logger       *slog.Logger
	maxBodyBytes int64
	corsOrigins  []string
	metrics      http.Handler
	healthCheck  func(context.Context) error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithCORSOrigins restricts cross-origin callers. Empty allows any origin.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithMetrics serves h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithHealthCheck makes /health report 503 while check fails.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(s *Server) {
		s.healthCheck = check
	}
}

// WithStreams shares a StreamManager whose Hooks feed the checker.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// NewServer creates a Server for checker.
func NewServer(checker ports.Checker, opts ...Option) *Server {
	s := &Server{
		Checker:      checker,
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return s
}

// NewHandler creates a new HTTP handler for the checker.
func NewHandler(checker ports.Checker, opts ...Option) http.Handler {
	return NewServer(checker, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/validate", s.Validate)
	r.Post("/upload", s.Upload)
	r.Get("/reports/{id}", s.GetReport)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(RawSpec())
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

type validateRequest struct {
	JSON   json.RawMessage `json:"json"`
	Schema json.RawMessage `json:"schema"`
	Engine string          `json:"engine"`
}

// ValidateResponse is the body of /validate and /upload.
type ValidateResponse struct {
	Valid      bool                     `json:"valid"`
	Errors     []string                 `json:"errors"`
	Violations []schema.ValidationError `json:"violations,omitempty"`
	ReportID   string                   `json:"report_id,omitempty"`
	Engine     domain.Engine            `json:"engine,omitempty"`
}

// Validate handles the POST /validate request.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		s.readFailure(w, "Validate", err)
		return
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || emptyPayload(trimmed) {
		s.writeRejection(w, http.StatusBadRequest, schema.KindDecode, sentence(domain.ErrEmptyRequest))
		return
	}

	var req validateRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		s.logger.Warn("Validate: Invalid request body", "error", err)
		s.writeRejection(w, http.StatusBadRequest, schema.KindDecode, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	s.check(w, r, "Validate", domain.Submission{
		Data:   documentText(req.JSON),
		Schema: documentText(req.Schema),
		Engine: domain.Engine(req.Engine),
	})
}

// Upload handles the POST /upload request (multipart schema_file and data_file).
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := r.ParseMultipartForm(s.maxBodyBytes); err != nil {
		s.readFailure(w, "Upload", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	schemaName, schemaData, err := formFile(r, "schema_file")
	if err != nil {
		s.writeRejection(w, http.StatusBadRequest, schema.KindDecode, err.Error())
		return
	}
	dataName, data, err := formFile(r, "data_file")
	if err != nil {
		s.writeRejection(w, http.StatusBadRequest, schema.KindDecode, err.Error())
		return
	}

	s.check(w, r, "Upload", domain.Submission{
		DataName:        dataName,
		SchemaName:      schemaName,
		Data:            data,
		Schema:          schemaData,
		Engine:          domain.Engine(r.FormValue("engine")),
		RejectIdentical: true,
	})
}

func (s *Server) check(w http.ResponseWriter, r *http.Request, op string, sub domain.Submission) {
	report, err := s.safeCheck(r.Context(), sub)
	switch {
	case errors.Is(err, domain.ErrSameFile), errors.Is(err, domain.ErrIdenticalContent):
		s.writeRejection(w, http.StatusBadRequest, schema.KindDuplicate, sentence(err)+". Please upload different files.")
		return
	case errors.Is(err, domain.ErrUnknownEngine):
		s.writeRejection(w, http.StatusBadRequest, schema.KindConstraint, sentence(err))
		return
	case err != nil:
		s.logger.Error(op+" failed", "error", err)
		s.writeRejection(w, http.StatusInternalServerError, schema.KindInternal, fmt.Sprintf("Unexpected error: %v", err))
		return
	}

	s.writeJSON(w, http.StatusOK, ValidateResponse{
		Valid:      report.Valid,
		Errors:     report.Messages(),
		Violations: report.Violations,
		ReportID:   report.ID,
		Engine:     report.Engine,
	})
}

// safeCheck turns a panic inside the checker into an internal-kind report.
func (s *Server) safeCheck(ctx context.Context, sub domain.Submission) (report *domain.Report, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("checker panicked", "panic", rec)
			report = &domain.Report{
				Engine: sub.Engine,
				Violations: []schema.ValidationError{{
					Kind:    schema.KindInternal,
					Message: fmt.Sprintf("Unexpected error: %v", rec),
				}},
			}
			err = nil
		}
	}()
	return s.Checker.CheckDocuments(ctx, sub)
}

// GetReport handles the GET /reports/{id} request.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := s.Checker.Report(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			http.Error(w, "Report not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Report error: %v", err), http.StatusInternalServerError)
		s.logger.Error("GetReport failed", "error", err, "report_id", id)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthCheck != nil {
		if err := s.healthCheck(r.Context()); err != nil {
			s.logger.Warn("Health check failed", "error", err)
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":         "schemacheck-http",
		"version":     schemacheck.Version,
		"api_version": apiVersion,
		"engines":     []domain.Engine{domain.EngineSubset, domain.EngineDraft7},
		"keywords":    schema.Keywords,
	})
}

func (s *Server) readFailure(w http.ResponseWriter, op string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.writeRejection(w, http.StatusRequestEntityTooLarge, schema.KindDecode,
			fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	s.logger.Warn(op+": Invalid request body", "error", err)
	s.writeRejection(w, http.StatusBadRequest, schema.KindDecode, fmt.Sprintf("Invalid request body: %v", err))
}

func (s *Server) writeRejection(w http.ResponseWriter, status int, kind schema.ErrorKind, msg string) {
	s.writeJSON(w, status, ValidateResponse{
		Valid:      false,
		Errors:     []string{msg},
		Violations: []schema.ValidationError{{Kind: kind, Message: msg}},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// documentText accepts a document given either as JSON text in a string or
// as an inline value. A missing or null document stands for "{}".
// emptyPayload reports whether body is a JSON value carrying nothing:
// null, false, 0, "", [] or {}.
func emptyPayload(body []byte) bool {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

func documentText(raw json.RawMessage) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []byte("{}")
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err == nil {
			return []byte(text)
		}
	}
	return trimmed
}

func formFile(r *http.Request, field string) (string, []byte, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("%s is required", field)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", field, err)
	}
	return header.Filename, data, nil
}

// sentence capitalises an error message for display.
func sentence(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + strings.TrimSuffix(msg[size:], ".")
}

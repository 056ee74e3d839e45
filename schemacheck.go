package schemacheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/schemacheck/pkg/domain"
	"github.com/aretw0/schemacheck/pkg/draft7"
	"github.com/aretw0/schemacheck/pkg/jsonvalue"
	"github.com/aretw0/schemacheck/pkg/ports"
	"github.com/aretw0/schemacheck/pkg/schema"
)

// Rejection reasons carried by domain.RejectionEvent.
const (
	ReasonSameFile         = "same_file"
	ReasonIdenticalContent = "identical_content"
	ReasonUnknownEngine    = "unknown_engine"
)

// Checker is the high-level entry point of the library.
// It is safe for concurrent use.
type Checker struct {
	maxDepth      int
	regexTimeout  time.Duration
	defaultEngine domain.Engine
	store         ports.ReportStore
	hooks         domain.LifecycleHooks
	logger        *slog.Logger

	patterns *schema.PatternCache
	draft7   *draft7.Engine
}

var _ ports.Checker = (*Checker)(nil)

// Option defines a functional option for configuring the Checker.
type Option func(*Checker)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithMaxDepth limits schema recursion of the subset engine.
func WithMaxDepth(depth int) Option {
	return func(c *Checker) {
		c.maxDepth = depth
	}
}

// WithRegexTimeout bounds each pattern evaluation in both engines.
func WithRegexTimeout(d time.Duration) Option {
	return func(c *Checker) {
		c.regexTimeout = d
	}
}

// WithHooks registers observability hooks. Repeated calls accumulate.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Checker) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithStore keeps every produced report in store.
func WithStore(store ports.ReportStore) Option {
	return func(c *Checker) {
		c.store = store
	}
}

// WithDefaultEngine selects the engine used when a request names none.
func WithDefaultEngine(engine domain.Engine) Option {
	return func(c *Checker) {
		c.defaultEngine = engine
	}
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	c := &Checker{
		maxDepth:      schema.DefaultMaxDepth,
		regexTimeout:  schema.DefaultRegexTimeout,
		defaultEngine: domain.EngineSubset,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	c.patterns = schema.NewPatternCache(c.regexTimeout)
	c.draft7 = draft7.New(draft7.WithRegexTimeout(c.regexTimeout))
	return c
}

// Check validates an already decoded value against a decoded schema.
// An empty engine selects the default one.
func (c *Checker) Check(ctx context.Context, value, doc jsonvalue.Value, engine domain.Engine) *domain.Report {
	if engine == "" {
		engine = c.defaultEngine
	}

	start := time.Now()
	var res schema.Result
	switch engine {
	case domain.EngineSubset:
		res = schema.Validate(value, doc,
			schema.WithMaxDepth(c.maxDepth),
			schema.WithPatternCache(c.patterns),
		)
	case domain.EngineDraft7:
		res = c.draft7.Validate(value, doc)
	default:
		res = schema.Result{Errors: []schema.ValidationError{{
			Kind:    schema.KindInternal,
			Message: fmt.Sprintf("%v: %q", domain.ErrUnknownEngine, engine),
		}}}
	}

	report := c.newReport(engine, start, res.Errors)
	c.finish(ctx, report)
	return report
}

// CheckDocuments decodes and validates a pair of raw documents.
//
// Names are optional. When both are set and equal the submission is refused
// with domain.ErrSameFile. Documents named *.yaml or *.yml are decoded as YAML.
// Malformed documents do not produce an error: the report is invalid and
// carries decode violations.
func (c *Checker) CheckDocuments(ctx context.Context, sub domain.Submission) (*domain.Report, error) {
	if sub.DataName != "" && sub.DataName == sub.SchemaName {
		return nil, c.reject(ctx, ReasonSameFile, domain.ErrSameFile)
	}

	engine, err := domain.ParseEngine(string(sub.Engine))
	if err != nil {
		return nil, c.reject(ctx, ReasonUnknownEngine, err)
	}
	if sub.Engine == "" {
		engine = c.defaultEngine
	}

	start := time.Now()
	value, dataErr := jsonvalue.DecodeAuto(sub.DataName, sub.Data)
	doc, schemaErr := jsonvalue.DecodeAuto(sub.SchemaName, sub.Schema)
	if dataErr != nil || schemaErr != nil {
		var violations []schema.ValidationError
		if dataErr != nil {
			violations = append(violations, decodeViolation("Invalid JSON", sub.DataName, dataErr))
		}
		if schemaErr != nil {
			violations = append(violations, decodeViolation("Invalid JSON Schema", sub.SchemaName, schemaErr))
		}
		report := c.newReport(engine, start, violations)
		c.finish(ctx, report)
		return report, nil
	}

	if sub.RejectIdentical && jsonvalue.Equal(value, doc) {
		return nil, c.reject(ctx, ReasonIdenticalContent, domain.ErrIdenticalContent)
	}

	return c.Check(ctx, value, doc, engine), nil
}

// Report loads a stored report.
func (c *Checker) Report(ctx context.Context, id string) (*domain.Report, error) {
	if c.store == nil {
		return nil, domain.ErrReportNotFound
	}
	return c.store.Load(ctx, id)
}

// Store returns the configured report store, or nil.
func (c *Checker) Store() ports.ReportStore {
	return c.store
}

func (c *Checker) newReport(engine domain.Engine, start time.Time, violations []schema.ValidationError) *domain.Report {
	if violations == nil {
		violations = []schema.ValidationError{}
	}
	return &domain.Report{
		Valid:      len(violations) == 0,
		Engine:     engine,
		Violations: violations,
		CreatedAt:  start.UTC(),
		Duration:   time.Since(start),
	}
}

// finish persists the report and notifies hooks. Only stored reports carry an id.
func (c *Checker) finish(ctx context.Context, report *domain.Report) {
	if c.store != nil {
		report.ID = uuid.NewString()
		if err := c.store.Save(ctx, report); err != nil {
			c.logger.Warn("failed to store report", "report_id", report.ID, "error", err)
			report.ID = ""
		}
	}

	c.logger.Debug("validation finished",
		"report_id", report.ID,
		"engine", report.Engine,
		"valid", report.Valid,
		"violations", len(report.Violations),
		"duration", report.Duration,
	)

	if c.hooks.OnValidated != nil {
		c.hooks.OnValidated(ctx, &domain.ValidationEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventValidated},
			Report:    report,
		})
	}
}

func (c *Checker) reject(ctx context.Context, reason string, err error) error {
	c.logger.Info("submission rejected", "reason", reason, "error", err)
	if c.hooks.OnRejected != nil {
		c.hooks.OnRejected(ctx, &domain.RejectionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRejected},
			Reason:    reason,
			Err:       err,
		})
	}
	return err
}

func decodeViolation(prefix, name string, err error) schema.ValidationError {
	msg := fmt.Sprintf("%s: %v", prefix, err)
	if name != "" {
		msg = fmt.Sprintf("%s (%s): %v", prefix, name, err)
	}
	return schema.ValidationError{Kind: schema.KindDecode, Message: msg}
}

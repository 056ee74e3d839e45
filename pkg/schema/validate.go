package schema

import (
	"time"

	"github.com/aretw0/schemacheck/pkg/jsonvalue"
)

// DefaultMaxDepth bounds schema recursion.
const DefaultMaxDepth = 1000

// Option configures validation.
type Option func(*options)

type options struct {
	maxDepth     int
	regexTimeout time.Duration
	patterns     *PatternCache
}

// WithMaxDepth limits how deep the matcher recurses. Values below 1 restore the default.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}
		o.maxDepth = depth
	}
}

// WithRegexTimeout bounds each pattern evaluation. Zero disables the limit.
func WithRegexTimeout(d time.Duration) Option {
	return func(o *options) {
		o.regexTimeout = d
	}
}

// WithPatternCache shares compiled patterns across calls.
func WithPatternCache(c *PatternCache) Option {
	return func(o *options) {
		o.patterns = c
	}
}

func newOptions(opts []Option) options {
	o := options{
		maxDepth:     DefaultMaxDepth,
		regexTimeout: DefaultRegexTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.patterns == nil {
		o.patterns = NewPatternCache(o.regexTimeout)
	}
	return o
}

// Result is the outcome of one validation.
type Result struct {
	Valid  bool
	Errors []ValidationError
}

// Err returns the violations as an *AggregateError, or nil when the value is valid.
func (r Result) Err() error {
	return Aggregate(r.Errors)
}

// Messages renders every violation as "path: message".
func (r Result) Messages() []string {
	out := make([]string, len(r.Errors))
	for i := range r.Errors {
		out[i] = r.Errors[i].Error()
	}
	return out
}

// Validate checks value against schema and returns every violation found.
// It holds no shared state and may be called concurrently.
func Validate(value, schema jsonvalue.Value, opts ...Option) Result {
	w := &walker{opts: newOptions(opts)}
	valid := w.validateValue(value, schema, nil, 0)
	return Result{Valid: valid, Errors: w.errs}
}

// Validator runs validations and keeps the errors of the most recent one.
// A Validator is not safe for concurrent use; give each goroutine its own.
type Validator struct {
	opts options
	errs []ValidationError
}

// NewValidator creates a Validator. Compiled patterns are reused across calls.
func NewValidator(opts ...Option) *Validator {
	return &Validator{opts: newOptions(opts)}
}

// Validate clears the previous errors, checks value against schema and
// reports whether no violation was recorded.
func (v *Validator) Validate(value, schema jsonvalue.Value) bool {
	w := &walker{opts: v.opts}
	valid := w.validateValue(value, schema, nil, 0)
	v.errs = w.errs
	return valid
}

// Errors returns a copy of the violations recorded by the last Validate call.
func (v *Validator) Errors() []ValidationError {
	out := make([]ValidationError, len(v.errs))
	copy(out, v.errs)
	return out
}

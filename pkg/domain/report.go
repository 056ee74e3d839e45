package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/schemacheck/pkg/schema"
)

// Engine names the keyword engine used for a validation.
type Engine string

const (
	// EngineSubset interprets type, enum, pattern, required, properties and items only.
	EngineSubset Engine = "subset"
	// EngineDraft7 applies the full Draft-07 vocabulary.
	EngineDraft7 Engine = "draft7"
)

// ParseEngine resolves an engine name. The empty string selects EngineSubset.
func ParseEngine(name string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(name))) {
	case "", EngineSubset:
		return EngineSubset, nil
	case EngineDraft7, "draft-07", "draft07":
		return EngineDraft7, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// Report is the outcome of validating one document against one schema.
type Report struct {
	ID         string                   `json:"id,omitempty"`
	Valid      bool                     `json:"valid"`
	Engine     Engine                   `json:"engine"`
	Violations []schema.ValidationError `json:"violations"`
	CreatedAt  time.Time                `json:"created_at"`
	Duration   time.Duration            `json:"duration_ns"`
}

// Messages renders every violation the way the engine prints it.
func (r *Report) Messages() []string {
	out := make([]string, len(r.Violations))
	for i := range r.Violations {
		out[i] = r.Violations[i].Error()
	}
	return out
}

// Snapshot returns a deep copy of the report.
func (r *Report) Snapshot() *Report {
	cp := *r
	cp.Violations = make([]schema.ValidationError, len(r.Violations))
	copy(cp.Violations, r.Violations)
	return &cp
}

// CountByKind tallies violations per kind.
func (r *Report) CountByKind() map[schema.ErrorKind]int {
	counts := make(map[schema.ErrorKind]int)
	for _, v := range r.Violations {
		counts[v.Kind]++
	}
	return counts
}

// Submission is a pair of raw documents to be checked.
type Submission struct {
	DataName   string
	SchemaName string
	Data       []byte
	Schema     []byte
	Engine     Engine
	// RejectIdentical refuses submissions whose two documents decode to equal values.
	RejectIdentical bool
}

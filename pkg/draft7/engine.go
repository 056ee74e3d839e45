package draft7

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aretw0/schemacheck/pkg/jsonvalue"
	"github.com/aretw0/schemacheck/pkg/schema"
)

const resourceName = "schemacheck://draft7/schema.json"

// ErrExternalRef is reported for a $ref that points outside the submitted schema.
var ErrExternalRef = errors.New("external references are not allowed")

// localOnly refuses every URL, so $ref can only reach the submitted document
// and the built-in metaschemas.
type localOnly struct{}

func (localOnly) Load(url string) (any, error) {
	return nil, ErrExternalRef
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegexTimeout bounds each pattern evaluation. Zero disables the limit.
func WithRegexTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.regexTimeout = d
	}
}

// WithFormatAssertion makes the format keyword fail on malformed values
// instead of being an annotation.
func WithFormatAssertion() Option {
	return func(e *Engine) {
		e.assertFormat = true
	}
}

// WithLanguage selects the language of violation messages.
func WithLanguage(tag language.Tag) Option {
	return func(e *Engine) {
		e.printer = message.NewPrinter(tag)
	}
}

// Engine compiles a schema per call and validates one document against it.
// It keeps no per-call state and may be shared between goroutines.
type Engine struct {
	regexTimeout time.Duration
	assertFormat bool
	printer      *message.Printer
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		regexTimeout: schema.DefaultRegexTimeout,
		printer:      message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile prepares doc as a Draft-07 schema. Documents declaring another
// draft through $schema are compiled under that draft.
func (e *Engine) Compile(doc jsonvalue.Value) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft7)
	c.UseLoader(localOnly{})
	c.UseRegexpEngine(regexpEngine(e.regexTimeout))
	if e.assertFormat {
		c.AssertFormat()
	}
	if err := c.AddResource(resourceName, doc.Interface()); err != nil {
		return nil, err
	}
	return c.Compile(resourceName)
}

// Validate checks value against doc. A schema that does not compile yields a
// single schema-kind violation at the root.
func (e *Engine) Validate(value, doc jsonvalue.Value) schema.Result {
	compiled, err := e.Compile(doc)
	if err != nil {
		return failed(schema.ValidationError{
			Kind:    schema.KindSchema,
			Message: fmt.Sprintf("Invalid schema: %v", err),
		})
	}

	err = compiled.Validate(value.Interface())
	if err == nil {
		return schema.Result{Valid: true}
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return failed(schema.ValidationError{Kind: schema.KindInternal, Message: err.Error()})
	}

	leaves := collectLeaves(verr, nil)
	out := make([]schema.ValidationError, 0, len(leaves))
	order := make([][]int, 0, len(leaves))
	for _, leaf := range leaves {
		path, pos := locate(value, leaf.InstanceLocation)
		out = append(out, schema.ValidationError{
			Path:    path.String(),
			Kind:    kindOf(leaf.ErrorKind.KeywordPath()),
			Message: leaf.ErrorKind.LocalizedString(e.printer),
		})
		order = append(order, pos)
	}
	sortByDocumentOrder(out, order)
	return schema.Result{Valid: false, Errors: out}
}

func failed(v schema.ValidationError) schema.Result {
	return schema.Result{Valid: false, Errors: []schema.ValidationError{v}}
}

// collectLeaves flattens the cause tree, keeping only errors without causes.
func collectLeaves(err *jsonschema.ValidationError, acc []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return append(acc, err)
	}
	for _, cause := range err.Causes {
		acc = collectLeaves(cause, acc)
	}
	return acc
}

// locate turns an instance location into a Path and the member position of
// every segment, resolving each token against the value it addresses.
func locate(root jsonvalue.Value, tokens []string) (schema.Path, []int) {
	var path schema.Path
	pos := make([]int, 0, len(tokens))
	cur := root
	for _, tok := range tokens {
		if cur.IsArray() {
			if i, err := strconv.Atoi(tok); err == nil {
				path = path.Index(i)
				pos = append(pos, i)
				if items := cur.Items(); i >= 0 && i < len(items) {
					cur = items[i]
				} else {
					cur = jsonvalue.Null()
				}
				continue
			}
		}
		path = path.Key(tok)
		pos = append(pos, memberIndex(cur.Object(), tok))
		next, _ := cur.Object().Get(tok)
		cur = next
	}
	return path, pos
}

func memberIndex(obj *jsonvalue.Object, key string) int {
	if obj == nil {
		return -1
	}
	for i, k := range obj.Keys() {
		if k == key {
			return i
		}
	}
	return -1
}

// sortByDocumentOrder orders violations the way the document lists the
// offending values. Violations at the same location keep their relative order.
func sortByDocumentOrder(errs []schema.ValidationError, order [][]int) {
	idx := make([]int, len(errs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return lessPosition(order[idx[a]], order[idx[b]])
	})

	sorted := make([]schema.ValidationError, len(errs))
	for i, j := range idx {
		sorted[i] = errs[j]
	}
	copy(errs, sorted)
}

// lessPosition compares positions lexicographically; a parent sorts before its children.
func lessPosition(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func kindOf(keywordPath []string) schema.ErrorKind {
	if len(keywordPath) == 0 {
		return schema.KindConstraint
	}
	switch keywordPath[len(keywordPath)-1] {
	case "type":
		return schema.KindType
	case "enum", "const":
		return schema.KindEnum
	case "pattern":
		return schema.KindPattern
	case "required":
		return schema.KindRequired
	default:
		return schema.KindConstraint
	}
}

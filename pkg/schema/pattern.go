package schema

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultRegexTimeout bounds a single pattern evaluation.
const DefaultRegexTimeout = time.Second

// DefaultPatternCacheSize is the number of distinct patterns a PatternCache keeps.
const DefaultPatternCacheSize = 1024

var (
	errInvalidPattern = errors.New("invalid pattern")
	errPatternTimeout = errors.New("pattern evaluation timed out")
)

// compiledPattern is a cache entry: either a usable regexp or the reason it failed.
type compiledPattern struct {
	re  *regexp2.Regexp
	err error
}

// PatternCache compiles and memoises patterns, evicting the least recently
// used ones past its size. Safe for concurrent use.
type PatternCache struct {
	timeout time.Duration
	entries *lru.Cache[string, compiledPattern]
}

// NewPatternCache returns a cache of DefaultPatternCacheSize patterns that
// give up after timeout (0 disables the limit).
func NewPatternCache(timeout time.Duration) *PatternCache {
	return NewPatternCacheSize(timeout, DefaultPatternCacheSize)
}

// NewPatternCacheSize is NewPatternCache with an explicit capacity.
// Sizes below 1 restore the default.
func NewPatternCacheSize(timeout time.Duration, size int) *PatternCache {
	if size < 1 {
		size = DefaultPatternCacheSize
	}
	entries, err := lru.New[string, compiledPattern](size)
	if err != nil {
		// only reachable with a non-positive size
		panic(err)
	}
	return &PatternCache{timeout: timeout, entries: entries}
}

// Len reports how many patterns are currently cached.
func (c *PatternCache) Len() int {
	return c.entries.Len()
}

func (c *PatternCache) compile(pattern string) (*regexp2.Regexp, error) {
	if entry, ok := c.entries.Get(pattern); ok {
		return entry.re, entry.err
	}

	re, err := regexp2.Compile(translatePython(pattern), regexp2.None)
	if err == nil && c.timeout > 0 {
		re.MatchTimeout = c.timeout
	}
	c.entries.Add(pattern, compiledPattern{re: re, err: err})
	return re, err
}

// MatchPrefix reports whether pattern matches s starting at its first character.
// The match does not need to reach the end of s.
func (c *PatternCache) MatchPrefix(pattern, s string) (bool, error) {
	re, err := c.compile(pattern)
	if err != nil {
		return false, fmt.Errorf("%w %q: %v", errInvalidPattern, pattern, err)
	}
	// A backtracking engine tries start offsets left to right, so a match at
	// offset 0 is found first whenever one exists.
	m, err := re.FindStringMatch(s)
	if err != nil {
		return false, errPatternTimeout
	}
	return m != nil && m.Index == 0, nil
}

// translatePython rewrites the Python-only group forms (?P<name>...) and
// (?P=name) into their .NET spellings (?<name>...) and \k<name>.
// Escapes and character classes are copied untouched.
func translatePython(pattern string) string {
	if !strings.Contains(pattern, "(?P") {
		return pattern
	}

	var b strings.Builder
	b.Grow(len(pattern))
	inClass := false
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '\\' && i+1 < len(pattern):
			b.WriteByte(ch)
			b.WriteByte(pattern[i+1])
			i++
			continue
		case inClass:
			if ch == ']' {
				inClass = false
			}
		case ch == '[':
			inClass = true
			b.WriteByte(ch)
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
			// a leading ] is a literal member of the class
			if i+1 < len(pattern) && pattern[i+1] == ']' {
				b.WriteByte(']')
				i++
			}
			continue
		case strings.HasPrefix(pattern[i:], "(?P<"):
			b.WriteString("(?<")
			i += len("(?P<") - 1
			continue
		case strings.HasPrefix(pattern[i:], "(?P="):
			if end := strings.IndexByte(pattern[i:], ')'); end > 0 {
				b.WriteString(`\k<`)
				b.WriteString(pattern[i+len("(?P=") : i+end])
				b.WriteByte('>')
				i += end
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

package draft7

import (
	"time"

	"github.com/dlclark/regexp2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ecmaPattern evaluates pattern and patternProperties with ECMA-262 syntax.
// A match that times out counts as no match.
type ecmaPattern struct {
	re *regexp2.Regexp
}

func (p ecmaPattern) MatchString(s string) bool {
	ok, err := p.re.MatchString(s)
	return err == nil && ok
}

func (p ecmaPattern) String() string {
	return p.re.String()
}

func regexpEngine(timeout time.Duration) jsonschema.RegexpEngine {
	return func(expr string) (jsonschema.Regexp, error) {
		re, err := regexp2.Compile(expr, regexp2.ECMAScript)
		if err != nil {
			return nil, err
		}
		if timeout > 0 {
			re.MatchTimeout = timeout
		}
		return ecmaPattern{re: re}, nil
	}
}

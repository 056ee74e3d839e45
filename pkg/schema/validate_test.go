package schema

import (
	"sync"
	"testing"
	"time"

	"github.com/aretw0/schemacheck/pkg/jsonvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, text string) jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.Decode([]byte(text))
	require.NoError(t, err, "fixture %s", text)
	return v
}

func validate(t *testing.T, value, schema string, opts ...Option) Result {
	t.Helper()
	return Validate(parse(t, value), parse(t, schema), opts...)
}

func TestValidate_VacuousSchema(t *testing.T) {
	values := []string{`null`, `true`, `0`, `1.5`, `"s"`, `[]`, `[1, "a"]`, `{}`, `{"a": {"b": [1]}}`}
	schemas := []string{`{}`, `{"description": "x", "minimum": 5, "$ref": "#/nope"}`}

	for _, s := range schemas {
		for _, v := range values {
			res := validate(t, v, s)
			if !res.Valid || len(res.Errors) != 0 {
				t.Errorf("Validate(%s, %s) = %v %v, want valid", v, s, res.Valid, res.Errors)
			}
		}
	}
}

func TestValidate_ObjectPropertyTypeMismatch(t *testing.T) {
	res := validate(t,
		`{"name": 42}`,
		`{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`)

	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "name", res.Errors[0].Path)
	assert.Equal(t, KindType, res.Errors[0].Kind)
	assert.Equal(t, "Value '42' is not of type string (got integer)", res.Errors[0].Message)
	assert.Equal(t, "name: Value '42' is not of type string (got integer)", res.Errors[0].Error())
}

func TestValidate_ArrayItems(t *testing.T) {
	res := validate(t, `[1, 2, "x"]`, `{"type": "array", "items": {"type": "integer"}}`)

	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "[2]", res.Errors[0].Path)
	assert.Equal(t, "Value 'x' is not of type integer (got string)", res.Errors[0].Message)
}

func TestValidate_ItemsOnlyReportFailingIndex(t *testing.T) {
	res := validate(t,
		`[{"id": 1}, {"id": 2}, {"id": "x"}, {"id": 4}]`,
		`{"items": {"properties": {"id": {"type": "integer"}}}}`)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "[2].id", res.Errors[0].Path)
}

func TestValidate_ItemsVisitEveryElement(t *testing.T) {
	res := validate(t, `[1, "x", "y", 4]`, `{"items": {"type": "integer"}}`)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, "[1]", res.Errors[0].Path)
	assert.Equal(t, "[2]", res.Errors[1].Path)
}

func TestValidate_BooleansAreNotNumbers(t *testing.T) {
	tests := []struct {
		value  string
		schema string
	}{
		{`true`, `{"type": "number"}`},
		{`false`, `{"type": "integer"}`},
		{`true`, `{"type": ["integer", "number"]}`},
		{`true`, `{"enum": [1]}`},
		{`false`, `{"enum": [0]}`},
		{`1`, `{"enum": [true]}`},
		{`0`, `{"enum": [false, null]}`},
		{`[true]`, `{"enum": [[1]]}`},
	}

	for _, tt := range tests {
		res := validate(t, tt.value, tt.schema)
		if res.Valid {
			t.Errorf("Validate(%s, %s) = valid, want invalid", tt.value, tt.schema)
		}
	}
}

func TestValidate_TypeNames(t *testing.T) {
	tests := []struct {
		value string
		typ   string
		want  bool
	}{
		{`"s"`, "string", true},
		{`1`, "string", false},
		{`1`, "number", true},
		{`1.5`, "number", true},
		{`1`, "integer", true},
		{`1.0`, "integer", true},
		{`1.5`, "integer", false},
		{`true`, "boolean", true},
		{`0`, "boolean", false},
		{`{}`, "object", true},
		{`[]`, "object", false},
		{`[]`, "array", true},
		{`null`, "null", true},
		{`0`, "null", false},
		{`"s"`, "any", false},
		{`null`, "any", false},
	}

	for _, tt := range tests {
		res := validate(t, tt.value, `{"type": "`+tt.typ+`"}`)
		if res.Valid != tt.want {
			t.Errorf("type %s on %s: valid = %v, want %v", tt.typ, tt.value, res.Valid, tt.want)
		}
	}
}

func TestValidate_TypeList(t *testing.T) {
	schema := `{"type": ["string", "null"]}`

	assert.True(t, validate(t, `null`, schema).Valid)
	assert.True(t, validate(t, `"x"`, schema).Valid)

	res := validate(t, `5`, schema)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, `Value '5' is not one of types ["string","null"] (got integer)`, res.Errors[0].Message)

	// non-string entries never match
	assert.False(t, validate(t, `5`, `{"type": [5, {}]}`).Valid)
}

func TestValidate_Enum(t *testing.T) {
	schema := `{"enum": ["red", 2, null, {"a": [1, 2]}]}`

	assert.True(t, validate(t, `"red"`, schema).Valid)
	assert.True(t, validate(t, `2`, schema).Valid)
	assert.True(t, validate(t, `2.0`, schema).Valid)
	assert.True(t, validate(t, `null`, schema).Valid)
	assert.True(t, validate(t, `{"a": [1, 2]}`, schema).Valid)

	res := validate(t, `{"a": [2, 1]}`, schema)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindEnum, res.Errors[0].Kind)
	assert.Equal(t, `Value '{"a":[2,1]}' is not in enum ["red",2,null,{"a":[1,2]}]`, res.Errors[0].Message)
}

func TestValidate_EnumScalar(t *testing.T) {
	assert.True(t, validate(t, `"only"`, `{"enum": "only"}`).Valid)
	assert.False(t, validate(t, `"other"`, `{"enum": "only"}`).Valid)
}

func TestValidate_PatternPrefixMatch(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
		want    bool
	}{
		{"^a", "abc", true},
		{"^a", "bca", false},
		{"a", "abc", true},
		{"b", "abc", false},
		{"ab", "abc", true},
		{"abc$", "abcd", false},
		{`\d{3}`, "123-456", true},
		{`(?i)hello`, "HELLO world", true},
		{"", "anything", true},
	}

	for _, tt := range tests {
		res := validate(t, `"`+tt.value+`"`, `{"pattern": "`+jsonEscape(tt.pattern)+`"}`)
		if res.Valid != tt.want {
			t.Errorf("pattern %q on %q: valid = %v, want %v (%v)", tt.pattern, tt.value, res.Valid, tt.want, res.Errors)
		}
	}
}

func TestValidate_PatternMessages(t *testing.T) {
	res := validate(t, `"bca"`, `{"pattern": "^a"}`)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindPattern, res.Errors[0].Kind)
	assert.Equal(t, "String 'bca' doesn't match pattern '^a'", res.Errors[0].Message)

	res = validate(t, `"abc"`, `{"pattern": "("}`)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindInvalidPattern, res.Errors[0].Kind)
	assert.Equal(t, "Invalid regex pattern '('", res.Errors[0].Message)

	res = validate(t, `"abc"`, `{"pattern": 7}`)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindInvalidPattern, res.Errors[0].Kind)
}

func TestValidate_PatternIgnoresNonStrings(t *testing.T) {
	assert.True(t, validate(t, `5`, `{"pattern": "^a"}`).Valid)
	assert.True(t, validate(t, `["b"]`, `{"pattern": "("}`).Valid)
}

func TestValidate_PatternTimeout(t *testing.T) {
	res := validate(t, `"aaaaaaaaaaaaaaaaaaaaaaaaaaaa!"`, `{"pattern": "^(a+)+$"}`, WithRegexTimeout(10*time.Millisecond))

	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindPattern, res.Errors[0].Kind)
	assert.Equal(t, "Pattern '^(a+)+$' timed out", res.Errors[0].Message)
}

func TestValidate_RequiredReportsEveryMissingKey(t *testing.T) {
	res := validate(t, `{"b": 1}`, `{"required": ["a", "b", "c"]}`)

	require.Len(t, res.Errors, 2)
	for _, e := range res.Errors {
		assert.Equal(t, KindRequired, e.Kind)
		assert.Equal(t, "", e.Path)
	}
	assert.Equal(t, "Missing required property 'a'", res.Errors[0].Message)
	assert.Equal(t, "Missing required property 'c'", res.Errors[1].Message)
	assert.Equal(t, ": Missing required property 'a'", res.Errors[0].Error())
}

func TestValidate_RequiredNested(t *testing.T) {
	res := validate(t,
		`{"user": {"profile": {}}}`,
		`{"properties": {"user": {"properties": {"profile": {"required": ["email", "phone"]}}}}}`)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, "user.profile", res.Errors[0].Path)
	assert.Equal(t, "user.profile", res.Errors[1].Path)
}

func TestValidate_RequiredIgnoredForNonObjects(t *testing.T) {
	assert.True(t, validate(t, `[1]`, `{"required": ["a"]}`).Valid)
	assert.True(t, validate(t, `"a"`, `{"required": ["a"]}`).Valid)
}

func TestValidate_PropertiesCheckEveryMember(t *testing.T) {
	schema := `{"properties": {"a": {"type": "string"}, "b": {"type": "string"}}}`

	res := validate(t, `{"a": 1, "extra": 0, "b": 2}`, schema)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "a", res.Errors[0].Path)
	assert.Equal(t, "b", res.Errors[1].Path)

	// order follows the value, not the schema
	res = validate(t, `{"b": 2, "a": 1}`, schema)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "b", res.Errors[0].Path)
	assert.Equal(t, "a", res.Errors[1].Path)
}

func TestValidate_PropertiesDoNotRequire(t *testing.T) {
	assert.True(t, validate(t, `{}`, `{"properties": {"a": {"type": "string"}}}`).Valid)
}

func TestValidate_SchemaMustBeObject(t *testing.T) {
	res := validate(t, `{"a": 1}`, `"not a schema"`)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindSchema, res.Errors[0].Kind)
	assert.Equal(t, ": Schema must be an object", res.Errors[0].Error())

	res = validate(t, `{"a": 1, "b": "x"}`, `{"properties": {"a": 5, "b": {"type": "integer"}}}`)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "a: Schema must be an object", res.Errors[0].Error())
	assert.Equal(t, "b", res.Errors[1].Path)

	res = validate(t, `[1, 2]`, `{"items": true}`)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "[0]: Schema must be an object", res.Errors[0].Error())
	assert.Equal(t, "[1]: Schema must be an object", res.Errors[1].Error())
}

func TestValidate_KeywordShortCircuit(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		schema string
		kind   ErrorKind
	}{
		{"type stops enum", `5`, `{"type": "string", "enum": ["x"]}`, KindType},
		{"enum stops pattern", `"b"`, `{"enum": ["a"], "pattern": "^z"}`, KindEnum},
		{"pattern failure ends node", `"b"`, `{"pattern": "^z", "required": ["q"]}`, KindPattern},
		{"required stops properties", `{"b": 1}`, `{"required": ["a"], "properties": {"b": {"type": "string"}}}`, KindRequired},
		{"type stops items", `{"0": 1}`, `{"type": "array", "items": {"type": "string"}}`, KindType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validate(t, tt.value, tt.schema)
			require.Len(t, res.Errors, 1, "%v", res.Errors)
			assert.Equal(t, tt.kind, res.Errors[0].Kind)
		})
	}
}

func TestValidate_ChildFailureDoesNotStopSiblings(t *testing.T) {
	res := validate(t,
		`{"tags": ["a", 1, "c", false], "owner": {"name": 3}, "id": "x"}`,
		`{
			"type": "object",
			"properties": {
				"tags": {"type": "array", "items": {"type": "string"}},
				"owner": {"properties": {"name": {"type": "string"}}},
				"id": {"type": "integer"}
			}
		}`)

	assert.False(t, res.Valid)
	paths := make([]string, len(res.Errors))
	for i, e := range res.Errors {
		paths[i] = e.Path
	}
	assert.Equal(t, []string{"tags[1]", "tags[3]", "owner.name", "id"}, paths)
}

func TestValidate_NestedPaths(t *testing.T) {
	res := validate(t,
		`[{"tags": ["a", 1]}]`,
		`{"items": {"properties": {"tags": {"items": {"type": "string"}}}}}`)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "[0].tags[1]", res.Errors[0].Path)
}

func TestValidate_MaxDepth(t *testing.T) {
	schema := `{"items": {"items": {"items": {"items": {"items": {}}}}}}`
	value := `[[[[[1]]]]]`

	assert.True(t, validate(t, value, schema).Valid)

	res := validate(t, value, schema, WithMaxDepth(3))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindDepth, res.Errors[0].Kind)
	assert.Equal(t, "[0][0][0][0]", res.Errors[0].Path)
	assert.Equal(t, "Maximum validation depth 3 exceeded", res.Errors[0].Message)
}

func TestValidate_Deterministic(t *testing.T) {
	value := `{"z": 1, "a": "x", "m": [true, 2, "3"], "q": {"r": null}}`
	schema := `{
		"required": ["missing1", "missing2"],
		"properties": {"z": {"type": "string"}}
	}`
	nested := `{"properties": {"z": {"type": "string"}, "a": {"enum": [1]}, "m": {"items": {"type": "integer"}}, "q": {"properties": {"r": {"type": "object"}}}}}`

	for _, s := range []string{schema, nested} {
		first := validate(t, value, s)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, validate(t, value, s))
		}
	}
}

func TestValidate_ConstructedValuesAreValid(t *testing.T) {
	tests := []struct {
		schema string
		value  string
	}{
		{`{"type": "string", "pattern": "^[a-z]+"}`, `"abc123"`},
		{`{"type": "integer", "enum": [1, 2, 3]}`, `2`},
		{
			`{"type": "object", "required": ["id", "tags"], "properties": {"id": {"type": "integer"}, "tags": {"type": "array", "items": {"type": "string"}}}}`,
			`{"id": 7, "tags": ["a", "b"], "extra": {}}`,
		},
		{
			`{"type": "array", "items": {"type": "object", "required": ["k"], "properties": {"k": {"type": ["null", "boolean"]}}}}`,
			`[{"k": null}, {"k": true}]`,
		},
	}

	for _, tt := range tests {
		res := validate(t, tt.value, tt.schema)
		assert.True(t, res.Valid, "value %s schema %s: %v", tt.value, tt.schema, res.Errors)
		assert.Empty(t, res.Errors)
	}
}

func TestValidator_ClearsPreviousErrors(t *testing.T) {
	v := NewValidator()
	s := parse(t, `{"type": "string"}`)

	assert.False(t, v.Validate(parse(t, `1`), s))
	require.Len(t, v.Errors(), 1)

	snapshot := v.Errors()
	snapshot[0].Message = "mutated"
	assert.NotEqual(t, "mutated", v.Errors()[0].Message)

	assert.True(t, v.Validate(parse(t, `"ok"`), s))
	assert.Empty(t, v.Errors())
}

func TestValidate_Concurrent(t *testing.T) {
	cache := NewPatternCache(DefaultRegexTimeout)
	s := parse(t, `{"items": {"type": "string", "pattern": "^id-"}}`)
	value := parse(t, `["id-1", "x", "id-2", 4]`)
	want := Validate(value, s)

	var wg sync.WaitGroup
	results := make([]Result, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Validate(value, s, WithPatternCache(cache))
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestResult_ErrAndMessages(t *testing.T) {
	res := validate(t, `{}`, `{"required": ["a", "b"]}`)

	err := res.Err()
	require.Error(t, err)
	assert.Len(t, ValidationErrors(err), 2)
	assert.Equal(t, []string{": Missing required property 'a'", ": Missing required property 'b'"}, res.Messages())

	assert.NoError(t, validate(t, `{}`, `{}`).Err())
}

func jsonEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == '"' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

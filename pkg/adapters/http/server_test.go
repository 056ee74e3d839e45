package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/schemacheck"
	"github.com/aretw0/schemacheck/internal/logging"
	"github.com/aretw0/schemacheck/pkg/adapters/memory"
	"github.com/aretw0/schemacheck/pkg/domain"
	"github.com/aretw0/schemacheck/pkg/jsonvalue"
	"github.com/aretw0/schemacheck/pkg/schema"
)

func newTestServer(t *testing.T, opts ...Option) (http.Handler, *StreamManager) {
	t.Helper()
	streams := NewStreamManager(logging.NewNop())
	checker := schemacheck.New(
		schemacheck.WithStore(memory.NewStore()),
		schemacheck.WithHooks(streams.Hooks()),
	)
	opts = append([]Option{WithLogger(logging.NewNop()), WithStreams(streams)}, opts...)
	return NewHandler(checker, opts...), streams
}

func postJSON(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, ValidateResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestValidate_TextDocuments(t *testing.T) {
	h, _ := newTestServer(t)

	w, resp := postJSON(t, h, "/validate", `{
		"json": "{\"name\": \"Ann\", \"age\": 30}",
		"schema": "{\"type\": \"object\", \"required\": [\"name\"], \"properties\": {\"age\": {\"type\": \"integer\"}}}"
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, domain.EngineSubset, resp.Engine)
	assert.NotEmpty(t, resp.ReportID)
}

func TestValidate_InlineDocumentsAndReport(t *testing.T) {
	h, _ := newTestServer(t)

	_, resp := postJSON(t, h, "/validate", `{
		"json": {"user": {"email": "nope"}, "tags": [1]},
		"schema": {"properties": {
			"user": {"required": ["id"], "properties": {"email": {"pattern": "[a-z]+@"}}},
			"tags": {"items": {"type": "string"}}
		}}
	}`)

	require.False(t, resp.Valid)
	assert.Equal(t, []string{
		"user: Missing required property 'id'",
		"tags[0]: Value '1' is not of type string (got integer)",
	}, resp.Errors)
	require.Len(t, resp.Violations, 2)
	assert.Equal(t, schema.KindRequired, resp.Violations[0].Kind)

	req := httptest.NewRequest(http.MethodGet, "/reports/"+resp.ReportID, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var report domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, resp.ReportID, report.ID)
	assert.Equal(t, resp.Errors, report.Messages())
}

func TestValidate_Defaults(t *testing.T) {
	h, _ := newTestServer(t)

	w, resp := postJSON(t, h, "/validate", `{"engine": "subset"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Valid, "missing documents default to {}")

	w, resp = postJSON(t, h, "/validate", `{"json": null, "schema": "{\"required\": [\"a\"]}"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{": Missing required property 'a'"}, resp.Errors)
}

func TestValidate_EmptyBody(t *testing.T) {
	h, _ := newTestServer(t)

	for _, body := range []string{"", "  ", "null", "{}", " { } ", "[]", `""`, "0", "false"} {
		w, resp := postJSON(t, h, "/validate", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, resp.Valid)
		assert.Equal(t, []string{"No JSON data provided"}, resp.Errors)
	}
}

func TestValidate_DecodeFailures(t *testing.T) {
	h, _ := newTestServer(t)

	w, resp := postJSON(t, h, "/validate", `{"json": "{\"a\":", "schema": "{}"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.Valid)
	require.Len(t, resp.Errors, 1)
	assert.True(t, strings.HasPrefix(resp.Errors[0], "Invalid JSON: "), resp.Errors[0])

	_, resp = postJSON(t, h, "/validate", `{"json": "{}", "schema": "not json"}`)
	require.Len(t, resp.Errors, 1)
	assert.True(t, strings.HasPrefix(resp.Errors[0], "Invalid JSON Schema: "), resp.Errors[0])
	assert.Equal(t, schema.KindDecode, resp.Violations[0].Kind)

	w, resp = postJSON(t, h, "/validate", `{"json": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Valid)
}

func TestValidate_Engines(t *testing.T) {
	h, _ := newTestServer(t)

	_, resp := postJSON(t, h, "/validate", `{"json": {"n": 5}, "schema": {"properties": {"n": {"maximum": 3}}}, "engine": "draft7"}`)
	assert.False(t, resp.Valid)
	assert.Equal(t, domain.EngineDraft7, resp.Engine)

	_, resp = postJSON(t, h, "/validate", `{"json": {"n": 5}, "schema": {"properties": {"n": {"maximum": 3}}}}`)
	assert.True(t, resp.Valid, "subset engine ignores maximum")

	w, resp := postJSON(t, h, "/validate", `{"engine": "draft4"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Errors[0], "Unknown validation engine")
}

func TestValidate_Draft7DoesNotReadServerFiles(t *testing.T) {
	h, _ := newTestServer(t)
	secret := filepath.Join(t.TempDir(), "secret.json")
	require.NoError(t, os.WriteFile(secret, []byte(`{"const":"secret-value"}`), 0o644))

	body, err := json.Marshal(map[string]any{
		"json":   "\"x\"",
		"schema": map[string]string{"$ref": "file://" + filepath.ToSlash(secret)},
		"engine": "draft7",
	})
	require.NoError(t, err)

	w, resp := postJSON(t, h, "/validate", string(body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.Valid)
	require.Len(t, resp.Violations, 1)
	assert.Equal(t, schema.KindSchema, resp.Violations[0].Kind)
	assert.NotContains(t, w.Body.String(), "secret-value")
}

func TestValidate_BodyLimit(t *testing.T) {
	h, _ := newTestServer(t, WithMaxBodyBytes(16))

	w, resp := postJSON(t, h, "/validate", `{"json": "{\"a\": \"this is too long\"}"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, resp.Valid)
}

func multipartBody(t *testing.T, files map[string][2]string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, file := range files {
		fw, err := mw.CreateFormFile(field, file[0])
		require.NoError(t, err)
		_, err = io.WriteString(fw, file[1])
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, h http.Handler, files map[string][2]string, fields map[string]string) (*httptest.ResponseRecorder, ValidateResponse) {
	t.Helper()
	body, contentType := multipartBody(t, files, fields)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestUpload(t *testing.T) {
	h, _ := newTestServer(t)

	w, resp := upload(t, h, map[string][2]string{
		"schema_file": {"schema.json", `{"properties": {"age": {"type": "integer"}}}`},
		"data_file":   {"data.json", `{"age": "ten"}`},
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"age: Value 'ten' is not of type integer (got string)"}, resp.Errors)

	w, resp = upload(t, h, map[string][2]string{
		"schema_file": {"schema.yaml", "required: [age]\n"},
		"data_file":   {"data.yml", "age: 3\n"},
	}, map[string]string{"engine": "draft7"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Valid)
	assert.Equal(t, domain.EngineDraft7, resp.Engine)
}

func TestUpload_PreChecks(t *testing.T) {
	h, _ := newTestServer(t)

	w, resp := upload(t, h, map[string][2]string{
		"schema_file": {"same.json", `{}`},
		"data_file":   {"same.json", `{"a": 1}`},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Schema file and data file cannot be the same. Please upload different files."}, resp.Errors)
	assert.Equal(t, schema.KindDuplicate, resp.Violations[0].Kind)

	w, resp = upload(t, h, map[string][2]string{
		"schema_file": {"schema.json", `{"a": 1}`},
		"data_file":   {"data.json", `{ "a" : 1.0 }`},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Schema and data contents are identical. Please upload different files."}, resp.Errors)

	w, resp = upload(t, h, map[string][2]string{
		"schema_file": {"schema.json", `{}`},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"data_file is required"}, resp.Errors)
}

func TestGetReport_NotFound(t *testing.T) {
	h, _ := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHealth(t *testing.T) {
	h, _ := newTestServer(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	h, _ = newTestServer(t, WithHealthCheck(func(context.Context) error { return errors.New("redis down") }))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis down")
}

func TestGetInfo(t *testing.T) {
	h, _ := newTestServer(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var info map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "schemacheck-http", info["app"])
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.Equal(t, schemacheck.Version, info["version"])
}

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/validate"))

	h, _ := newTestServer(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, RawSpec(), w.Body.Bytes())
}

func TestMetricsRoute(t *testing.T) {
	h, _ := newTestServer(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "metrics are opt-in")

	h, _ = newTestServer(t, WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "metrics")
	})))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "metrics", w.Body.String())
}

func TestCORS(t *testing.T) {
	h, _ := newTestServer(t, WithCORSOrigins([]string{"https://app.example"}))

	req := httptest.NewRequest(http.MethodOptions, "/validate", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

type panickingChecker struct{ schemacheck.Checker }

func (panickingChecker) CheckDocuments(context.Context, domain.Submission) (*domain.Report, error) {
	panic("boom")
}

func (panickingChecker) Check(context.Context, jsonvalue.Value, jsonvalue.Value, domain.Engine) *domain.Report {
	panic("boom")
}

func TestValidate_PanicBecomesInternalViolation(t *testing.T) {
	h := NewHandler(&panickingChecker{}, WithLogger(logging.NewNop()))

	w, resp := postJSON(t, h, "/validate", `{"json": {}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.Valid)
	assert.Equal(t, []string{"Unexpected error: boom"}, resp.Errors)
	assert.Equal(t, schema.KindInternal, resp.Violations[0].Kind)
}

func TestSubscribeEvents(t *testing.T) {
	h, streams := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest(http.MethodGet, "/events?engine=subset", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(wSub, reqSub)
	}()

	require.Eventually(t, func() bool { return streams.Subscribers("subset") == 1 }, time.Second, 10*time.Millisecond)

	postJSON(t, h, "/validate", `{"json": 1, "schema": {"type": "string"}}`)
	postJSON(t, h, "/validate", `{"json": 1, "schema": {}, "engine": "draft7"}`)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, `"engine":"subset"`)
	assert.Contains(t, output, `"valid":false`)
	assert.NotContains(t, output, `"engine":"draft7"`, "engine filter applies")
}

func TestSubscribeEvents_UnknownEngine(t *testing.T) {
	h, _ := newTestServer(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events?engine=draft3", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentText(t *testing.T) {
	assert.Equal(t, "{}", string(documentText(nil)))
	assert.Equal(t, "{}", string(documentText(json.RawMessage("null"))))
	assert.Equal(t, `{"a":1}`, string(documentText(json.RawMessage(`"{\"a\":1}"`))))
	assert.Equal(t, `[1, 2]`, string(documentText(json.RawMessage(` [1, 2] `))))
}

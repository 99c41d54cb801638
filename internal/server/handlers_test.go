package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"songsmith/internal/config"
	"songsmith/internal/core"
	"songsmith/internal/gen"
	"songsmith/internal/pipeline"
	"songsmith/internal/search"
	"songsmith/internal/separation"
)

type fakePipeline struct {
	lastGenerate pipeline.GenerateRequest
	result       *core.GenerationResult
	refined      *core.RefinementResult
	err          error
}

func (f *fakePipeline) Generate(ctx context.Context, req pipeline.GenerateRequest) (*core.GenerationResult, error) {
	f.lastGenerate = req
	return f.result, f.err
}

func (f *fakePipeline) Refine(ctx context.Context, req gen.RefineRequest) (*core.RefinementResult, error) {
	return f.refined, f.err
}

type fakeResolver struct {
	meta *core.ResolvedMetadata
}

func (f *fakeResolver) Resolve(ctx context.Context, rawURL string) *core.ResolvedMetadata {
	return f.meta
}

type fakeGatherer struct {
	backend search.ProviderType
	context string
}

func (f *fakeGatherer) Backend() search.ProviderType { return f.backend }
func (f *fakeGatherer) GatherContext(ctx context.Context, query string) string {
	return f.context
}

type fakeSeparator struct {
	configured bool
	taskID     string
	job        *core.SeparationJob
	err        error
}

func (f *fakeSeparator) Configured() bool { return f.configured }
func (f *fakeSeparator) Submit(ctx context.Context, path string) (string, error) {
	return f.taskID, f.err
}
func (f *fakeSeparator) Status(ctx context.Context, taskID string) (*core.SeparationJob, error) {
	return f.job, f.err
}

func newTestServer(deps Deps) *Server {
	if deps.Pipeline == nil {
		deps.Pipeline = &fakePipeline{result: &core.GenerationResult{ID: "r"}}
	}
	if deps.Resolver == nil {
		deps.Resolver = &fakeResolver{}
	}
	if deps.Search == nil {
		deps.Search = &fakeGatherer{backend: search.ProviderTypeNone}
	}
	return New(deps, config.Server{Host: "127.0.0.1", Port: 0})
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(Deps{Separation: &fakeSeparator{configured: true}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decodeBody(t, rec, &body)
	if body.Status != "ok" || body.Checks["separation"] != "configured" {
		t.Errorf("body = %#v", body)
	}
}

func TestGenerate(t *testing.T) {
	fp := &fakePipeline{result: &core.GenerationResult{ID: "result-1", ModelUsed: "m"}}
	s := newTestServer(Deps{Pipeline: fp})

	rec := postJSON(t, s.Router(), "/api/generate", map[string]any{
		"theme":     "space jazz",
		"media_url": "https://youtu.be/aaaaaaaaaaa",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result core.GenerationResult
	decodeBody(t, rec, &result)
	if result.ID != "result-1" {
		t.Errorf("result = %#v", result)
	}
	if fp.lastGenerate.Theme != "space jazz" || fp.lastGenerate.MediaURL != "https://youtu.be/aaaaaaaaaaa" {
		t.Errorf("pipeline request = %#v", fp.lastGenerate)
	}
}

func TestGenerateRejectsEmptyRequest(t *testing.T) {
	s := newTestServer(Deps{})
	rec := postJSON(t, s.Router(), "/api/generate", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGenerateDecodesAttachment(t *testing.T) {
	fp := &fakePipeline{result: &core.GenerationResult{}}
	s := newTestServer(Deps{Pipeline: fp})

	rec := postJSON(t, s.Router(), "/api/generate", map[string]any{
		"media_data":      "aGVsbG8=",
		"media_mime_type": "image/png",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if fp.lastGenerate.Media == nil || string(fp.lastGenerate.Media.Data) != "hello" {
		t.Errorf("attachment = %#v", fp.lastGenerate.Media)
	}

	rec = postJSON(t, s.Router(), "/api/generate", map[string]any{"media_data": "aGVsbG8="})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing mime type should be rejected, status = %d", rec.Code)
	}

	rec = postJSON(t, s.Router(), "/api/generate", map[string]any{
		"media_data":      "!!not-base64!!",
		"media_mime_type": "image/png",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad base64 should be rejected, status = %d", rec.Code)
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"overloaded", gen.ErrModelOverloaded, http.StatusServiceUnavailable},
		{"schema", &gen.SchemaError{Raw: "x", Err: errors.New("bad shape")}, http.StatusBadGateway},
		{"empty", gen.ErrEmptyResponse, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(Deps{Pipeline: &fakePipeline{err: tc.err}})
			rec := postJSON(t, s.Router(), "/api/generate", map[string]any{"theme": "x"})
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRefine(t *testing.T) {
	fp := &fakePipeline{refined: &core.RefinementResult{
		Best: core.SongSelection{Title: "Locked Title", Style: "ambient"},
	}}
	s := newTestServer(Deps{Pipeline: fp})

	rec := postJSON(t, s.Router(), "/api/refine", map[string]any{
		"selected_title":   "Locked Title",
		"analysis":         "prior analysis",
		"style_candidates": []string{"ambient", "drone"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result core.RefinementResult
	decodeBody(t, rec, &result)
	if result.Best.Title != "Locked Title" {
		t.Errorf("result = %#v", result)
	}

	rec = postJSON(t, s.Router(), "/api/refine", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing title should be rejected, status = %d", rec.Code)
	}
}

func TestResolve(t *testing.T) {
	s := newTestServer(Deps{Resolver: &fakeResolver{meta: &core.ResolvedMetadata{
		Title: "Song", Author: "Artist", Provider: "YouTube",
	}}})

	rec := postJSON(t, s.Router(), "/api/resolve", map[string]any{"url": "https://youtu.be/aaaaaaaaaaa"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Resolved bool                   `json:"resolved"`
		Metadata *core.ResolvedMetadata `json:"metadata"`
	}
	decodeBody(t, rec, &body)
	if !body.Resolved || body.Metadata.Title != "Song" {
		t.Errorf("body = %#v", body)
	}
}

func TestResolveMissIsNotAnError(t *testing.T) {
	s := newTestServer(Deps{Resolver: &fakeResolver{meta: nil}})

	rec := postJSON(t, s.Router(), "/api/resolve", map[string]any{"url": "https://example.com/x"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Resolved bool `json:"resolved"`
	}
	decodeBody(t, rec, &body)
	if body.Resolved {
		t.Error("expected resolved=false")
	}
}

func TestSearch(t *testing.T) {
	s := newTestServer(Deps{Search: &fakeGatherer{
		backend: search.ProviderTypeGoogle,
		context: "- A: b",
	}})

	rec := postJSON(t, s.Router(), "/api/search", map[string]any{"query": "q"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Backend string `json:"backend"`
		Context string `json:"context"`
	}
	decodeBody(t, rec, &body)
	if body.Backend != "google" || body.Context != "- A: b" {
		t.Errorf("body = %#v", body)
	}

	rec = postJSON(t, s.Router(), "/api/search", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing query should be rejected, status = %d", rec.Code)
	}
}

func TestSeparateUnconfigured(t *testing.T) {
	s := newTestServer(Deps{Separation: &fakeSeparator{configured: false}})

	rec := postJSON(t, s.Router(), "/api/separate", map[string]any{})
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/separate/abc", nil)
	rec2 := httptest.NewRecorder()
	s.Router().ServeHTTP(rec2, req)
	if rec2.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rec2.Code)
	}
}

func TestSeparateUpload(t *testing.T) {
	s := newTestServer(Deps{Separation: &fakeSeparator{configured: true, taskID: "task-1"}})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "song.mp3")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte("audio"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/separate", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "task-1") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSeparationStatus(t *testing.T) {
	s := newTestServer(Deps{Separation: &fakeSeparator{
		configured: true,
		job:        &core.SeparationJob{ID: "task-1", Status: core.SeparationProcessing, Progress: 55},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/separate/task-1", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var job core.SeparationJob
	decodeBody(t, rec, &job)
	if job.Progress != 55 {
		t.Errorf("job = %#v", job)
	}
}

func TestSeparationStatusNotFound(t *testing.T) {
	s := newTestServer(Deps{Separation: &fakeSeparator{
		configured: true,
		err:        separation.ErrJobNotFound,
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/separate/missing", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

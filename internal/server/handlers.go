package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"songsmith/internal/gen"
	"songsmith/internal/logger"
	"songsmith/internal/pipeline"
	"songsmith/internal/separation"
)

// maxUploadBytes caps audio uploads for separation at 100 MB.
const maxUploadBytes = 100 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"search":     string(s.deps.Search.Backend()),
		"separation": "disabled",
	}
	if s.deps.Separation != nil && s.deps.Separation.Configured() {
		checks["separation"] = "configured"
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"checks": checks,
	})
}

type generateRequest struct {
	Theme         string `json:"theme"`
	MediaURL      string `json:"media_url"`
	MediaData     string `json:"media_data"`      // Base64-encoded image or video
	MediaMIMEType string `json:"media_mime_type"` // Required when media_data is set
	DeepAnalysis  bool   `json:"deep_analysis"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Theme == "" && req.MediaURL == "" && req.MediaData == "" {
		s.respondError(w, http.StatusBadRequest, "Provide a theme, a media URL, or an attachment")
		return
	}

	var media *gen.MediaAttachment
	if req.MediaData != "" {
		if req.MediaMIMEType == "" {
			s.respondError(w, http.StatusBadRequest, "media_mime_type is required with media_data")
			return
		}
		data, err := base64.StdEncoding.DecodeString(req.MediaData)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "media_data is not valid base64")
			return
		}
		media = &gen.MediaAttachment{MIMEType: req.MediaMIMEType, Data: data}
	}

	result, err := s.deps.Pipeline.Generate(r.Context(), pipeline.GenerateRequest{
		Theme:        req.Theme,
		MediaURL:     req.MediaURL,
		Media:        media,
		DeepAnalysis: req.DeepAnalysis,
	})
	if err != nil {
		s.respondGenerationError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

type refineRequest struct {
	SelectedTitle   string   `json:"selected_title"`
	Analysis        string   `json:"analysis"`
	StyleCandidates []string `json:"style_candidates"`
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SelectedTitle == "" {
		s.respondError(w, http.StatusBadRequest, "selected_title is required")
		return
	}

	result, err := s.deps.Pipeline.Refine(r.Context(), gen.RefineRequest{
		SelectedTitle:   req.SelectedTitle,
		Analysis:        req.Analysis,
		StyleCandidates: req.StyleCandidates,
	})
	if err != nil {
		s.respondGenerationError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// respondGenerationError maps model-call failures to HTTP statuses: overload
// is 503, schema violations are 502 (bad upstream output), the rest are 500.
func (s *Server) respondGenerationError(w http.ResponseWriter, err error) {
	logger.Error("Generation request failed", err)

	var schemaErr *gen.SchemaError
	switch {
	case errors.Is(err, gen.ErrModelOverloaded):
		s.respondError(w, http.StatusServiceUnavailable, "The model is overloaded, try again shortly")
	case errors.As(err, &schemaErr), errors.Is(err, gen.ErrEmptyResponse):
		s.respondError(w, http.StatusBadGateway, "The model returned an unusable response")
	default:
		s.respondError(w, http.StatusInternalServerError, "Generation failed")
	}
}

type resolveRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		s.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	// Resolution misses are a normal outcome, not an error.
	meta := s.deps.Resolver.Resolve(r.Context(), req.URL)
	s.respondJSON(w, http.StatusOK, map[string]any{
		"resolved": meta != nil,
		"metadata": meta,
	})
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"backend": s.deps.Search.Backend(),
		"context": s.deps.Search.GatherContext(r.Context(), req.Query),
	})
}

func (s *Server) handleSeparate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Separation == nil || !s.deps.Separation.Configured() {
		s.respondError(w, http.StatusNotImplemented, "Separation backend not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Missing file upload")
		return
	}
	defer file.Close()

	// The separation client uploads from disk, so stage the file in a temp
	// directory first.
	tmpDir, err := os.MkdirTemp("", "songsmith-upload-")
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to stage upload")
		return
	}
	defer os.RemoveAll(tmpDir)

	staged := filepath.Join(tmpDir, filepath.Base(header.Filename))
	out, err := os.Create(staged)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to stage upload")
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		s.respondError(w, http.StatusInternalServerError, "Failed to stage upload")
		return
	}
	out.Close()

	taskID, err := s.deps.Separation.Submit(r.Context(), staged)
	if err != nil {
		logger.Error("Separation submit failed", err)
		s.respondError(w, http.StatusBadGateway, "Separation backend rejected the upload")
		return
	}

	s.respondJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

func (s *Server) handleSeparationStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.Separation == nil || !s.deps.Separation.Configured() {
		s.respondError(w, http.StatusNotImplemented, "Separation backend not configured")
		return
	}

	taskID := chi.URLParam(r, "id")
	job, err := s.deps.Separation.Status(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, separation.ErrJobNotFound) {
			s.respondError(w, http.StatusNotFound, "Task not found")
			return
		}
		logger.Error("Separation status failed", err, "task_id", taskID)
		s.respondError(w, http.StatusBadGateway, "Separation backend unavailable")
		return
	}

	s.respondJSON(w, http.StatusOK, job)
}

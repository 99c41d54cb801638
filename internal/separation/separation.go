// Package separation is a client for the external stem-separation backend:
// upload an audio file, poll the job until it finishes, collect stem URLs.
package separation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"songsmith/internal/config"
	"songsmith/internal/core"
	"songsmith/internal/logger"
)

var (
	// ErrNotConfigured means no separation backend URL was set.
	ErrNotConfigured = errors.New("separation backend not configured")

	// ErrJobFailed means the backend reported a failed job.
	ErrJobFailed = errors.New("separation job failed")

	// ErrJobNotFound means the backend does not know the task ID.
	ErrJobNotFound = errors.New("separation job not found")
)

const defaultPollInterval = 2 * time.Second

// Client talks to the separation backend over HTTP.
type Client struct {
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
}

// New creates a separation client from explicit configuration. A client with
// an empty base URL is valid but every call returns ErrNotConfigured.
func New(cfg config.Separation) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		client:       &http.Client{Timeout: timeout},
		pollInterval: interval,
	}
}

// Configured reports whether a backend URL is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// Submit uploads an audio file and returns the task ID of the queued job.
func (c *Client) Submit(ctx context.Context, path string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/separate", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("separation backend returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Status string `json:"status"`
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}
	if parsed.TaskID == "" {
		return "", fmt.Errorf("separation backend returned no task ID")
	}

	logger.Info("Separation job submitted", "task_id", parsed.TaskID, "file", filepath.Base(path))
	return parsed.TaskID, nil
}

// Status fetches the current state of a job.
func (c *Client) Status(ctx context.Context, taskID string) (*core.SeparationJob, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/task/"+taskID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, taskID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("separation backend returned status %d", resp.StatusCode)
	}

	var job core.SeparationJob
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("failed to parse job status: %w", err)
	}
	job.ID = taskID
	return &job, nil
}

// Cancel asks the backend to stop a running job. The backend honors the
// request at its next checkpoint.
func (c *Client) Cancel(ctx context.Context, taskID string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/task/"+taskID+"/cancel", nil)
	if err != nil {
		return fmt.Errorf("failed to create cancel request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cancel request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrJobNotFound, taskID)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("separation backend returned status %d", resp.StatusCode)
	}
	return nil
}

// Wait polls a job until it completes, fails, or the context ends. The
// optional progress callback fires after each poll.
func (c *Client) Wait(ctx context.Context, taskID string, onProgress func(*core.SeparationJob)) (*core.SeparationJob, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		job, err := c.Status(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if onProgress != nil {
			onProgress(job)
		}

		switch job.Status {
		case core.SeparationCompleted:
			logger.Info("Separation job completed", "task_id", taskID)
			return job, nil
		case core.SeparationFailed:
			return job, fmt.Errorf("%w: %s", ErrJobFailed, job.Error)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

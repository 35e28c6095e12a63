package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ProgressUpdate is one tick of model acquisition progress.
type ProgressUpdate struct {
	Status  ModelStatus
	Percent int
}

// Runtime is the neural inference backend: an emotion classifier and a text
// summarizer behind a load step that may download model weights. The
// pipeline treats it as slow and unreliable; every failure has a
// deterministic fallback.
type Runtime interface {
	Load(ctx context.Context, progress func(ProgressUpdate)) error
	Classify(ctx context.Context, text string) (Classification, error)
	Summarize(ctx context.Context, text string) (string, error)
}

// HTTPRuntime talks to a local inference sidecar over HTTP.
type HTTPRuntime struct {
	baseURL      string
	client       *http.Client
	logger       *slog.Logger
	pollInterval time.Duration
}

func NewHTTPRuntime(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPRuntime {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPRuntime{
		baseURL:      baseURL,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
		pollInterval: 500 * time.Millisecond,
	}
}

type statusResponse struct {
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
}

// Load polls the sidecar's status endpoint until the models are ready,
// pushing each observed progress tick. Reported percent stays at 99 or below
// until the ready transition.
func (r *HTTPRuntime) Load(ctx context.Context, progress func(ProgressUpdate)) error {
	for {
		status, err := r.fetchStatus(ctx)
		if err != nil {
			return err
		}

		switch status.Status {
		case "ready":
			if progress != nil {
				progress(ProgressUpdate{Status: StatusReady, Percent: 100})
			}
			return nil
		case "downloading", "loading":
			if progress != nil {
				percent := int(status.Progress)
				if percent > 99 {
					percent = 99
				}
				progress(ProgressUpdate{Status: StatusDownloading, Percent: percent})
			}
		case "error":
			return fmt.Errorf("inference runtime reported an error state")
		}

		select {
		case <-time.After(r.pollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *HTTPRuntime) fetchStatus(ctx context.Context) (*statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/v1/models/status", nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch model status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model status returned %d", resp.StatusCode)
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode model status: %w", err)
	}
	return &status, nil
}

// Classify runs the emotion classifier on text.
func (r *HTTPRuntime) Classify(ctx context.Context, text string) (Classification, error) {
	var result Classification
	if err := r.post(ctx, "/v1/classify", text, &result); err != nil {
		return Classification{}, err
	}
	if result.Label != "POSITIVE" && result.Label != "NEGATIVE" {
		return Classification{}, fmt.Errorf("classifier returned unknown label %q", result.Label)
	}
	if result.Score < 0 {
		result.Score = 0
	} else if result.Score > 1 {
		result.Score = 1
	}
	return result, nil
}

// Summarize condenses text into a short topic summary.
func (r *HTTPRuntime) Summarize(ctx context.Context, text string) (string, error) {
	var result struct {
		Summary string `json:"summary"`
	}
	if err := r.post(ctx, "/v1/summarize", text, &result); err != nil {
		return "", err
	}
	return result.Summary, nil
}

func (r *HTTPRuntime) post(ctx context.Context, path, text string, out any) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	r.logger.Debug("inference call completed",
		slog.String("path", path),
		slog.Duration("duration", time.Since(start)))
	return nil
}

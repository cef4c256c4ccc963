// Package httpworkload implements a Workload that issues HTTP GET requests
// against a configured URL — the simplest concrete workload a binary can
// point at any remote service.
package httpworkload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"brokle-loadtest/internal/workload"
)

// Config configures the HTTP workload.
type Config struct {
	// URL is the target the workload issues GET requests against.
	URL string
	// RequestTimeout bounds each individual HTTP call. The workload owns
	// its own network timeout per the design: the driver does not cancel
	// a running PerformIteration.
	RequestTimeout time.Duration
	// Headers are attached to every request, e.g. for auth tokens.
	Headers map[string]string
}

// Workload drives a *http.Client against Config.URL. One iteration is one
// request, so ItemsPerIteration is always 1.
type Workload struct {
	workload.Base

	cfg    Config
	client *http.Client
}

// New constructs an HTTP Workload. Setup only checks that URL is set and
// Teardown only closes idle connections; there is no remote lifecycle to
// manage.
func New(cfg Config) *Workload {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Workload{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (w *Workload) Setup(ctx context.Context) error {
	if w.cfg.URL == "" {
		return fmt.Errorf("httpworkload: URL must not be empty")
	}
	return nil
}

func (w *Workload) Teardown(ctx context.Context) error {
	w.client.CloseIdleConnections()
	return nil
}

func (w *Workload) PerformIteration(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("httpworkload: building request: %w", err)
	}
	for k, v := range w.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("httpworkload: request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return fmt.Errorf("httpworkload: server error status %d", resp.StatusCode)
	}
	return nil
}

func (w *Workload) TestRunData() map[string]any {
	return map[string]any{
		"url":            w.cfg.URL,
		"requestTimeout": w.cfg.RequestTimeout.String(),
	}
}

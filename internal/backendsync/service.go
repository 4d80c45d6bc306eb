// Package backendsync forwards scan summaries to the secondary results
// backend. The backend keeps its own schema, so only the summary fields it
// understands are sent. Sync is best effort; the local record is already
// durable before any sync attempt.
package backendsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hemascan/internal/config"
	"hemascan/internal/scan"
)

const userAgent = "Hemascan-Go/0.1.0"

// Service defines the result-sync surface exposed to the persistence pipeline.
type Service interface {
	SyncResult(ctx context.Context, record scan.Record) error
	TestConnection(ctx context.Context) error
}

// NewService builds a sync service backed by the configured backend. When the
// backend is disabled or has no base URL, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.Backend.BaseURL), "/")
	if !cfg.Backend.Enabled || baseURL == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &httpService{
		baseURL:  baseURL,
		apiToken: strings.TrimSpace(cfg.Backend.APIToken),
		client:   &http.Client{Timeout: timeout},
	}
}

type httpService struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

// resultPayload is the backend's scan-results wire format.
type resultPayload struct {
	ScanID             string   `json:"scan_id"`
	UserID             string   `json:"user_id"`
	RiskLevel          string   `json:"risk_level"`
	Confidence         float64  `json:"confidence"`
	HemoglobinEstimate string   `json:"hemoglobin_estimate"`
	Details            string   `json:"details"`
	Recommendations    []string `json:"recommendations"`
	ImageURLs          []string `json:"image_urls,omitempty"`
	Timestamp          int64    `json:"timestamp"`
}

func (s *httpService) SyncResult(ctx context.Context, record scan.Record) error {
	payload := resultPayload{
		ScanID:             record.ID,
		UserID:             record.OwnerID,
		RiskLevel:          string(record.Stage),
		Confidence:         record.Confidence,
		HemoglobinEstimate: fmt.Sprintf("%.1f", record.HemoglobinEstimate),
		Details:            record.Explanation,
		Recommendations:    record.Result().Recommendations(),
		ImageURLs:          record.ImageURLs,
		Timestamp:          record.Timestamp,
	}
	return s.post(ctx, "/api/scan-results", payload)
}

func (s *httpService) TestConnection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("backend sync: new request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend sync: health request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("backend sync: health returned http %d", resp.StatusCode)
	}
	return nil
}

func (s *httpService) post(ctx context.Context, path string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("backend sync: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("backend sync: new request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend sync: post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend sync: post %s: http %d: %s",
			path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *httpService) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	if s.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiToken)
	}
}

type noopService struct{}

func (noopService) SyncResult(ctx context.Context, record scan.Record) error { return nil }

func (noopService) TestConnection(ctx context.Context) error { return nil }

package logstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSource talks to the log store's query API over HTTP. One instance
// per named log group; both widget completion paths get their own group.
type HTTPSource struct {
	endpoint string
	logGroup string
	client   *http.Client
}

// NewHTTPSource creates a source for one log group
func NewHTTPSource(endpoint, logGroup string) *HTTPSource {
	return &HTTPSource{
		endpoint: endpoint,
		logGroup: logGroup,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Name returns the log group this source queries
func (s *HTTPSource) Name() string {
	return s.logGroup
}

type submitRequest struct {
	LogGroup  string `json:"logGroup"`
	Query     string `json:"queryString"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
}

type submitResponse struct {
	QueryID string `json:"queryId"`
}

type pollResponse struct {
	Status  string `json:"status"`
	Results []Row  `json:"results"`
}

// Submit starts an asynchronous query over [start, end) epoch seconds
func (s *HTTPSource) Submit(ctx context.Context, query string, start, end time.Time) (string, error) {
	body, err := json.Marshal(submitRequest{
		LogGroup:  s.logGroup,
		Query:     query,
		StartTime: start.Unix(),
		EndTime:   end.Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal submit request: %w", err)
	}

	var resp submitResponse
	if err := s.post(ctx, "/queries", body, &resp); err != nil {
		return "", err
	}
	if resp.QueryID == "" {
		return "", fmt.Errorf("log store returned empty query id for %s", s.logGroup)
	}
	return resp.QueryID, nil
}

// Poll fetches the current state of a submitted query, with results once
// complete
func (s *HTTPSource) Poll(ctx context.Context, handle string) (QueryState, []Row, error) {
	body, err := json.Marshal(map[string]string{"queryId": handle})
	if err != nil {
		return "", nil, fmt.Errorf("marshal poll request: %w", err)
	}

	var resp pollResponse
	if err := s.post(ctx, "/queries/results", body, &resp); err != nil {
		return "", nil, err
	}

	switch resp.Status {
	case "Scheduled":
		return StateScheduled, nil, nil
	case "Running":
		return StateRunning, nil, nil
	case "Complete":
		return StateComplete, resp.Results, nil
	case "Failed":
		return StateFailed, nil, nil
	case "Cancelled":
		return StateCancelled, nil, nil
	default:
		return "", nil, fmt.Errorf("unknown query status %q from %s", resp.Status, s.logGroup)
	}
}

func (s *HTTPSource) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("log store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("log store returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode log store response: %w", err)
	}
	return nil
}

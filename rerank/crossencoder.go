// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultCrossEncoderTimeout bounds each scoring request.
const DefaultCrossEncoderTimeout = 15 * time.Second

// CrossEncoder scores (query, document) pairs through a self-hosted
// cross-encoder service. The service connection is probed lazily on
// first use; if the probe fails, every call returns
// ErrBackendUnavailable and the caller falls back.
type CrossEncoder struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger

	probeOnce sync.Once
	probeErr  error
}

// CrossEncoderOption configures a CrossEncoder.
type CrossEncoderOption func(*CrossEncoder) error

// WithCrossEncoderTimeout bounds each HTTP request.
func WithCrossEncoderTimeout(timeout time.Duration) CrossEncoderOption {
	return func(c *CrossEncoder) error {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
		return nil
	}
}

// WithCrossEncoderHTTPClient replaces the HTTP client.
func WithCrossEncoderHTTPClient(client *http.Client) CrossEncoderOption {
	return func(c *CrossEncoder) error {
		if client != nil {
			c.httpClient = client
		}
		return nil
	}
}

// WithCrossEncoderLogger overrides the default logger.
func WithCrossEncoderLogger(logger *slog.Logger) CrossEncoderOption {
	return func(c *CrossEncoder) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCrossEncoder creates a client for the scoring service at endpoint.
func NewCrossEncoder(endpoint string, opts ...CrossEncoderOption) (*CrossEncoder, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, ErrEndpointRequired
	}
	c := &CrossEncoder{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: DefaultCrossEncoderTimeout},
		logger:     slog.Default().With("component", "crossencoder"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

var _ Reranker = (*CrossEncoder)(nil)

type scoreRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type scoreResponse struct {
	Results []struct {
		Index int     `json:"index"`
		Score float32 `json:"score"`
	} `json:"results"`
}

// Rerank scores texts against the query. The first call probes the
// service; once the probe fails the client stays degraded.
func (c *CrossEncoder) Rerank(ctx context.Context, query string, texts []string, topN int) ([]Result, error) {
	if len(texts) == 0 {
		return []Result{}, nil
	}

	c.probeOnce.Do(func() {
		c.probeErr = c.probe(ctx)
		if c.probeErr != nil {
			c.logger.Warn("cross-encoder probe failed, client degraded", "error", c.probeErr)
		}
	})
	if c.probeErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, c.probeErr)
	}

	body, err := json.Marshal(scoreRequest{Query: query, Documents: texts, TopN: clampTopN(topN, len(texts))})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var parsed scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Index < 0 || r.Index >= len(texts) {
			continue
		}
		results = append(results, Result{Index: r.Index, Score: r.Score})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if n := clampTopN(topN, len(texts)); len(results) > n {
		results = results[:n]
	}
	return results, nil
}

// probe checks the service health endpoint once.
func (c *CrossEncoder) probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, c.httpClient.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health status %d", resp.StatusCode)
	}
	return nil
}

package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Defaults for the hosted rerank client.
const (
	DefaultHostedTimeout = 15 * time.Second
	DefaultHostedModel   = "rerank-v3.5"
)

// HostedReranker calls a hosted rerank API (Cohere-compatible v2 wire
// format). Same contract as CrossEncoder; the cascade treats the two
// interchangeably.
type HostedReranker struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// HostedOption configures a HostedReranker.
type HostedOption func(*HostedReranker) error

// WithHostedModel overrides the rerank model name.
func WithHostedModel(model string) HostedOption {
	return func(h *HostedReranker) error {
		if model != "" {
			h.model = model
		}
		return nil
	}
}

// WithHostedTimeout bounds each HTTP request.
func WithHostedTimeout(timeout time.Duration) HostedOption {
	return func(h *HostedReranker) error {
		if timeout > 0 {
			h.httpClient.Timeout = timeout
		}
		return nil
	}
}

// WithHostedHTTPClient replaces the HTTP client.
func WithHostedHTTPClient(client *http.Client) HostedOption {
	return func(h *HostedReranker) error {
		if client != nil {
			h.httpClient = client
		}
		return nil
	}
}

// NewHostedReranker creates a client for the hosted API at endpoint.
func NewHostedReranker(endpoint, apiKey string, opts ...HostedOption) (*HostedReranker, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, ErrEndpointRequired
	}
	h := &HostedReranker{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		model:      DefaultHostedModel,
		httpClient: &http.Client{Timeout: DefaultHostedTimeout},
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	return h, nil
}

var _ Reranker = (*HostedReranker)(nil)

type hostedRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type hostedResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float32 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank scores texts against the query via the hosted API.
func (h *HostedReranker) Rerank(ctx context.Context, query string, texts []string, topN int) ([]Result, error) {
	if len(texts) == 0 {
		return []Result{}, nil
	}

	body, err := json.Marshal(hostedRequest{
		Model:     h.model,
		Query:     query,
		Documents: texts,
		TopN:      clampTopN(topN, len(texts)),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint+"/v2/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var parsed hostedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Index < 0 || r.Index >= len(texts) {
			continue
		}
		results = append(results, Result{Index: r.Index, Score: r.RelevanceScore})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if n := clampTopN(topN, len(texts)); len(results) > n {
		results = results[:n]
	}
	return results, nil
}

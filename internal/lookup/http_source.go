package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/facetline/internal/schema"
	"github.com/abelbrown/facetline/internal/suggest"
)

// HTTPSource answers name lookups against a remote endpoint speaking a small
// JSON contract: POST {relation, query, operator, domain, limit} and receive
// [{"value": ..., "label": ...}, ...]. Requests are rate limited so a fast
// typist cannot hammer the endpoint.
type HTTPSource struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

type lookupRequest struct {
	Relation string `json:"relation"`
	Query    string `json:"query"`
	Operator string `json:"operator"`
	Domain   string `json:"domain,omitempty"`
	Limit    int    `json:"limit"`
}

type lookupRow struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// NewHTTPSource creates an HTTPSource for the given endpoint URL.
func NewHTTPSource(endpoint string) *HTTPSource {
	return &HTTPSource{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(200*time.Millisecond), 3),
	}
}

// Lookup implements Source.
func (s *HTTPSource) Lookup(ctx context.Context, relation string, req Request) ([]suggest.Pair, error) {
	operator := schema.OpContains
	if req.Exact {
		operator = schema.OpEquals
	}
	body, err := json.Marshal(lookupRequest{
		Relation: relation,
		Query:    req.Query,
		Operator: operator,
		Domain:   req.Domain,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("lookup: marshal request: %w", err)
	}

	// Wait for rate limiter
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("lookup: rate limiter wait failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("lookup: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("lookup: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("lookup: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup: endpoint returned status %d: %s", resp.StatusCode, data)
	}

	var rows []lookupRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("lookup: parse response: %w", err)
	}

	pairs := make([]suggest.Pair, len(rows))
	for i, row := range rows {
		pairs[i] = suggest.Pair{Value: row.Value, Label: row.Label}
	}
	return pairs, nil
}

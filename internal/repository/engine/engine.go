// Package engine wraps the OpenSearch client with the circuit-breaker +
// timeout composition the search and facets usecases depend on. It is
// the Search Engine Adapter: a thin decoder over the engine's response
// shape, nothing more.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/kailas-cloud/catalog-search-gateway/internal/resilience"
)

// Config holds connection parameters for the engine client.
type Config struct {
	Node  string
	Index string
}

// Hit is a single document match from the engine.
type Hit struct {
	ID     string          `json:"_id"`
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
	Sort   []any           `json:"sort"`
}

// Result is the decoded shape of a search response, with hits.total
// normalized to a plain integer regardless of whether the engine
// returned a bare number or a {value, relation} object.
type Result struct {
	Total        int
	Hits         []Hit
	Aggregations json.RawMessage
}

type rawResponse struct {
	Hits struct {
		Total json.RawMessage `json:"total"`
		Hits  []Hit           `json:"hits"`
	} `json:"hits"`
	Aggregations json.RawMessage `json:"aggregations"`
}

type totalObject struct {
	Value int `json:"value"`
}

func decodeTotal(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var obj totalObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, fmt.Errorf("decode hits.total: %w", err)
	}
	return obj.Value, nil
}

// Client is the Search Engine Adapter. Search, RawSearch and
// DeleteDocument are wrapped by the engine-search circuit breaker, then
// by a per-call timeout derived from the caller's context; Ping uses the
// per-call timeout only.
type Client struct {
	os      *opensearch.Client
	index   string
	breaker *resilience.Breaker
	timeout time.Duration
}

// New creates an engine Client.
func New(cfg Config, breaker *resilience.Breaker, timeout time.Duration) (*Client, error) {
	osClient, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.Node},
	})
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}
	return &Client{os: osClient, index: cfg.Index, breaker: breaker, timeout: timeout}, nil
}

// Ping checks cluster connectivity.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := resilience.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.os.Info(c.os.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping: engine returned %s", res.Status())
	}
	return nil
}

// Search executes a structured query and decodes it into a Result.
func (c *Client) Search(ctx context.Context, body map[string]any) (*Result, error) {
	var result *Result
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		raw, err := c.search(ctx, body)
		if err != nil {
			return err
		}
		var resp rawResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return fmt.Errorf("decode search response: %w", err)
		}
		total, err := decodeTotal(resp.Hits.Total)
		if err != nil {
			return err
		}
		result = &Result{Total: total, Hits: resp.Hits.Hits, Aggregations: resp.Aggregations}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RawSearch executes a structured query and returns the undecoded body,
// used by the suggestion pipeline which needs full control of response
// parsing (suggest blocks, custom aggregations).
func (c *Client) RawSearch(ctx context.Context, body map[string]any) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		b, err := c.search(ctx, body)
		if err != nil {
			return err
		}
		raw = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) search(ctx context.Context, body map[string]any) (json.RawMessage, error) {
	ctx, cancel := resilience.WithTimeout(ctx, c.timeout)
	defer cancel()

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := c.os.Search(
		c.os.Search.WithContext(ctx),
		c.os.Search.WithIndex(c.index),
		c.os.Search.WithBody(&buf),
		c.os.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search error [%s]: %s", res.Status(), raw)
	}
	return raw, nil
}

// DeleteDocument removes a document by ID, swallowing a 404 (already
// gone) — the only status code this adapter treats as success-shaped
// failure. No usecase in this read-only gateway calls it; it documents
// and tests the adapter's full contract per the Search Engine Adapter
// component of the pipeline.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		ctx, cancel := resilience.WithTimeout(ctx, c.timeout)
		defer cancel()

		res, err := c.os.Delete(c.index, id, c.os.Delete.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("delete request: %w", err)
		}
		defer res.Body.Close()

		if res.StatusCode == 404 {
			return nil
		}
		if res.IsError() {
			raw, _ := io.ReadAll(res.Body)
			return fmt.Errorf("delete error [%s]: %s", res.Status(), raw)
		}
		return nil
	})
}

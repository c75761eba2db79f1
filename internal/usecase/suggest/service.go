// Package suggest implements the did-you-mean suggestion pipeline that
// runs only when a search returns zero results (spec §4.7). It combines
// a phrase suggester with an aggregation-based fallback, both issued
// through the same engine circuit breaker as search; any failure here
// is absorbed, never bubbled.
package suggest

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/result"
	"github.com/kailas-cloud/catalog-search-gateway/internal/logger"
)

const maxSuggestions = 5

// Engine is the dependency this usecase needs from the Search Engine
// Adapter: RawSearch, since the suggest/aggregation response shapes
// need full control of decoding.
type Engine interface {
	RawSearch(ctx context.Context, body map[string]any) (json.RawMessage, error)
}

// Service runs the suggestion pipeline.
type Service struct {
	engine  Engine
	limiter *rate.Limiter
}

// Option configures an optional Service behavior.
type Option func(*Service)

// WithRateLimit caps how often the suggestion pipeline issues its two
// extra engine calls, shedding load before a thundering herd of
// zero-result queries can pile onto the engine. This guards request
// volume, which is distinct from the engine-search breaker's job of
// reacting to a rising error rate — a herd of zero-result queries
// produces neither errors nor slow calls on its own.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(s *Service) { s.limiter = rate.NewLimiter(r, burst) }
}

// New creates a suggest Service.
func New(engine Engine, opts ...Option) *Service {
	s := &Service{engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Suggest returns up to 5 case-folded, deduplicated did-you-mean
// candidates for text. Any failure along the way (engine error,
// malformed response) is logged and absorbed — callers always get a
// slice, possibly empty, never an error (spec §4.7).
func (s *Service) Suggest(ctx context.Context, text string) []result.Suggestion {
	if s.limiter != nil && !s.limiter.Allow() {
		logger.FromContext(ctx).Warn("suggestion pipeline rate limit exceeded, skipping")
		return nil
	}

	phrase := s.phraseSuggestions(ctx, text)
	aggregated := s.aggregationSuggestions(ctx, text)

	return mergeSuggestions(phrase, aggregated)
}

func (s *Service) phraseSuggestions(ctx context.Context, text string) []result.Suggestion {
	body := map[string]any{
		"suggest": map[string]any{
			"didYouMean": map[string]any{
				"text": text,
				"phrase": map[string]any{
					"field": "productName",
					"size":  3,
					"collate": map[string]any{
						"query": map[string]any{"source": map[string]any{"match": map[string]any{"productName": "{{suggestion}}"}}},
					},
					"suggest_mode": "popular",
					"gram_size":    2,
				},
			},
		},
		"size": 0,
	}

	raw, err := s.engine.RawSearch(ctx, body)
	if err != nil {
		logger.FromContext(ctx).Warn("phrase suggester failed", zap.Error(err))
		return nil
	}

	var resp struct {
		Suggest struct {
			DidYouMean []struct {
				Options []struct {
					Text string `json:"text"`
				} `json:"options"`
			} `json:"didYouMean"`
		} `json:"suggest"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		logger.FromContext(ctx).Warn("decode phrase suggester response failed", zap.Error(err))
		return nil
	}

	var suggestions []result.Suggestion
	for _, entry := range resp.Suggest.DidYouMean {
		for _, opt := range entry.Options {
			suggestions = append(suggestions, result.Suggestion{Term: opt.Text})
		}
	}
	return suggestions
}

func (s *Service) aggregationSuggestions(ctx context.Context, text string) []result.Suggestion {
	body := map[string]any{
		"size": 0,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     text,
				"type":      "best_fields",
				"fields":    []string{"productName", "brand", "categoryName"},
				"fuzziness": "AUTO",
			},
		},
		"aggs": map[string]any{
			"brand":        map[string]any{"terms": map[string]any{"field": "brand.keyword", "size": 3}},
			"categoryName": map[string]any{"terms": map[string]any{"field": "categoryName.keyword", "size": 3}},
		},
	}

	raw, err := s.engine.RawSearch(ctx, body)
	if err != nil {
		logger.FromContext(ctx).Warn("aggregation suggester failed", zap.Error(err))
		return nil
	}

	var resp struct {
		Aggregations struct {
			Brand struct {
				Buckets []struct {
					Key      string `json:"key"`
					DocCount int    `json:"doc_count"`
				} `json:"buckets"`
			} `json:"brand"`
			CategoryName struct {
				Buckets []struct {
					Key      string `json:"key"`
					DocCount int    `json:"doc_count"`
				} `json:"buckets"`
			} `json:"categoryName"`
		} `json:"aggregations"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		logger.FromContext(ctx).Warn("decode aggregation suggester response failed", zap.Error(err))
		return nil
	}

	tokens := strings.Fields(text)
	var suggestions []result.Suggestion

	for _, b := range resp.Aggregations.Brand.Buckets {
		count := b.DocCount
		suggestions = append(suggestions, result.Suggestion{
			Term:           unionTokens(tokens, b.Key),
			EstimatedCount: &count,
		})
	}
	for _, b := range resp.Aggregations.CategoryName.Buckets {
		count := b.DocCount
		suggestions = append(suggestions, result.Suggestion{
			Term:           b.Key,
			EstimatedCount: &count,
		})
	}

	return suggestions
}

// unionTokens folds a brand token into the original query's token set,
// producing e.g. "running shoes nike" from tokens=["running","shoes"]
// and brand="nike" (spec §4.7: "brand suggestions are produced by
// union-merging brand tokens into the original query's token set").
func unionTokens(tokens []string, brand string) string {
	seen := make(map[string]bool, len(tokens)+1)
	merged := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		lower := strings.ToLower(t)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		merged = append(merged, lower)
	}
	for _, b := range strings.Fields(brand) {
		lower := strings.ToLower(b)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		merged = append(merged, lower)
	}
	return strings.Join(merged, " ")
}

// mergeSuggestions case-folds and deduplicates phrase + aggregation
// candidates, preserving phrase-suggester results first since they are
// closer matches to the original text, then truncates to 5.
func mergeSuggestions(lists ...[]result.Suggestion) []result.Suggestion {
	seen := make(map[string]bool)
	var merged []result.Suggestion

	for _, list := range lists {
		for _, s := range list {
			key := strings.ToLower(strings.TrimSpace(s.Term))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, s)
			if len(merged) == maxSuggestions {
				return merged
			}
		}
	}
	return merged
}

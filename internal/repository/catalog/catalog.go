// Package catalog implements the Catalog Enricher: a batched relational
// lookup of variant options for a set of productIds, guarded by its own
// circuit breaker and falling back to an empty map on failure.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/catalog"
	"github.com/kailas-cloud/catalog-search-gateway/internal/resilience"
)

// Config holds connection parameters for the relational store.
type Config struct {
	DatabaseURL string
	MaxConns    int32
}

// Store is the Catalog Enricher.
type Store struct {
	pool    *pgxpool.Pool
	breaker *resilience.Breaker
	timeout time.Duration
}

// New connects to the relational store and returns a Store.
func New(ctx context.Context, cfg Config, breaker *resilience.Breaker, timeout time.Duration) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	return &Store{pool: pool, breaker: breaker, timeout: timeout}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := resilience.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// VariantOptions performs a single batched lookup of every variant
// belonging to any of productIDs, grouped by productId. On breaker-open
// or query failure it returns an empty map rather than an error — the
// grouper falls back further to variant options observed in the engine
// hits, per the Catalog Enricher's documented fallback contract.
func (s *Store) VariantOptions(ctx context.Context, productIDs []string) (map[string][]catalog.VariantOption, error) {
	if len(productIDs) == 0 {
		return map[string][]catalog.VariantOption{}, nil
	}

	result := make(map[string][]catalog.VariantOption)
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		ctx, cancel := resilience.WithTimeout(ctx, s.timeout)
		defer cancel()

		rows, err := s.pool.Query(ctx,
			`SELECT variant_id, product_id, image_url, attributes
			 FROM product_variants WHERE product_id = ANY($1)`,
			productIDs,
		)
		if err != nil {
			return fmt.Errorf("query variant options: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var opt catalog.VariantOption
			var attrs map[string]string
			if err := rows.Scan(&opt.VariantID, &opt.ProductID, &opt.ImageURL, &attrs); err != nil {
				return fmt.Errorf("scan variant option: %w", err)
			}
			opt.Attributes = attrs
			result[opt.ProductID] = append(result[opt.ProductID], opt)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate variant options: %w", err)
		}
		return nil
	})
	if err != nil {
		return map[string][]catalog.VariantOption{}, nil
	}
	return result, nil
}

package search

import (
	"encoding/json"
	"fmt"
	"sort"

	domaincatalog "github.com/kailas-cloud/catalog-search-gateway/internal/domain/catalog"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/cursor"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/result"
	"github.com/kailas-cloud/catalog-search-gateway/internal/repository/engine"
)

type hitWithDoc struct {
	hit engine.Hit
	doc domaincatalog.VariantDocument
}

type productGroup struct {
	productID    string
	name         string
	description  string
	brand        string
	categoryID   string
	categoryName string
	maxScore     float64
	hits         []hitWithDoc
}

// GroupHits implements the product grouper (spec §4.5): it walks the
// engine's variant hits in order, collapses them into one
// ProductResult per distinct productId, and returns the results sorted
// by score descending. variantOptions is the Catalog Enricher's
// productId -> options map; a missing or empty entry falls back to the
// variant options observable in this group's own hits.
func GroupHits(hits []engine.Hit, variantOptions map[string][]domaincatalog.VariantOption) ([]result.ProductResult, error) {
	order := make([]string, 0, len(hits))
	groups := make(map[string]*productGroup, len(hits))

	for _, h := range hits {
		var doc domaincatalog.VariantDocument
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			return nil, fmt.Errorf("decode variant document: %w", err)
		}

		g, ok := groups[doc.ProductID]
		if !ok {
			g = &productGroup{
				productID:    doc.ProductID,
				name:         doc.ProductName,
				description:  doc.ProductDescription,
				brand:        doc.Brand,
				categoryID:   doc.CategoryID,
				categoryName: doc.CategoryName,
			}
			groups[doc.ProductID] = g
			order = append(order, doc.ProductID)
		}
		if h.Score > g.maxScore {
			g.maxScore = h.Score
		}
		g.hits = append(g.hits, hitWithDoc{hit: h, doc: doc})
	}

	results := make([]result.ProductResult, 0, len(order))
	for _, productID := range order {
		results = append(results, buildProductResult(groups[productID], variantOptions[productID]))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}

func buildProductResult(g *productGroup, options []domaincatalog.VariantOption) result.ProductResult {
	matched := matchedVariant(g.hits)
	offer := domaincatalog.BestInStockOffer(matched.doc.PriceFrom, matched.doc.Offers)

	if len(options) == 0 {
		options = variantOptionsFromHits(g.hits)
	}

	offerCount := 0
	for _, hd := range g.hits {
		offerCount += len(hd.doc.Offers)
	}

	return result.ProductResult{
		ProductID:    g.productID,
		Name:         g.name,
		Description:  g.description,
		Brand:        g.brand,
		CategoryID:   g.categoryID,
		CategoryName: g.categoryName,
		MatchedVariant: result.MatchedVariant{
			VariantID: matched.doc.VariantID,
			SKU:       matched.doc.SKU,
			PriceFrom: matched.doc.PriceFrom,
			Score:     matched.hit.Score,
		},
		BestOffer:      offer,
		VariantOptions: options,
		OfferCount:     offerCount,
		Score:          g.maxScore,
	}
}

// matchedVariant selects the hit with the highest score, tie-broken by
// lower priceFrom (spec §4.5 step 2).
func matchedVariant(hits []hitWithDoc) hitWithDoc {
	best := hits[0]
	for _, hd := range hits[1:] {
		switch {
		case hd.hit.Score > best.hit.Score:
			best = hd
		case hd.hit.Score == best.hit.Score && hd.doc.PriceFrom < best.doc.PriceFrom:
			best = hd
		}
	}
	return best
}

func variantOptionsFromHits(hits []hitWithDoc) []domaincatalog.VariantOption {
	options := make([]domaincatalog.VariantOption, 0, len(hits))
	for _, hd := range hits {
		options = append(options, domaincatalog.VariantOption{
			VariantID:  hd.doc.VariantID,
			ProductID:  hd.doc.ProductID,
			Attributes: hd.doc.Attributes,
			ImageURL:   hd.doc.ImageURL,
		})
	}
	return options
}

// NextCursor derives the continuation cursor from the last hit of the
// engine response, not the last ProductResult, because continuation
// must stay in variant-sort space (spec §4.5). It is emitted only when
// the engine returned exactly limit hits and that last hit carries
// sort values (spec §4.2).
func NextCursor(hits []engine.Hit, limit int) string {
	if len(hits) != limit || limit == 0 {
		return ""
	}
	last := hits[len(hits)-1]
	if len(last.Sort) == 0 {
		return ""
	}
	return cursor.Encode(last.Sort)
}

// ProductIDs returns the distinct productIds present in hits, in first-
// seen order, for the Catalog Enricher's batched lookup.
func ProductIDs(hits []engine.Hit) ([]string, error) {
	seen := make(map[string]bool, len(hits))
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		var doc struct {
			ProductID string `json:"productId"`
		}
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			return nil, fmt.Errorf("decode variant document: %w", err)
		}
		if doc.ProductID == "" || seen[doc.ProductID] {
			continue
		}
		seen[doc.ProductID] = true
		ids = append(ids, doc.ProductID)
	}
	return ids, nil
}

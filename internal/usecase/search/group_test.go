package search

import (
	"encoding/json"
	"testing"

	domaincatalog "github.com/kailas-cloud/catalog-search-gateway/internal/domain/catalog"
	"github.com/kailas-cloud/catalog-search-gateway/internal/repository/engine"
)

func mustHit(t *testing.T, score float64, doc domaincatalog.VariantDocument, sort []any) engine.Hit {
	t.Helper()
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}
	return engine.Hit{ID: doc.VariantID, Score: score, Source: raw, Sort: sort}
}

func TestGroupHits_GroupsByProductID(t *testing.T) {
	hits := []engine.Hit{
		mustHit(t, 5.0, domaincatalog.VariantDocument{
			VariantID: "v1", ProductID: "p1", ProductName: "Shoe A", PriceFrom: 20,
			Offers: []domaincatalog.Offer{{OfferID: "o1", Price: 20, Stock: 3}},
		}, nil),
		mustHit(t, 3.0, domaincatalog.VariantDocument{
			VariantID: "v2", ProductID: "p1", ProductName: "Shoe A", PriceFrom: 25,
			Offers: []domaincatalog.Offer{{OfferID: "o2", Price: 25, Stock: 1}},
		}, nil),
		mustHit(t, 4.0, domaincatalog.VariantDocument{
			VariantID: "v3", ProductID: "p2", ProductName: "Shoe B", PriceFrom: 15,
			Offers: []domaincatalog.Offer{{OfferID: "o3", Price: 15, Stock: 0}},
		}, nil),
	}

	results, err := GroupHits(hits, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 distinct products, got %d", len(results))
	}
	// highest maxScore first: p1 (score 5) before p2 (score 4).
	if results[0].ProductID != "p1" || results[1].ProductID != "p2" {
		t.Errorf("expected p1 before p2, got %v", []string{results[0].ProductID, results[1].ProductID})
	}
}

func TestGroupHits_MatchedVariantHighestScore(t *testing.T) {
	hits := []engine.Hit{
		mustHit(t, 2.0, domaincatalog.VariantDocument{VariantID: "v1", ProductID: "p1", PriceFrom: 10}, nil),
		mustHit(t, 9.0, domaincatalog.VariantDocument{VariantID: "v2", ProductID: "p1", PriceFrom: 20}, nil),
	}
	results, err := GroupHits(hits, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].MatchedVariant.VariantID != "v2" {
		t.Errorf("expected v2 (higher score) to be the matched variant, got %s", results[0].MatchedVariant.VariantID)
	}
}

func TestGroupHits_MatchedVariantTieBrokenByLowerPrice(t *testing.T) {
	hits := []engine.Hit{
		mustHit(t, 5.0, domaincatalog.VariantDocument{VariantID: "v1", ProductID: "p1", PriceFrom: 30}, nil),
		mustHit(t, 5.0, domaincatalog.VariantDocument{VariantID: "v2", ProductID: "p1", PriceFrom: 10}, nil),
	}
	results, err := GroupHits(hits, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].MatchedVariant.VariantID != "v2" {
		t.Errorf("expected v2 (lower price on tie) to be the matched variant, got %s", results[0].MatchedVariant.VariantID)
	}
}

func TestGroupHits_BuyBoxPrefersInStock(t *testing.T) {
	hits := []engine.Hit{
		mustHit(t, 5.0, domaincatalog.VariantDocument{
			VariantID: "v1", ProductID: "p1", PriceFrom: 5,
			Offers: []domaincatalog.Offer{
				{OfferID: "cheap-oos", Price: 3, Stock: 0},
				{OfferID: "pricier-in-stock", Price: 8, Stock: 2},
			},
		}, nil),
	}
	results, err := GroupHits(hits, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].BestOffer.OfferID != "pricier-in-stock" {
		t.Errorf("expected in-stock offer to win buy-box, got %+v", results[0].BestOffer)
	}
}

func TestGroupHits_BuyBoxPlaceholderWhenNoOffers(t *testing.T) {
	hits := []engine.Hit{
		mustHit(t, 5.0, domaincatalog.VariantDocument{VariantID: "v1", ProductID: "p1", PriceFrom: 19.99}, nil),
	}
	results, err := GroupHits(hits, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	offer := results[0].BestOffer
	if offer.OfferID != "" || offer.Price != 19.99 || offer.Stock != 0 || offer.SupplierName != "Unknown" {
		t.Errorf("unexpected placeholder buy-box offer: %+v", offer)
	}
}

func TestGroupHits_VariantOptionsFallBackToHits(t *testing.T) {
	hits := []engine.Hit{
		mustHit(t, 5.0, domaincatalog.VariantDocument{
			VariantID: "v1", ProductID: "p1", ImageURL: "img1.jpg",
			Attributes: map[string]string{"color": "red"},
		}, nil),
	}
	results, err := GroupHits(hits, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results[0].VariantOptions) != 1 || results[0].VariantOptions[0].VariantID != "v1" {
		t.Errorf("expected variant options derived from hits, got %v", results[0].VariantOptions)
	}
}

func TestGroupHits_VariantOptionsFromEnricherTakePrecedence(t *testing.T) {
	hits := []engine.Hit{
		mustHit(t, 5.0, domaincatalog.VariantDocument{VariantID: "v1", ProductID: "p1"}, nil),
	}
	enriched := map[string][]domaincatalog.VariantOption{
		"p1": {{VariantID: "v1"}, {VariantID: "v2"}},
	}
	results, err := GroupHits(hits, enriched)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results[0].VariantOptions) != 2 {
		t.Errorf("expected enricher's 2 variant options to be used, got %d", len(results[0].VariantOptions))
	}
}

func TestGroupHits_OfferCountSumsAcrossHits(t *testing.T) {
	hits := []engine.Hit{
		mustHit(t, 5.0, domaincatalog.VariantDocument{
			VariantID: "v1", ProductID: "p1",
			Offers: []domaincatalog.Offer{{Price: 1}, {Price: 2}},
		}, nil),
		mustHit(t, 4.0, domaincatalog.VariantDocument{
			VariantID: "v2", ProductID: "p1",
			Offers: []domaincatalog.Offer{{Price: 3}},
		}, nil),
	}
	results, err := GroupHits(hits, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].OfferCount != 3 {
		t.Errorf("expected offerCount 3, got %d", results[0].OfferCount)
	}
}

func TestNextCursor_EmittedOnlyWhenFullPage(t *testing.T) {
	hits := []engine.Hit{
		mustHit(t, 5.0, domaincatalog.VariantDocument{VariantID: "v1", ProductID: "p1"}, []any{5.0, "p1"}),
	}
	if cursor := NextCursor(hits, 2); cursor != "" {
		t.Errorf("expected no cursor when hits < limit, got %q", cursor)
	}
	if cursor := NextCursor(hits, 1); cursor == "" {
		t.Error("expected a cursor when hits == limit and sort is present")
	}
}

func TestNextCursor_EmptyWhenLastHitHasNoSort(t *testing.T) {
	hits := []engine.Hit{
		mustHit(t, 5.0, domaincatalog.VariantDocument{VariantID: "v1", ProductID: "p1"}, nil),
	}
	if cursor := NextCursor(hits, 1); cursor != "" {
		t.Errorf("expected no cursor when last hit has no sort values, got %q", cursor)
	}
}

func TestProductIDs_DedupesInFirstSeenOrder(t *testing.T) {
	hits := []engine.Hit{
		mustHit(t, 5.0, domaincatalog.VariantDocument{VariantID: "v1", ProductID: "p1"}, nil),
		mustHit(t, 4.0, domaincatalog.VariantDocument{VariantID: "v2", ProductID: "p2"}, nil),
		mustHit(t, 3.0, domaincatalog.VariantDocument{VariantID: "v3", ProductID: "p1"}, nil),
	}
	ids, err := ProductIDs(hits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "p1" || ids[1] != "p2" {
		t.Errorf("expected [p1 p2], got %v", ids)
	}
}

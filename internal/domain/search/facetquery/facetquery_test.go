package facetquery

import (
	"testing"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/filter"
)

func TestIsAllowed_KnownKeys(t *testing.T) {
	for key := range AllowedKeys {
		if !IsAllowed(key) {
			t.Errorf("expected %q to be allowed", key)
		}
	}
}

func TestIsAllowed_AttributesPrefix(t *testing.T) {
	if !IsAllowed("attributes.color") {
		t.Error("expected attributes.color to be allowed")
	}
	if IsAllowed("attributes.") {
		t.Error("expected bare attributes. prefix with no suffix to be rejected")
	}
	if IsAllowed("unknownField") {
		t.Error("expected unknown field to be rejected")
	}
}

func TestNew_DropsUnknownKeysButKeepsValid(t *testing.T) {
	q, err := New("shoes", "", "", filter.PriceRange{}, nil, []string{"brand", "totallyUnknown"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.FacetKeys()) != 1 || q.FacetKeys()[0] != "brand" {
		t.Errorf("expected only brand to survive, got %v", q.FacetKeys())
	}
	if len(q.Dropped()) != 1 || q.Dropped()[0] != "totallyUnknown" {
		t.Errorf("expected totallyUnknown to be reported as dropped, got %v", q.Dropped())
	}
}

func TestNew_AllKeysUnknownRejected(t *testing.T) {
	_, err := New("shoes", "", "", filter.PriceRange{}, nil, []string{"nope", "alsoNope"})
	if err == nil {
		t.Fatal("expected error when no facet keys survive the allow-list")
	}
}

func TestNew_EmptyTextRejected(t *testing.T) {
	_, err := New("", "", "", filter.PriceRange{}, nil, []string{"brand"})
	if err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestNew_EmptyFacetKeysRejected(t *testing.T) {
	_, err := New("shoes", "", "", filter.PriceRange{}, nil, nil)
	if err == nil {
		t.Fatal("expected error for no facet keys")
	}
}

func TestNew_DuplicateKeysDeduped(t *testing.T) {
	q, err := New("shoes", "", "", filter.PriceRange{}, nil, []string{"brand", "brand"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.FacetKeys()) != 1 {
		t.Errorf("expected duplicate facet key to be deduped, got %v", q.FacetKeys())
	}
}

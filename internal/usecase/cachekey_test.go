package usecase

import "testing"

func TestBuildCacheKey_SortsFieldsByKey(t *testing.T) {
	key := BuildCacheKey("search", map[string]any{"b": 1, "a": "x"})
	if key != `search:a="x"|b=1` {
		t.Errorf("unexpected key: %q", key)
	}
}

func TestBuildCacheKey_DeterministicAcrossMapOrder(t *testing.T) {
	k1 := BuildCacheKey("search", map[string]any{"q": "shoes", "limit": 20})
	k2 := BuildCacheKey("search", map[string]any{"limit": 20, "q": "shoes"})
	if k1 != k2 {
		t.Errorf("expected identical keys regardless of Go map iteration order: %q vs %q", k1, k2)
	}
}

func TestNormalizeBrand(t *testing.T) {
	if got := NormalizeBrand("  Nike  "); got != "nike" {
		t.Errorf("expected %q, got %q", "nike", got)
	}
}

func TestNormalizeAttributeValues(t *testing.T) {
	out := NormalizeAttributeValues(map[string][]string{"color": {"Red", " Blue "}})
	if out["color"][0] != "blue" || out["color"][1] != "red" {
		t.Errorf("unexpected normalized values: %v", out["color"])
	}
}

func TestNormalizeAttributeValues_EmptyInput(t *testing.T) {
	if NormalizeAttributeValues(nil) != nil {
		t.Error("expected nil passthrough for empty input")
	}
}

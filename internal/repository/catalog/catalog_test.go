package catalog

import (
	"context"
	"testing"
)

func TestVariantOptions_EmptyInput(t *testing.T) {
	s := &Store{}
	result, err := s.VariantOptions(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected empty map, got %v", result)
	}
}

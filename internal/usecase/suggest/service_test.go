package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"golang.org/x/time/rate"
)

type fakeEngine struct {
	responses []json.RawMessage
	errs      []error
	calls     int
}

func (f *fakeEngine) RawSearch(_ context.Context, _ map[string]any) (json.RawMessage, error) {
	i := f.calls
	f.calls++
	var resp json.RawMessage
	var err error
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return resp, err
}

func TestSuggest_CombinesPhraseAndAggregationResults(t *testing.T) {
	eng := &fakeEngine{
		responses: []json.RawMessage{
			json.RawMessage(`{"suggest":{"didYouMean":[{"options":[{"text":"running shoes"}]}]}}`),
			json.RawMessage(`{"aggregations":{"brand":{"buckets":[{"key":"nike","doc_count":5}]},"categoryName":{"buckets":[{"key":"Footwear","doc_count":9}]}}}`),
		},
	}
	svc := New(eng)

	suggestions := svc.Suggest(context.Background(), "runing shoe")
	if len(suggestions) == 0 {
		t.Fatal("expected at least one suggestion")
	}

	var terms []string
	for _, s := range suggestions {
		terms = append(terms, s.Term)
	}
	if terms[0] != "running shoes" {
		t.Errorf("expected phrase suggestion to come first, got %v", terms)
	}
}

func TestSuggest_TruncatesToFive(t *testing.T) {
	eng := &fakeEngine{
		responses: []json.RawMessage{
			json.RawMessage(`{"suggest":{"didYouMean":[{"options":[{"text":"a"},{"text":"b"},{"text":"c"}]}]}}`),
			json.RawMessage(`{"aggregations":{"brand":{"buckets":[{"key":"d","doc_count":1},{"key":"e","doc_count":1}]},"categoryName":{"buckets":[{"key":"f","doc_count":1},{"key":"g","doc_count":1}]}}}`),
		},
	}
	svc := New(eng)

	suggestions := svc.Suggest(context.Background(), "x")
	if len(suggestions) != 5 {
		t.Errorf("expected truncation to 5, got %d", len(suggestions))
	}
}

func TestSuggest_DedupesCaseInsensitive(t *testing.T) {
	eng := &fakeEngine{
		responses: []json.RawMessage{
			json.RawMessage(`{"suggest":{"didYouMean":[{"options":[{"text":"Nike"}]}]}}`),
			json.RawMessage(`{"aggregations":{"brand":{"buckets":[]},"categoryName":{"buckets":[{"key":"nike","doc_count":1}]}}}`),
		},
	}
	svc := New(eng)

	suggestions := svc.Suggest(context.Background(), "x")
	if len(suggestions) != 1 {
		t.Errorf("expected case-insensitive dedup to collapse to 1 suggestion, got %d: %+v", len(suggestions), suggestions)
	}
}

func TestSuggest_PhraseFailureFallsBackToAggregation(t *testing.T) {
	eng := &fakeEngine{
		errs: []error{errors.New("boom")},
		responses: []json.RawMessage{
			nil,
			json.RawMessage(`{"aggregations":{"brand":{"buckets":[{"key":"nike","doc_count":1}]},"categoryName":{"buckets":[]}}}`),
		},
	}
	svc := New(eng)

	suggestions := svc.Suggest(context.Background(), "shoe")
	if len(suggestions) != 1 {
		t.Fatalf("expected aggregation fallback to still produce a suggestion, got %d", len(suggestions))
	}
}

func TestSuggest_BothFailuresReturnEmptyNeverError(t *testing.T) {
	eng := &fakeEngine{errs: []error{errors.New("boom"), errors.New("boom again")}}
	svc := New(eng)

	suggestions := svc.Suggest(context.Background(), "shoe")
	if suggestions != nil {
		t.Errorf("expected nil suggestions on total failure, got %v", suggestions)
	}
}

func TestSuggest_RateLimitExceededSkipsEngineCalls(t *testing.T) {
	eng := &fakeEngine{
		responses: []json.RawMessage{
			json.RawMessage(`{"suggest":{"didYouMean":[{"options":[{"text":"running shoes"}]}]}}`),
			json.RawMessage(`{"aggregations":{"brand":{"buckets":[]},"categoryName":{"buckets":[]}}}`),
		},
	}
	svc := New(eng, WithRateLimit(rate.Limit(1), 1))

	first := svc.Suggest(context.Background(), "shoe")
	if len(first) == 0 {
		t.Fatal("expected the first call within burst to produce suggestions")
	}

	second := svc.Suggest(context.Background(), "shoe")
	if second != nil {
		t.Errorf("expected the second call to be rate limited, got %v", second)
	}
	if eng.calls != 2 {
		t.Errorf("expected rate-limited call to skip both engine calls, eng.calls=%d", eng.calls)
	}
}

func TestUnionTokens_MergesBrandIntoQueryTokens(t *testing.T) {
	got := unionTokens([]string{"running", "shoes"}, "Nike")
	if got != "running shoes nike" {
		t.Errorf("unexpected union: %q", got)
	}
}

func TestUnionTokens_SkipsDuplicateToken(t *testing.T) {
	got := unionTokens([]string{"nike", "shoes"}, "Nike")
	if got != "nike shoes" {
		t.Errorf("expected no duplicate brand token, got %q", got)
	}
}

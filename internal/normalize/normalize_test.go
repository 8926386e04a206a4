package normalize

import (
	"encoding/json"
	"testing"

	"shelfpull/internal/fetch"
)

func resultFromJSON(t *testing.T, productID, raw string) fetch.Result {
	t.Helper()
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("decode test JSON: %v", err)
	}
	return fetch.Result{ProductID: productID, Payload: payload}
}

const wellFormedProduct = `{
	"product": {
		"usItemId": "123",
		"name": "Cordless Drill",
		"brand": "Hyper Tough"
	},
	"reviews": {
		"topPositiveReview": {"text": "Great!", "rating": 5},
		"aspects": [{"name": "battery", "polarity": "neg"}]
	}
}`

func TestBatchWellFormedAndErrorMarker(t *testing.T) {
	t.Parallel()

	batch := []fetch.Result{
		resultFromJSON(t, "123", wellFormedProduct),
		{
			ProductID: "456",
			Failure:   &fetch.Failure{Kind: fetch.FailureRequest, Message: "connection refused"},
		},
	}

	tables := Batch(batch)
	if len(tables.Products) != 1 {
		t.Fatalf("expected one product, got %d", len(tables.Products))
	}
	if len(tables.Reviews) != 1 {
		t.Fatalf("expected one review, got %d", len(tables.Reviews))
	}
	if len(tables.Aspects) != 1 {
		t.Fatalf("expected one aspect, got %d", len(tables.Aspects))
	}
	if len(tables.Sponsored) != 0 {
		t.Fatalf("expected no sponsored links, got %d", len(tables.Sponsored))
	}

	if tables.Products[0].ProductID != "123" {
		t.Fatalf("unexpected product id: %q", tables.Products[0].ProductID)
	}
	if tables.Reviews[0].ProductID != "123" || tables.Aspects[0].ProductID != "123" {
		t.Fatalf("child rows must join to the product id")
	}
}

func TestBatchSkipsItemsWithoutProduct(t *testing.T) {
	t.Parallel()

	batch := []fetch.Result{
		resultFromJSON(t, "1", `{}`),
		resultFromJSON(t, "2", `{"product": {"name": "no id"}, "reviews": {"topPositiveReview": {"text": "hi"}}}`),
		resultFromJSON(t, "3", `{"_error": "non_json", "raw_text": "<html>"}`),
		resultFromJSON(t, "4", `42`),
	}

	tables := Batch(batch)
	if len(tables.Products)+len(tables.Reviews)+len(tables.Aspects)+len(tables.Sponsored) != 0 {
		t.Fatalf("expected zero rows in every table, got %+v", tables)
	}
}

func TestBatchDeduplicatesProductsFirstWins(t *testing.T) {
	t.Parallel()

	first := resultFromJSON(t, "123", `{"product": {"usItemId": "123", "name": "First"}}`)
	second := resultFromJSON(t, "123", `{"product": {"usItemId": "123", "name": "Second"}}`)
	other := resultFromJSON(t, "456", `{"product": {"itemId": "456", "name": "Other"}}`)

	tables := Batch([]fetch.Result{first, second, other})
	if len(tables.Products) != 2 {
		t.Fatalf("expected two unique products, got %d", len(tables.Products))
	}
	if tables.Products[0].Name != "First" {
		t.Fatalf("expected first occurrence to win, got %q", tables.Products[0].Name)
	}
	if tables.Products[1].ProductID != "456" {
		t.Fatalf("unexpected second product: %+v", tables.Products[1])
	}
}

func TestBatchDedupStableUnderRepetition(t *testing.T) {
	t.Parallel()

	batch := []fetch.Result{
		resultFromJSON(t, "123", wellFormedProduct),
		resultFromJSON(t, "456", `{"product": {"usItemId": "456"}}`),
	}

	once := Batch(batch)
	twice := Batch(append(append([]fetch.Result{}, batch...), batch...))

	if len(once.Products) != len(twice.Products) {
		t.Fatalf("dedup not stable: %d vs %d products", len(once.Products), len(twice.Products))
	}
	for i := range once.Products {
		if once.Products[i] != twice.Products[i] {
			t.Fatalf("product %d differs between runs: %+v vs %+v", i, once.Products[i], twice.Products[i])
		}
	}
}

func TestBatchToleratesAnyInputOrder(t *testing.T) {
	t.Parallel()

	a := resultFromJSON(t, "123", wellFormedProduct)
	b := resultFromJSON(t, "456", `{"product": {"usItemId": "456"}}`)

	forward := Batch([]fetch.Result{a, b})
	reverse := Batch([]fetch.Result{b, a})

	if len(forward.Products) != 2 || len(reverse.Products) != 2 {
		t.Fatalf("expected two products in both orders")
	}
	if len(forward.Reviews) != len(reverse.Reviews) || len(forward.Aspects) != len(reverse.Aspects) {
		t.Fatalf("child row counts must not depend on input order")
	}
}

func TestBatchSponsoredLinks(t *testing.T) {
	t.Parallel()

	tables := Batch([]fetch.Result{resultFromJSON(t, "123", `{
		"product": {"usItemId": "123"},
		"contentLayout": {"modules": [
			{"configs": {"ad": {"adContent": {
				"type": "SPONSORED_PRODUCTS",
				"data": {"products": [{"usItemId": "999", "name": "X"}]}
			}}}}
		]}
	}`)})

	if len(tables.Sponsored) != 1 {
		t.Fatalf("expected one sponsored link, got %d", len(tables.Sponsored))
	}
	l := tables.Sponsored[0]
	if l.MainProductID != "123" || l.SponsoredProductID != "999" || l.SponsoredName != "X" {
		t.Fatalf("unexpected sponsored link: %+v", l)
	}
}

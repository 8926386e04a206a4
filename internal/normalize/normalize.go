// Package normalize turns a batch of raw fetch results into the four flat
// export tables.
package normalize

import (
	"shelfpull/internal/extract"
	"shelfpull/internal/fetch"
)

// Tables holds the four independent row collections produced by one batch.
// Any of them may be empty; joins between them are by product id value only.
type Tables struct {
	Products  []extract.Product
	Reviews   []extract.Review
	Aspects   []extract.Aspect
	Sponsored []extract.SponsoredLink
}

// Batch normalizes raw fetch results in order. Items carrying a failure
// marker, items with no product-shaped object, and products without an id
// are dropped silently; the batch never fails as a whole. Products are
// deduplicated by product id, first occurrence wins.
func Batch(results []fetch.Result) Tables {
	var t Tables

	for _, item := range results {
		if item.Failure != nil {
			continue
		}

		payload := extract.ResolvePayload(item.Payload)
		block := extract.ExtractProduct(payload)
		if block == nil || block.Product.ProductID == "" {
			continue
		}

		pid := block.Product.ProductID
		t.Products = append(t.Products, block.Product)

		reviews, aspects := extract.ReviewsAndAspects(pid, block.Reviews)
		t.Reviews = append(t.Reviews, reviews...)
		t.Aspects = append(t.Aspects, aspects...)
		t.Sponsored = append(t.Sponsored, extract.SponsoredLinks(payload, pid)...)
	}

	t.Products = dedupeProducts(t.Products)
	return t
}

func dedupeProducts(products []extract.Product) []extract.Product {
	if len(products) < 2 {
		return products
	}
	seen := make(map[string]struct{}, len(products))
	deduped := products[:0]
	for _, p := range products {
		if _, dup := seen[p.ProductID]; dup {
			continue
		}
		seen[p.ProductID] = struct{}{}
		deduped = append(deduped, p)
	}
	return deduped
}

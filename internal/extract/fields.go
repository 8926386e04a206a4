package extract

// ProductBlock is the result of locating and flattening the product object:
// the normalized row plus the raw reviews sub-object, kept so the review and
// aspect extractors do not have to re-derive its location.
type ProductBlock struct {
	Product Product
	Reviews map[string]any
}

// ExtractProduct locates the product object inside a resolved payload and
// flattens it into a Product row. It returns nil when no product-shaped
// object exists at either known location; callers skip such items entirely.
//
// Callers must additionally drop results whose ProductID is empty, since
// child rows cannot be joined without one.
func ExtractProduct(payload map[string]any) *ProductBlock {
	product, ok := payload["product"].(map[string]any)
	if !ok {
		// Some page variants carry the item under pageMetadata instead,
		// without price data, which stays on the top-level product slot.
		itemCtx := digObject(payload, "pageMetadata", "pageContext", "itemContext")
		if itemCtx == nil {
			return nil
		}
		product = itemCtx
		if _, has := product["priceInfo"]; !has {
			var priceInfo any = map[string]any{}
			if container := digObject(payload, "product"); container != nil {
				if pi, found := container["priceInfo"]; found {
					priceInfo = pi
				}
			}
			product["priceInfo"] = priceInfo
		}
	}

	reviews := digObject(payload, "reviews")
	if reviews == nil {
		reviews = map[string]any{}
	}

	row := Product{
		ProductID: firstString(product,
			[]string{"usItemId"},
			[]string{"itemId"},
		),
		Name:  firstString(product, []string{"name"}),
		Brand: firstString(product, []string{"brand"}),
		Category: firstString(product,
			[]string{"categoryPath"},
			[]string{"category", "categoryPathId"},
		),
		Price:     firstNumber(product, []string{"priceInfo", "currentPrice", "price"}),
		UnitPrice: firstString(product, []string{"priceInfo", "unitPrice", "priceString"}),
		AvgRating: firstNumber(reviews,
			[]string{"averageOverallRating"},
			[]string{"averageRating"},
		),
		ReviewCount: firstNumber(reviews,
			[]string{"totalReviewCount"},
			[]string{"numberOfReviews"},
		),
		Availability: firstString(product, []string{"availabilityStatus"}),
	}

	return &ProductBlock{Product: row, Reviews: reviews}
}

package extract

// ReviewsAndAspects flattens the raw reviews sub-object into at most two top
// review rows (one per sentiment slot) and zero or more aspect rows. A slot
// without text emits nothing; that is expected, not an error.
func ReviewsAndAspects(productID string, reviews map[string]any) ([]Review, []Aspect) {
	var reviewRows []Review
	var aspectRows []Aspect

	if row, ok := topReview(productID, digObject(reviews, "topPositiveReview"), true); ok {
		reviewRows = append(reviewRows, row)
	}
	if row, ok := topReview(productID, digObject(reviews, "topNegativeReview"), false); ok {
		reviewRows = append(reviewRows, row)
	}

	for _, entry := range digList(reviews, "aspects") {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		aspectRows = append(aspectRows, Aspect{
			ProductID: productID,
			Aspect: firstString(obj,
				[]string{"name"},
				[]string{"aspect"},
			),
			Polarity: firstString(obj,
				[]string{"polarity"},
				[]string{"sentiment"},
			),
			Weight: aspectWeight(obj),
			Source: AspectSource,
		})
	}

	return reviewRows, aspectRows
}

func topReview(productID string, slot map[string]any, positive bool) (Review, bool) {
	if slot == nil {
		return Review{}, false
	}

	text := firstString(slot,
		[]string{"text"},
		[]string{"reviewText"},
		[]string{"content"},
	)
	if text == "" {
		return Review{}, false
	}

	row := Review{
		ReviewID: firstString(slot,
			[]string{"id"},
			[]string{"reviewId"},
		),
		ProductID: productID,
		Rating:    firstNumber(slot, []string{"rating"}),
		Text:      text,
		Sentiment: SentimentNegative,
		IsTopNeg:  1,
	}
	if positive {
		row.Sentiment = SentimentPositive
		row.IsTopPos = 1
		row.IsTopNeg = 0
	}
	return row, true
}

func aspectWeight(obj map[string]any) float64 {
	if w := firstNumber(obj, []string{"count"}, []string{"score"}); w != nil {
		return *w
	}
	return 1
}

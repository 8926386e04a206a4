package extract

// Product is one exported row per unique product id. ProductID is the join
// key for all child rows; a product without one is dropped before export.
type Product struct {
	ProductID    string
	Name         string
	Brand        string
	Category     string
	Price        *float64
	UnitPrice    string
	AvgRating    *float64
	ReviewCount  *float64
	Availability string
}

// Review is a highlighted top review. At most two are emitted per product,
// one positive and one negative, and only when review text is present.
type Review struct {
	ReviewID  string
	ProductID string
	Rating    *float64
	Text      string
	Sentiment string
	IsTopPos  int
	IsTopNeg  int
}

// Aspect is one aggregated review-sentiment attribute (e.g. "battery": neg).
type Aspect struct {
	ProductID string
	Aspect    string
	Polarity  string
	Weight    float64
	Source    string
}

// SponsoredLink records a sponsored product surfaced on another product's
// page, directed from the hosting page to the advertised product.
type SponsoredLink struct {
	MainProductID      string
	SponsoredProductID string
	SponsoredName      string
	SponsoredBrand     string
}

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"

	// AspectSource tags where aspect rows were derived from.
	AspectSource = "reviews.aspects"
)

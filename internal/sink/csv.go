// Package sink serializes normalized export tables to delimited files.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"shelfpull/internal/extract"
	"shelfpull/internal/normalize"
)

// Output file names, fixed by the export contract.
const (
	ProductsFile  = "products.csv"
	ReviewsFile   = "reviews.csv"
	AspectsFile   = "aspects.csv"
	SponsoredFile = "sponsored_links.csv"
)

// utf8BOM is prepended to every file so spreadsheet tools pick up UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer persists export tables into a single output directory.
type Writer struct {
	dir    string
	logger zerolog.Logger
}

func NewWriter(dir string, logger zerolog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// WriteAll writes one CSV per non-empty table, creating the output directory
// if needed. Empty tables are skipped entirely: files from prior runs are
// left untouched and absence of a file is a valid outcome.
func (w *Writer) WriteAll(t normalize.Tables) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", w.dir, err)
	}

	if err := w.writeTable(ProductsFile, productHeader, len(t.Products), func(emit func([]string)) {
		for _, p := range t.Products {
			emit(productRecord(p))
		}
	}); err != nil {
		return err
	}

	if err := w.writeTable(ReviewsFile, reviewHeader, len(t.Reviews), func(emit func([]string)) {
		for _, r := range t.Reviews {
			emit(reviewRecord(r))
		}
	}); err != nil {
		return err
	}

	if err := w.writeTable(AspectsFile, aspectHeader, len(t.Aspects), func(emit func([]string)) {
		for _, a := range t.Aspects {
			emit(aspectRecord(a))
		}
	}); err != nil {
		return err
	}

	return w.writeTable(SponsoredFile, sponsoredHeader, len(t.Sponsored), func(emit func([]string)) {
		for _, s := range t.Sponsored {
			emit(sponsoredRecord(s))
		}
	})
}

func (w *Writer) writeTable(name string, header []string, rows int, fill func(emit func([]string))) error {
	if rows == 0 {
		w.logger.Info().Str("file", name).Msg("table empty, skipping")
		return nil
	}

	path := filepath.Join(w.dir, name)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if _, err := file.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM to %s: %w", path, err)
	}

	cw := csv.NewWriter(file)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header to %s: %w", path, err)
	}

	var writeErr error
	fill(func(record []string) {
		if writeErr == nil {
			writeErr = cw.Write(record)
		}
	})
	if writeErr != nil {
		return fmt.Errorf("write rows to %s: %w", path, writeErr)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	w.logger.Info().Str("file", name).Int("rows", rows).Msg("table written")
	return nil
}

var (
	productHeader = []string{
		"product_id", "name", "brand", "category", "price",
		"unit_price", "avg_rating", "review_count", "availability_status",
	}
	reviewHeader = []string{
		"review_id", "product_id", "rating", "review_text",
		"sentiment", "is_top_pos", "is_top_neg",
	}
	aspectHeader    = []string{"product_id", "aspect", "polarity", "weight", "source"}
	sponsoredHeader = []string{"main_product_id", "sponsored_product_id", "sponsored_name", "sponsored_brand"}
)

func productRecord(p extract.Product) []string {
	return []string{
		p.ProductID, p.Name, p.Brand, p.Category,
		formatOptNumber(p.Price), p.UnitPrice,
		formatOptNumber(p.AvgRating), formatOptNumber(p.ReviewCount),
		p.Availability,
	}
}

func reviewRecord(r extract.Review) []string {
	return []string{
		r.ReviewID, r.ProductID, formatOptNumber(r.Rating), r.Text,
		r.Sentiment, strconv.Itoa(r.IsTopPos), strconv.Itoa(r.IsTopNeg),
	}
}

func aspectRecord(a extract.Aspect) []string {
	return []string{a.ProductID, a.Aspect, a.Polarity, formatNumber(a.Weight), a.Source}
}

func sponsoredRecord(s extract.SponsoredLink) []string {
	return []string{s.MainProductID, s.SponsoredProductID, s.SponsoredName, s.SponsoredBrand}
}

func formatOptNumber(n *float64) string {
	if n == nil {
		return ""
	}
	return formatNumber(*n)
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

package sink

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"shelfpull/internal/extract"
	"shelfpull/internal/normalize"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestWriteAllProducesBOMPrefixedCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer := NewWriter(dir, zerolog.Nop())

	tables := normalize.Tables{
		Products: []extract.Product{{
			ProductID:    "123",
			Name:         "Cordless Drill",
			Brand:        "Hyper Tough",
			Price:        floatPtr(24.98),
			AvgRating:    floatPtr(4.5),
			ReviewCount:  floatPtr(321),
			Availability: "IN_STOCK",
		}},
	}

	if err := writer.WriteAll(tables); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, ProductsFile))
	if err != nil {
		t.Fatalf("read products file: %v", err)
	}
	if !bytes.HasPrefix(raw, utf8BOM) {
		t.Fatalf("expected UTF-8 BOM prefix, got % x", raw[:3])
	}

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d records", len(records))
	}
	if records[0][0] != "product_id" || records[0][8] != "availability_status" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	row := records[1]
	if row[0] != "123" || row[1] != "Cordless Drill" || row[4] != "24.98" {
		t.Fatalf("unexpected row: %v", row)
	}
	if row[7] != "321" {
		t.Fatalf("integral review count must not carry a decimal point, got %q", row[7])
	}
	if row[5] != "" {
		t.Fatalf("absent unit price must serialize as empty cell, got %q", row[5])
	}
}

func TestWriteAllSkipsEmptyTables(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer := NewWriter(dir, zerolog.Nop())

	tables := normalize.Tables{
		Reviews: []extract.Review{{
			ReviewID:  "r-1",
			ProductID: "123",
			Rating:    floatPtr(5),
			Text:      "Great!",
			Sentiment: extract.SentimentPositive,
			IsTopPos:  1,
		}},
	}

	if err := writer.WriteAll(tables); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ReviewsFile)); err != nil {
		t.Fatalf("expected reviews file: %v", err)
	}
	for _, name := range []string{ProductsFile, AspectsFile, SponsoredFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be absent, stat err: %v", name, err)
		}
	}
}

func TestWriteAllLeavesPriorFilesUntouched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	prior := filepath.Join(dir, AspectsFile)
	if err := os.WriteFile(prior, []byte("from a previous run"), 0o644); err != nil {
		t.Fatalf("seed prior file: %v", err)
	}

	writer := NewWriter(dir, zerolog.Nop())
	if err := writer.WriteAll(normalize.Tables{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(prior)
	if err != nil {
		t.Fatalf("read prior file: %v", err)
	}
	if string(raw) != "from a previous run" {
		t.Fatalf("empty table must not clear prior output, got %q", raw)
	}
}

func TestWriteAllCreatesNestedOutputDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "out")
	writer := NewWriter(dir, zerolog.Nop())

	tables := normalize.Tables{
		Sponsored: []extract.SponsoredLink{{
			MainProductID:      "123",
			SponsoredProductID: "999",
			SponsoredName:      "X",
		}},
	}
	if err := writer.WriteAll(tables); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, SponsoredFile)); err != nil {
		t.Fatalf("expected sponsored links file in nested dir: %v", err)
	}
}

func TestAspectRecordWeightFormatting(t *testing.T) {
	t.Parallel()

	rec := aspectRecord(extract.Aspect{
		ProductID: "123",
		Aspect:    "battery",
		Polarity:  "neg",
		Weight:    1,
		Source:    extract.AspectSource,
	})
	if rec[3] != "1" {
		t.Fatalf("default weight must serialize as 1, got %q", rec[3])
	}

	rec = aspectRecord(extract.Aspect{Weight: 0.8})
	if rec[3] != "0.8" {
		t.Fatalf("fractional weight mis-serialized: %q", rec[3])
	}
}

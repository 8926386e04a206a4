// Package fetch pulls raw product payloads from the upstream product-data
// endpoint. Transport and decode problems are captured as structured failure
// markers on the result itself rather than raised, so a bad identifier never
// takes down the batch.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidProductID rejects identifiers before any request is issued.
var ErrInvalidProductID = errors.New("product id must contain only digits")

// Failure kinds recorded on a Result.
const (
	FailureRequest = "request_failed"
	FailureNonJSON = "non_json"
)

// maxRawTextLen caps how much of a non-JSON body is kept for diagnostics.
const maxRawTextLen = 1000

// Failure describes why a fetch produced no usable payload.
type Failure struct {
	Kind    string
	Message string
	RawText string
}

// Result pairs an identifier with either a decoded JSON payload or a Failure.
// Exactly one of Payload and Failure is meaningful.
type Result struct {
	ProductID string
	Payload   any
	Failure   *Failure
}

// Fetcher issues one GET per product id through a bounded worker pool.
type Fetcher struct {
	baseURL string
	client  *http.Client
	workers int
	logger  zerolog.Logger
}

func New(baseURL string, workers int, timeout time.Duration, logger zerolog.Logger) *Fetcher {
	if workers < 1 {
		workers = 1
	}
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		workers: workers,
		logger:  logger,
	}
}

// FetchOne fetches a single product payload. The only error it returns is
// identifier validation failure; everything that goes wrong after dispatch is
// reported inside the Result.
func (f *Fetcher) FetchOne(ctx context.Context, productID string) (Result, error) {
	if !isNumericID(productID) {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidProductID, productID)
	}

	url := f.baseURL + "/" + productID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return requestFailed(productID, err), nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return requestFailed(productID, err), nil
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return requestFailed(productID, err), nil
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return requestFailed(productID, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)), nil
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{
			ProductID: productID,
			Failure: &Failure{
				Kind:    FailureNonJSON,
				RawText: truncateRunes(string(body), maxRawTextLen),
			},
		}, nil
	}

	return Result{ProductID: productID, Payload: payload}, nil
}

// FetchAll fetches every identifier concurrently, bounded by the worker
// count. Results arrive in completion order; callers must not assume the
// output order matches the input order. Identifiers that fail validation are
// logged and omitted entirely.
func (f *Fetcher) FetchAll(ctx context.Context, productIDs []string) []Result {
	jobs := make(chan string)
	out := make(chan Result)

	workers := f.workers
	if len(productIDs) < workers {
		workers = len(productIDs)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				res, err := f.FetchOne(ctx, id)
				if err != nil {
					f.logger.Error().Err(err).Str("product_id", id).Msg("fetch rejected")
					continue
				}
				if res.Failure != nil {
					f.logger.Warn().
						Str("product_id", id).
						Str("failure", res.Failure.Kind).
						Str("message", res.Failure.Message).
						Msg("fetch returned error marker")
				} else {
					f.logger.Info().Str("product_id", id).Msg("fetched product payload")
				}
				out <- res
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range productIDs {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]Result, 0, len(productIDs))
	for res := range out {
		results = append(results, res)
	}
	return results
}

func requestFailed(productID string, cause error) Result {
	return Result{
		ProductID: productID,
		Failure: &Failure{
			Kind:    FailureRequest,
			Message: cause.Error(),
		},
	}
}

func isNumericID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

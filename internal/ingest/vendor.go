// Package ingest fetches one trading day's raw breadth inputs from three
// upstream vendors and assembles them into a bmi.FeatureInputs. It owns
// all I/O, circuit-breaker and rate-limit concerns so the bmi package
// can stay a pure function of its arguments. Failed requests are not
// retried.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// VendorClient fetches one vendor's slice of a trading day's breadth
// inputs. Implementations never error out the whole day on a single
// field being absent upstream — a missing field simply stays nil on the
// returned partial, which bmi.ComputeFeatures treats as absence.
type VendorClient interface {
	Name() string
	FetchDay(ctx context.Context, date time.Time) (VendorPartial, error)
}

// VendorPartial holds whichever fields a single vendor contributes.
// Aggregator merges partials from all configured vendors into one
// bmi.FeatureInputs; fields left nil here are simply absent in the
// merged result.
type VendorPartial struct {
	VAdv *float64
	VDec *float64

	NAdv *int64
	NDec *int64

	PctMA50  *float64
	PctMA200 *float64

	RelVol         []float64
	RelVolQ90      []float64
	UniverseMedian *float64
}

// httpVendorClient is the shared transport for the three vendors below.
// Each vendor only differs in base URL, query shape and response
// decoding — the rate-limit/request/logging plumbing is identical. Each
// call makes a single request; there is no retry or backoff.
type httpVendorClient struct {
	name    string
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *Limiter
}

func newHTTPVendorClient(name, baseURL, apiKey string, limiter *Limiter) httpVendorClient {
	return httpVendorClient{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: limiter,
	}
}

func (c *httpVendorClient) getJSON(ctx context.Context, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limiter: %w", c.name, err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.name, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Warn().Str("vendor", c.name).Int("status", resp.StatusCode).Bytes("body", body).Msg("vendor request failed")
		return fmt.Errorf("%s: status %d", c.name, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.name, err)
	}
	return nil
}

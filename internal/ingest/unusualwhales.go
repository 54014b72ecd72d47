package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/aurora-bmi/aurorabmi/internal/bmi"
)

// UnusualWhalesClient fetches per-stock relative-volume readings and
// their per-stock 90th-percentile thresholds, the raw inputs to IPO.
type UnusualWhalesClient struct {
	httpVendorClient
}

// NewUnusualWhalesClient builds an UnusualWhales vendor client.
func NewUnusualWhalesClient(baseURL, apiKey string, limiter *Limiter) *UnusualWhalesClient {
	return &UnusualWhalesClient{httpVendorClient: newHTTPVendorClient("unusualwhales", baseURL, apiKey, limiter)}
}

func (c *UnusualWhalesClient) Name() string { return "unusualwhales" }

type unusualWhalesRelVolResponse struct {
	Symbols []struct {
		RelVol    float64  `json:"rel_vol"`
		RelVolQ90 *float64 `json:"rel_vol_q90"`
	} `json:"symbols"`
	UniverseMedian *float64 `json:"universe_median"`
}

// FetchDay retrieves one day's per-stock relative-volume readings
// across the tracked universe. When at least one symbol carries its own
// Q90, a symbol missing it gets the fixed bmi.IPOFallbackThresh (2.0) at
// its index, so the fallback applies to that stock only.
func (c *UnusualWhalesClient) FetchDay(ctx context.Context, date time.Time) (VendorPartial, error) {
	var resp unusualWhalesRelVolResponse
	path := fmt.Sprintf("/v2/relative-volume?date=%s", date.Format("2006-01-02"))
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return VendorPartial{}, err
	}

	relVol := make([]float64, len(resp.Symbols))
	var relVolQ90 []float64
	haveQ90 := false
	for i, s := range resp.Symbols {
		relVol[i] = s.RelVol
		if s.RelVolQ90 != nil {
			haveQ90 = true
		}
	}
	if haveQ90 {
		relVolQ90 = make([]float64, len(resp.Symbols))
		for i, s := range resp.Symbols {
			if s.RelVolQ90 != nil {
				relVolQ90[i] = *s.RelVolQ90
			} else {
				relVolQ90[i] = bmi.IPOFallbackThresh
			}
		}
	}

	return VendorPartial{
		RelVol:         relVol,
		RelVolQ90:      relVolQ90,
		UniverseMedian: resp.UniverseMedian,
	}, nil
}

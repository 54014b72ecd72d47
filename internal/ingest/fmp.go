package ingest

import (
	"context"
	"fmt"
	"time"
)

// FMPClient fetches exchange-wide advance/decline volume and issue
// counts from Financial Modeling Prep. It is the sole source of VPB and
// IPB's raw inputs.
type FMPClient struct {
	httpVendorClient
}

// NewFMPClient builds an FMP vendor client.
func NewFMPClient(baseURL, apiKey string, limiter *Limiter) *FMPClient {
	return &FMPClient{httpVendorClient: newHTTPVendorClient("fmp", baseURL, apiKey, limiter)}
}

func (c *FMPClient) Name() string { return "fmp" }

type fmpMarketBreadthResponse struct {
	AdvancingVolume float64 `json:"advancingVolume"`
	DecliningVolume float64 `json:"decliningVolume"`
	AdvancingIssues int64   `json:"advancingIssues"`
	DecliningIssues int64   `json:"decliningIssues"`
}

// FetchDay retrieves one day's exchange-wide advance/decline breadth.
func (c *FMPClient) FetchDay(ctx context.Context, date time.Time) (VendorPartial, error) {
	var resp fmpMarketBreadthResponse
	path := fmt.Sprintf("/v4/market-breadth?date=%s", date.Format("2006-01-02"))
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return VendorPartial{}, err
	}

	return VendorPartial{
		VAdv: &resp.AdvancingVolume,
		VDec: &resp.DecliningVolume,
		NAdv: &resp.AdvancingIssues,
		NDec: &resp.DecliningIssues,
	}, nil
}

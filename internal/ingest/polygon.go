package ingest

import (
	"context"
	"fmt"
	"time"
)

// PolygonClient fetches cross-sectional percent-above-moving-average
// breadth from Polygon.io, the sole source of SBC's raw inputs.
type PolygonClient struct {
	httpVendorClient
}

// NewPolygonClient builds a Polygon vendor client.
func NewPolygonClient(baseURL, apiKey string, limiter *Limiter) *PolygonClient {
	return &PolygonClient{httpVendorClient: newHTTPVendorClient("polygon", baseURL, apiKey, limiter)}
}

func (c *PolygonClient) Name() string { return "polygon" }

type polygonBreadthResponse struct {
	PctAboveMA50  *float64 `json:"pct_above_ma50"`
	PctAboveMA200 *float64 `json:"pct_above_ma200"`
}

// FetchDay retrieves one day's structural breadth confirmation inputs.
// Either field may come back null on a vendor outage — that degraded
// mode is handled by bmi.ComputeFeatures, not here.
func (c *PolygonClient) FetchDay(ctx context.Context, date time.Time) (VendorPartial, error) {
	var resp polygonBreadthResponse
	path := fmt.Sprintf("/v1/indicators/breadth/ma-crossover?date=%s", date.Format("2006-01-02"))
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return VendorPartial{}, err
	}

	return VendorPartial{
		PctMA50:  resp.PctAboveMA50,
		PctMA200: resp.PctAboveMA200,
	}, nil
}

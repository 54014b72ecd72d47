package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/aurora-bmi/aurorabmi/internal/bmi"
)

// guardedClient pairs a VendorClient with its own circuit breaker, so a
// single failing vendor degrades independently of the other two.
type guardedClient struct {
	client  VendorClient
	breaker *gobreaker.CircuitBreaker
}

// Aggregator fans a day's fetch out to every configured vendor
// concurrently and assembles the results into a bmi.FeatureInputs. A
// vendor failure (request error or open circuit) never fails the whole
// day — it just leaves that vendor's fields absent, which the core
// treats as a normal exclusion rather than an error.
type Aggregator struct {
	clients []guardedClient
}

// NewAggregator builds an aggregator over the given vendor clients, each
// wrapped in its own circuit breaker.
func NewAggregator(clients []VendorClient, failureThreshold uint32, breakerTimeout time.Duration) *Aggregator {
	guarded := make([]guardedClient, len(clients))
	for i, c := range clients {
		guarded[i] = guardedClient{client: c, breaker: NewBreaker(c.Name(), failureThreshold, breakerTimeout)}
	}
	return &Aggregator{clients: guarded}
}

// FetchDay fetches from every vendor concurrently and merges the
// partials it gets back. inputs.Date is always set on the result even
// if every vendor fails.
func (a *Aggregator) FetchDay(ctx context.Context, date time.Time) bmi.FeatureInputs {
	partials := make([]VendorPartial, len(a.clients))

	g, ctx := errgroup.WithContext(ctx)
	for i, gc := range a.clients {
		i, gc := i, gc
		g.Go(func() error {
			result, err := gc.breaker.Execute(func() (interface{}, error) {
				return gc.client.FetchDay(ctx, date)
			})
			if err != nil {
				log.Warn().Str("vendor", gc.client.Name()).Time("date", date).Err(err).Msg("vendor fetch failed, fields will be absent")
				return nil
			}
			partials[i] = result.(VendorPartial)
			return nil
		})
	}
	// errgroup.Wait's error is always nil here: every goroutine swallows
	// its own vendor error into a log line rather than failing the group.
	_ = g.Wait()

	inputs := bmi.FeatureInputs{Date: date}
	for _, p := range partials {
		mergePartial(&inputs, p)
	}
	return inputs
}

func mergePartial(inputs *bmi.FeatureInputs, p VendorPartial) {
	if p.VAdv != nil {
		inputs.VAdv = p.VAdv
	}
	if p.VDec != nil {
		inputs.VDec = p.VDec
	}
	if p.NAdv != nil {
		inputs.NAdv = p.NAdv
	}
	if p.NDec != nil {
		inputs.NDec = p.NDec
	}
	if p.PctMA50 != nil {
		inputs.PctMA50 = p.PctMA50
	}
	if p.PctMA200 != nil {
		inputs.PctMA200 = p.PctMA200
	}
	if len(p.RelVol) > 0 {
		inputs.RelVol = p.RelVol
	}
	if len(p.RelVolQ90) > 0 {
		inputs.RelVolQ90 = p.RelVolQ90
	}
	if p.UniverseMedian != nil {
		inputs.UniverseMedian = p.UniverseMedian
	}
}

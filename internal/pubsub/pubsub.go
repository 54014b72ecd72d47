// Package pubsub broadcasts each day's BMIResult over a Redis Pub/Sub
// channel so the dashboard's websocket hub can relay it to connected
// clients without polling the history store. Publishing is best-effort:
// a broker outage degrades to "no live update," never a failed run.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/aurora-bmi/aurorabmi/internal/bmi"
)

// Channel is the single channel every aurorabmi process publishes to
// and the websocket hub subscribes to.
const Channel = "aurora:bmi:live"

// Publisher publishes BMIResult updates to Channel.
type Publisher struct {
	client *redis.Client
}

// NewPublisher wraps an existing go-redis v9 client.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Dial connects to addr and verifies reachability with a PING.
func Dial(ctx context.Context, addr string) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("pubsub redis connection failed: %w", err)
	}
	return NewPublisher(client), nil
}

// Publish broadcasts one day's result. A publish failure is logged and
// swallowed — a missed live update never fails the run that produced it.
func (p *Publisher) Publish(ctx context.Context, result bmi.BMIResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Time("date", result.Date).Msg("marshal bmi result for publish")
		return
	}
	if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		log.Warn().Err(err).Time("date", result.Date).Msg("publish bmi result")
	}
}

// Close releases the underlying connection pool.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Subscriber receives BMIResult updates from Channel.
type Subscriber struct {
	pubsub *redis.PubSub
}

// NewSubscriber subscribes to Channel on an existing client.
func NewSubscriber(ctx context.Context, client *redis.Client) *Subscriber {
	return &Subscriber{pubsub: client.Subscribe(ctx, Channel)}
}

// Next blocks until the next published BMIResult arrives, the context
// is cancelled, or the message fails to decode (in which case it is
// skipped and the next message is awaited).
func (s *Subscriber) Next(ctx context.Context) (bmi.BMIResult, error) {
	for {
		msg, err := s.pubsub.ReceiveMessage(ctx)
		if err != nil {
			return bmi.BMIResult{}, fmt.Errorf("receive bmi live message: %w", err)
		}
		var result bmi.BMIResult
		if err := json.Unmarshal([]byte(msg.Payload), &result); err != nil {
			log.Warn().Err(err).Msg("discarding malformed bmi live message")
			continue
		}
		return result, nil
	}
}

// Close unsubscribes and releases the connection.
func (s *Subscriber) Close() error {
	return s.pubsub.Close()
}

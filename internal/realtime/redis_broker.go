package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"realty_messaging/internal/metrics"
	"realty_messaging/pkg/logger"
)

const (
	publishTimeout = 2 * time.Second

	breakerFailures = 5
	breakerCooldown = 30 * time.Second

	resubscribeMin = 500 * time.Millisecond
	resubscribeMax = 30 * time.Second
)

// RedisBroker publishes events on a Redis channel so every instance's hub
// receives them. While Run holds a live subscription, local clients get
// events back through Redis. Otherwise Publish also delivers to the local
// hub directly.
//
// A circuit breaker guards the Redis publish. While it is open, events skip
// Redis and go straight to local clients instead of waiting out the timeout.
type RedisBroker struct {
	rdb        *redis.Client
	channel    string
	hub        *Hub
	breaker    *gobreaker.CircuitBreaker[struct{}]
	publish    func(ctx context.Context, frame []byte) error
	subscribed atomic.Bool
	log        logger.Logger
}

func NewRedisBroker(rdb *redis.Client, channel string, hub *Hub, log logger.Logger) *RedisBroker {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "realtime-redis-publish",
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Realtime publish breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	b := &RedisBroker{rdb: rdb, channel: channel, hub: hub, breaker: breaker, log: log}
	b.publish = func(ctx context.Context, frame []byte) error {
		return b.rdb.Publish(ctx, b.channel, frame).Err()
	}
	return b
}

// Subscribed reports whether Run currently holds a live subscription.
func (b *RedisBroker) Subscribed() bool {
	return b.subscribed.Load()
}

// BreakerState reports the publish breaker state ("closed", "open", "half-open").
func (b *RedisBroker) BreakerState() string {
	return b.breaker.State().String()
}

func (b *RedisBroker) Publish(room, event string, payload interface{}) {
	frame, err := encodeEnvelope(room, event, payload)
	if err != nil {
		b.log.Error("Failed to encode realtime event", "error", err, "event", event)
		return
	}
	metrics.RealtimePublished.WithLabelValues(event).Inc()

	_, err = b.breaker.Execute(func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		return struct{}{}, b.publish(ctx, frame)
	})
	if err != nil {
		// Same-instance subscribers still get the event.
		if !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
			b.log.Warn("Failed to publish realtime event to Redis, delivering locally", "error", err, "event", event)
		}
		b.hub.Deliver(room, frame)
		return
	}
	if !b.subscribed.Load() {
		b.hub.Deliver(room, frame)
	}
}

// Run relays frames from the Redis channel into the local hub until ctx ends.
// A lost or failed subscription is retried with exponential backoff.
func (b *RedisBroker) Run(ctx context.Context) error {
	backoff := resubscribeMin
	for {
		connected, err := b.subscribe(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = resubscribeMin
		}
		b.log.Warn("Realtime Redis subscription lost, retrying", "error", err, "channel", b.channel, "backoff", backoff)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, resubscribeMax)
	}
}

// subscribe holds one subscription until it fails or ctx ends. connected
// reports whether the subscription was ever confirmed.
func (b *RedisBroker) subscribe(ctx context.Context) (connected bool, err error) {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return false, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.subscribed.Store(true)
	defer b.subscribed.Store(false)
	b.log.Info("Realtime Redis fan-out subscribed", "channel", b.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return true, fmt.Errorf("redis subscription %s closed", b.channel)
			}
			b.relay(msg.Payload)
		}
	}
}

func (b *RedisBroker) relay(payload string) {
	room, err := frameRoom([]byte(payload))
	if err != nil {
		b.log.Warn("Dropping malformed realtime frame", "error", err)
		return
	}
	b.hub.Deliver(room, []byte(payload))
}

func frameRoom(frame []byte) (string, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return "", err
	}
	if env.Room == "" || env.Event == "" {
		return "", fmt.Errorf("frame missing room or event")
	}
	return env.Room, nil
}

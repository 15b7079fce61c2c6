package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"mwallet-gateway/internal/domain/model"
	"mwallet-gateway/internal/domain/ports/adapter"
)

var _ adapter.CallbackListener = (*EventPublisher)(nil)

// Publisher is the subset of RedisClient the event publisher needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) (int64, error)
}

// EventPublisher fans callback events out to Redis pub/sub, one channel per
// event type: <prefix>:callback_received, <prefix>:payment_succeeded, ...
type EventPublisher struct {
	pub    Publisher
	prefix string
	log    *zerolog.Logger
}

func NewEventPublisher(pub Publisher, prefix string, logger *zerolog.Logger) *EventPublisher {
	if prefix == "" {
		prefix = "jazzcash"
	}
	return &EventPublisher{pub: pub, prefix: prefix, log: logger}
}

// Channel returns the channel name for an event type.
func (p *EventPublisher) Channel(t model.CallbackEventType) string {
	return p.prefix + ":" + string(t)
}

func (p *EventPublisher) OnCallbackEvent(ctx context.Context, ev model.CallbackEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode callback event: %w", err)
	}
	ch := p.Channel(ev.Type)
	n, err := p.pub.Publish(ctx, ch, b)
	if err != nil {
		return fmt.Errorf("publish %s: %w", ch, err)
	}
	p.log.Debug().Str("channel", ch).Int64("subscribers", n).Msg("callback event published")
	return nil
}

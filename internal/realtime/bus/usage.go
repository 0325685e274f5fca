package bus

import (
	"context"
	"time"

	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
	"github.com/yungbote/neurobridge-coursegen/internal/realtime"
)

// UsagePublisher turns gateway usage events into usage_changed messages on
// realtime.UsageChannel.
type UsagePublisher struct {
	bus Bus
	log *logger.Logger
}

var _ gateway.UsageObserver = (*UsagePublisher)(nil)

func NewUsagePublisher(b Bus, log *logger.Logger) *UsagePublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &UsagePublisher{bus: b, log: log.With("service", "UsagePublisher")}
}

type usagePayload struct {
	Operation  string    `json:"operation"`
	Model      string    `json:"model,omitempty"`
	TokensUsed int       `json:"tokens_used"`
	Cost       float64   `json:"cost"`
	At         time.Time `json:"at"`
}

func (p *UsagePublisher) UsageChanged(ctx context.Context, ev gateway.UsageEvent) {
	if p == nil || p.bus == nil {
		return
	}
	msg := realtime.SSEMessage{
		Channel: realtime.UsageChannel,
		Event:   realtime.SSEEventUsageChanged,
		Data: usagePayload{
			Operation:  ev.Operation,
			Model:      ev.Model,
			TokensUsed: ev.TokensUsed,
			Cost:       ev.Cost,
			At:         ev.At.UTC(),
		},
	}
	if err := p.bus.Publish(ctx, msg); err != nil {
		p.log.Warn("usage_changed publish failed", "operation", ev.Operation, "error", err)
		return
	}
	p.log.Debug("usage_changed published", "operation", ev.Operation, "tokens", ev.TokensUsed)
}

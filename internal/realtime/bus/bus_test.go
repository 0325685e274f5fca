package bus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
	"github.com/yungbote/neurobridge-coursegen/internal/realtime"
)

func TestLocalBusForwardsToEveryHandler(t *testing.T) {
	b := NewLocalBus()
	var a, c []realtime.SSEMessage
	if err := b.StartForwarder(context.Background(), func(m realtime.SSEMessage) { a = append(a, m) }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	if err := b.StartForwarder(context.Background(), func(m realtime.SSEMessage) { c = append(c, m) }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	if err := b.Publish(context.Background(), realtime.SSEMessage{Channel: "x", Event: realtime.SSEEventCourseDone}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(a) != 1 || len(c) != 1 {
		t.Fatalf("deliveries: a=%d c=%d", len(a), len(c))
	}

	_ = b.Close()
	if err := b.Publish(context.Background(), realtime.SSEMessage{}); err == nil {
		t.Fatalf("expected error after close")
	}
}

func TestLocalBusRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewLocalBus().Publish(ctx, realtime.SSEMessage{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestNewRedisBusRequiresAddr(t *testing.T) {
	if _, err := NewRedisBus(logger.Nop(), RedisConfig{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
	if _, err := NewRedisBus(nil, RedisConfig{Addr: "localhost:6379"}); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}

func TestUsagePublisherEmitsUsageChanged(t *testing.T) {
	b := NewLocalBus()
	got := make(chan realtime.SSEMessage, 1)
	_ = b.StartForwarder(context.Background(), func(m realtime.SSEMessage) { got <- m })

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	NewUsagePublisher(b, nil).UsageChanged(context.Background(), gateway.UsageEvent{
		Operation: "generate-text", Model: "gpt-4o-mini", TokensUsed: 42, Cost: 0.002, At: at,
	})

	msg := <-got
	if msg.Channel != realtime.UsageChannel || msg.Event != realtime.SSEEventUsageChanged {
		t.Fatalf("unexpected message: %+v", msg)
	}
	raw, err := json.Marshal(msg.Data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"operation":"generate-text","model":"gpt-4o-mini","tokens_used":42,"cost":0.002,"at":"2026-03-01T12:00:00Z"}`
	if string(raw) != want {
		t.Fatalf("payload=%s\nwant=%s", raw, want)
	}
}

func TestUsagePublisherSwallowsPublishErrors(t *testing.T) {
	b := NewLocalBus()
	_ = b.Close()
	var obs gateway.UsageObserver = NewUsagePublisher(b, logger.Nop())
	obs.UsageChanged(context.Background(), gateway.UsageEvent{Operation: "generate-image"})
}

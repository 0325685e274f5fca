package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/neurobridge-coursegen/internal/content/textutil"
)

const notifyTimeout = 5 * time.Second

// UsageObserver is told when usage changed so a usage display can refresh.
// Implementations must be safe for concurrent use.
type UsageObserver interface {
	UsageChanged(ctx context.Context, ev UsageEvent)
}

// UsageObserverFunc adapts a function to UsageObserver.
type UsageObserverFunc func(ctx context.Context, ev UsageEvent)

func (f UsageObserverFunc) UsageChanged(ctx context.Context, ev UsageEvent) { f(ctx, ev) }

// Observers fans one event out to several observers in order. Nil entries
// are skipped.
type Observers []UsageObserver

func (o Observers) UsageChanged(ctx context.Context, ev UsageEvent) {
	for _, obs := range o {
		if obs != nil {
			obs.UsageChanged(ctx, ev)
		}
	}
}

// RequestObserver sees every logical call once it finished, retries
// included in dur.
type RequestObserver interface {
	ObserveGatewayRequest(op string, err error, dur time.Duration)
}

// notifyUsage is fire-and-forget: it runs detached from the caller's
// cancellation and a panicking observer is contained.
func (c *Client) notifyUsage(ctx context.Context, ev UsageEvent) {
	if c.observer == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = c.now().UTC()
	}
	obs := c.observer
	log := c.log
	base := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Usage observer panicked", "operation", ev.Operation, "panic", r)
			}
		}()
		nctx, cancel := context.WithTimeout(base, notifyTimeout)
		defer cancel()
		obs.UsageChanged(nctx, ev)
	}()
}

// LogGeneration records one generation with the usage-accounting endpoint.
// Errors are returned; usage logging is not best-effort.
func (c *Client) LogGeneration(ctx context.Context, rec GenerationRecord) error {
	if err := validateRecord(&rec, c.now()); err != nil {
		return err
	}
	return c.do(ctx, call{op: "log_generation", method: http.MethodPost, path: pathLogGeneration, body: rec})
}

func (c *Client) LogGenerationBatch(ctx context.Context, recs []GenerationRecord) error {
	if len(recs) == 0 {
		return nil
	}
	now := c.now()
	batch := make([]GenerationRecord, len(recs))
	for i := range recs {
		batch[i] = recs[i]
		if err := validateRecord(&batch[i], now); err != nil {
			return err
		}
	}
	return c.do(ctx, call{op: "log_generation_batch", method: http.MethodPost, path: pathLogGenerationBatch, body: logBatchRequest{Generations: batch}})
}

func validateRecord(rec *GenerationRecord, now time.Time) error {
	rec.GenerationType = strings.TrimSpace(rec.GenerationType)
	if rec.GenerationType == "" {
		return NewValidationError("Generation type is required.", "log-generation: empty generationType", errors.New("generationType required"))
	}
	rec.Prompt = textutil.Truncate(rec.Prompt, 2000)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now.UTC()
	}
	return nil
}

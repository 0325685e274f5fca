package gateway

import (
	"context"
	"net/http"
	"time"
)

const statusProbeTimeout = 15 * time.Second

type statusPayload struct {
	Available *bool `json:"available"`
	OpenAI    *struct {
		Available *bool `json:"available"`
	} `json:"openai"`
}

// Status is the backend capability probe result.
type Status struct {
	Available bool `json:"available"`
	// TextAvailable reflects the provider-level flag (openai.available).
	TextAvailable bool      `json:"textAvailable"`
	CheckedAt     time.Time `json:"checkedAt"`
}

// CanGenerate reports whether generation calls are worth issuing.
func (s Status) CanGenerate() bool { return s.Available && s.TextAvailable }

type statusCacheEntry struct {
	status     Status
	capturedAt time.Time
	ttl        time.Duration
}

func (e *statusCacheEntry) fresh(now time.Time) bool {
	return e != nil && now.Sub(e.capturedAt) < e.ttl
}

// Status returns the cached capability probe, refreshing it when older than
// the TTL or when forceRefresh is set. Concurrent refreshes share one
// request.
func (c *Client) Status(ctx context.Context, forceRefresh bool) (Status, error) {
	if !forceRefresh {
		c.statusMu.Lock()
		entry := c.statusEntry
		c.statusMu.Unlock()
		if entry.fresh(c.now()) {
			return entry.status, nil
		}
	}

	// The shared probe outlives any single caller; each waiter only gives
	// up on its own context.
	ch := c.statusGroup.DoChan("status", func() (any, error) {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusProbeTimeout)
		defer cancel()
		var data statusPayload
		// Single attempt: a probe that needs retries is itself the answer.
		if err := c.do(pctx, call{op: "status", method: http.MethodGet, path: pathStatus, out: &data, attempts: 1}); err != nil {
			return Status{}, err
		}
		now := c.now()
		st := Status{
			Available:     data.Available == nil || *data.Available,
			TextAvailable: data.OpenAI == nil || data.OpenAI.Available == nil || *data.OpenAI.Available,
			CheckedAt:     now,
		}
		c.statusMu.Lock()
		c.statusEntry = &statusCacheEntry{status: st, capturedAt: now, ttl: c.statusTTL}
		c.statusMu.Unlock()
		return st, nil
	})
	select {
	case <-ctx.Done():
		return Status{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Status{}, res.Err
		}
		return res.Val.(Status), nil
	}
}

// InvalidateStatus drops the cached probe.
func (c *Client) InvalidateStatus() {
	c.statusMu.Lock()
	c.statusEntry = nil
	c.statusMu.Unlock()
}

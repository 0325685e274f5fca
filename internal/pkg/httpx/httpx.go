package httpx

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// IsRetryableHTTPStatus reports whether a response status is worth another
// attempt. Only server-side failures qualify; 4xx are terminal.
func IsRetryableHTTPStatus(code int) bool {
	return code >= 500 && code <= 599
}

// IsTransportError reports whether err happened before any HTTP status was
// received. Caller cancellation is never a transport error.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) && sc.HTTPStatusCode() > 0 {
		return IsRetryableHTTPStatus(sc.HTTPStatusCode())
	}
	return IsTransportError(err)
}

// ExponentialDelay returns base * 2^attempt. attempt is the 1-based number
// of the attempt that just failed.
func ExponentialDelay(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 16 {
		attempt = 16
	}
	return base * time.Duration(1<<uint(attempt))
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

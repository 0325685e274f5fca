package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"
)

type statusErr int

func (s statusErr) Error() string       { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatusCode() int { return int(s) }

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"503", statusErr(503), true},
		{"500 wrapped", fmt.Errorf("call: %w", statusErr(500)), true},
		{"404", statusErr(404), false},
		{"429", statusErr(429), false},
		{"transport", &url.Error{Op: "Post", URL: "http://x", Err: errors.New("connection refused")}, true},
		{"canceled", context.Canceled, false},
		{"canceled inside url error", &url.Error{Op: "Post", URL: "http://x", Err: context.Canceled}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestExponentialDelay(t *testing.T) {
	if d := ExponentialDelay(1, time.Second); d != 2*time.Second {
		t.Fatalf("attempt 1: %s", d)
	}
	if d := ExponentialDelay(2, time.Second); d != 4*time.Second {
		t.Fatalf("attempt 2: %s", d)
	}
}

func TestSleepContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}

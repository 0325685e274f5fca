// Package gateway is the only network boundary of the generation pipeline.
// It wraps the authenticated AI proxy endpoints, owns retry/backoff, and
// translates failures into typed *Error values.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/neurobridge-coursegen/internal/pkg/httpx"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
)

const (
	pathGenerateText       = "/api/ai-proxy/generate-text"
	pathGenerateStructured = "/api/ai-proxy/generate-structured"
	pathGenerateImage      = "/api/ai-proxy/generate-image"
	pathCourseOutline      = "/api/ai-proxy/generate-course-outline"
	pathCourseBlueprint    = "/api/ai-proxy/generate-course-blueprint"
	pathStatus             = "/api/ai-proxy/status"
	pathLogGeneration      = "/api/ai-learning/log-generation"
	pathLogGenerationBatch = "/api/ai-learning/log-generation/batch"
)

const (
	defaultMaxAttempts = 3
	defaultStatusTTL   = 60 * time.Second
	defaultTimeout     = 120 * time.Second
	maxResponseBytes   = 8 << 20
)

type Options struct {
	BaseURL string

	// Token is sent as a bearer token. TokenSource, when set, wins; a token
	// attached with ContextWithToken wins over both.
	Token       string
	TokenSource TokenSource

	Timeout     time.Duration
	MaxAttempts int
	// BackoffBase scales the 2^attempt delay; defaults to one second.
	BackoffBase time.Duration
	StatusTTL   time.Duration

	HTTPClient    *http.Client
	Logger        *logger.Logger
	UsageObserver UsageObserver
	Requests      RequestObserver
	Tracer        trace.Tracer

	// Sleep and Now are test seams.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

type Client struct {
	baseURL     string
	token       string
	tokenSource TokenSource

	maxAttempts int
	backoffBase time.Duration
	statusTTL   time.Duration

	httpClient *http.Client
	log        *logger.Logger
	observer   UsageObserver
	requests   RequestObserver
	tracer     trace.Tracer

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time

	statusMu    sync.Mutex
	statusEntry *statusCacheEntry
	statusGroup singleflight.Group
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("gateway: baseURL required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	backoffBase := opts.BackoffBase
	if backoffBase <= 0 {
		backoffBase = time.Second
	}
	statusTTL := opts.StatusTTL
	if statusTTL <= 0 {
		statusTTL = defaultStatusTTL
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/yungbote/neurobridge-coursegen/internal/gateway")
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = httpx.SleepContext
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		baseURL:     baseURL,
		token:       strings.TrimSpace(opts.Token),
		tokenSource: opts.TokenSource,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		statusTTL:   statusTTL,
		httpClient:  hc,
		log:         log.With("service", "GatewayClient"),
		observer:    opts.UsageObserver,
		requests:    opts.Requests,
		tracer:      tracer,
		sleep:       sleep,
		now:         now,
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// call describes one logical backend request.
type call struct {
	op       string
	method   string
	path     string
	body     any
	out      any
	attempts int
}

// do runs a call with the retry policy: transport errors and 5xx are retried
// with a 2^attempt second backoff, everything else returns immediately.
func (c *Client) do(ctx context.Context, cl call) error {
	ctx, span := c.tracer.Start(ctx, "gateway."+cl.op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("gateway.path", cl.path))

	start := c.now()
	err := c.doAttempts(ctx, span, cl)
	if c.requests != nil {
		c.requests.ObserveGatewayRequest(cl.op, err, c.now().Sub(start))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) doAttempts(ctx context.Context, span trace.Span, cl call) error {
	token, err := c.resolveToken(ctx)
	if err != nil {
		return err
	}

	var payload []byte
	if cl.body != nil {
		payload, err = json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("gateway: encode %s request: %w", cl.op, err)
		}
	}

	attempts := cl.attempts
	if attempts <= 0 {
		attempts = c.maxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		span.SetAttributes(attribute.Int("gateway.attempts", attempt))

		status, raw, err := c.send(ctx, cl.method, cl.path, payload, token)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = &Error{Kind: KindNetwork, Message: msgNetwork, Detail: err.Error(), Err: err}
		} else {
			span.SetAttributes(attribute.Int("http.status_code", status))
			if status < 200 || status >= 300 {
				lastErr = parseHTTPError(status, raw)
			} else {
				return decodeEnvelope(cl.op, status, raw, cl.out)
			}
		}

		if !retryable(lastErr) || attempt == attempts {
			return lastErr
		}

		delay := httpx.ExponentialDelay(attempt, c.backoffBase)
		c.log.Warn("Gateway request retrying",
			"op", cl.op,
			"path", cl.path,
			"attempt", attempt,
			"max_attempts", attempts,
			"sleep", delay.String(),
			"error", errorDetail(lastErr),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return 0, nil, readErr
	}
	return resp.StatusCode, raw, nil
}

// decodeEnvelope treats success:false as a failure even on 2xx.
func decodeEnvelope(op string, status int, raw []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return NewValidationError("", fmt.Sprintf("%s: undecodable response: %s", op, clipBody(string(raw))), err)
	}
	if env.Success != nil && !*env.Success {
		msg, code := decodeErrorBody(raw)
		if msg == "" {
			msg = msgRequest
		}
		return &Error{Kind: KindRequest, Status: status, Code: code, Message: msg, Detail: clipBody(string(raw))}
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return NewValidationError("", fmt.Sprintf("%s: response has no data", op), nil)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return NewValidationError("", fmt.Sprintf("%s: data does not match contract: %s", op, clipBody(string(env.Data))), err)
	}
	return nil
}

func retryable(err error) bool {
	if e, ok := AsError(err); ok && e.Kind == KindNetwork {
		return true
	}
	return httpx.IsRetryableError(err)
}

func errorDetail(err error) string {
	if e, ok := AsError(err); ok && e.Detail != "" {
		return e.Detail
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

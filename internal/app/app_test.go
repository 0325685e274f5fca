package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/neurobridge-coursegen/internal/platform/config"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
	"github.com/yungbote/neurobridge-coursegen/internal/realtime"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		LogMode:        "development",
		GatewayBaseURL: baseURL,
		GatewayTimeout: 5 * time.Second,
		MaxAttempts:    1,
		StatusTTL:      time.Minute,
		Thumbnails:     true,
		HTTPAddr:       ":0",
		MetricsEnabled: true,
		ServiceName:    "coursegen-test",
		Version:        "test",
	}
}

func TestNewWiresRouterWithLocalBus(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	a, err := New(context.Background(), logger.Nop(), testConfig("http://gateway.invalid"))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	w := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthcheck status=%d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["version"] != "test" {
		t.Fatalf("version=%q", body["version"])
	}

	w = httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "cg_api_requests_total") {
		t.Fatalf("metrics status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestNewRejectsUnreachableRedis(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	cfg := testConfig("http://gateway.invalid")
	cfg.RedisAddr = "127.0.0.1:1"
	if _, err := New(context.Background(), logger.Nop(), cfg); err == nil {
		t.Fatalf("expected redis init error")
	}
}

func TestStartForwardsBusToHub(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	a, err := New(context.Background(), logger.Nop(), testConfig("http://gateway.invalid"))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	client := a.SSEHub.NewSSEClient()
	a.SSEHub.AddChannel(client, "run-1")
	defer a.SSEHub.CloseClient(client)

	msg := realtime.SSEMessage{Channel: "run-1", Event: realtime.SSEEventCourseProgress, Data: map[string]any{"stage": "skeleton"}}
	if err := a.Bus.Publish(ctx, msg); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case got := <-client.Outbound:
		if got.Event != realtime.SSEEventCourseProgress {
			t.Fatalf("event=%q", got.Event)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("message not forwarded to hub")
	}
}

func TestNewServicesWithoutInfra(t *testing.T) {
	s, err := NewServices(logger.Nop(), testConfig("http://gateway.invalid"), nil, nil)
	if err != nil {
		t.Fatalf("new services: %v", err)
	}
	if s.Gateway == nil || s.Blocks == nil || s.Lessons == nil || s.Courses == nil {
		t.Fatalf("services not fully wired: %+v", s)
	}
	if _, err := NewServices(logger.Nop(), testConfig(""), nil, nil); err == nil {
		t.Fatalf("expected gateway error for empty base url")
	}
}

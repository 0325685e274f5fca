package course

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
	"github.com/yungbote/neurobridge-coursegen/internal/realtime"
)

type Publisher interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
}

type RunObserver interface {
	ObserveCourse(outcome string, dur time.Duration)
}

// Service runs one orchestrator per request so each run can report progress
// on its own realtime channel.
type Service struct {
	deps Deps
	opts Options
	pub  Publisher
	obs  RunObserver
	log  *logger.Logger
}

func NewService(deps Deps, opts Options, pub Publisher, obs RunObserver) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Service{deps: deps, opts: opts, pub: pub, obs: obs, log: log.With("service", "CourseService")}
}

// RunOptions are per-request overrides. A nil Thumbnails keeps the service
// default.
type RunOptions struct {
	Channel    string
	Thumbnails *bool
}

type progressEvent struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

type doneEvent struct {
	Title    string `json:"title"`
	Fallback bool   `json:"fallback"`
	Blocks   int    `json:"blocks"`
}

type failedEvent struct {
	Error string `json:"error"`
}

func (s *Service) Generate(ctx context.Context, req Request, ro RunOptions) (*Document, error) {
	opts := s.opts
	if ro.Thumbnails != nil {
		opts.SkipThumbnails = !*ro.Thumbnails
	}
	channel := strings.TrimSpace(ro.Channel)
	if channel != "" && s.pub != nil {
		opts.Progress = func(stage string, pct int, msg string) {
			s.publish(ctx, channel, realtime.SSEEventCourseProgress, progressEvent{Stage: stage, Percent: pct, Message: msg})
		}
	}

	start := time.Now()
	doc, err := NewOrchestrator(s.deps, opts).Generate(ctx, req)
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "aborted"
		if channel != "" {
			s.publish(context.WithoutCancel(ctx), channel, realtime.SSEEventCourseFailed, failedEvent{Error: err.Error()})
		}
	case doc.Fallback:
		outcome = "fallback"
	}
	if s.obs != nil {
		s.obs.ObserveCourse(outcome, time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	if channel != "" {
		s.publish(ctx, channel, realtime.SSEEventCourseDone, doneEvent{
			Title:    doc.Title,
			Fallback: doc.Fallback,
			Blocks:   doc.BlockCount(),
		})
	}
	return doc, nil
}

func (s *Service) publish(ctx context.Context, channel string, ev realtime.SSEEvent, data any) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, realtime.SSEMessage{Channel: channel, Event: ev, Data: data}); err != nil {
		s.log.Debug("course event publish failed", "channel", channel, "event", ev, "error", err)
	}
}

package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/neurobridge-coursegen/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-coursegen/internal/http/middleware"
	"github.com/yungbote/neurobridge-coursegen/internal/observability"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	HealthHandler   *httpH.HealthHandler
	AIHandler       *httpH.AIHandler
	CourseHandler   *httpH.CourseHandler
	BlockHandler    *httpH.BlockHandler
	RealtimeHandler *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	api.Use(httpMW.ForwardBearerToken())
	{
		// AI status
		if cfg.AIHandler != nil {
			api.GET("/ai/status", cfg.AIHandler.Status)
		}

		// Courses
		if cfg.CourseHandler != nil {
			api.POST("/courses/generate", cfg.CourseHandler.Generate)
			api.POST("/courses/outline", cfg.CourseHandler.Outline)
			api.POST("/courses/blueprint", cfg.CourseHandler.Blueprint)
		}

		// Blocks
		if cfg.BlockHandler != nil {
			api.POST("/blocks/generate", cfg.BlockHandler.Generate)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/realtime/stream", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}

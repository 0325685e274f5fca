package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-coursegen/internal/http"
	httpH "github.com/yungbote/neurobridge-coursegen/internal/http/handlers"
	"github.com/yungbote/neurobridge-coursegen/internal/observability"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/config"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
	"github.com/yungbote/neurobridge-coursegen/internal/realtime"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	AI       *httpH.AIHandler
	Course   *httpH.CourseHandler
	Block    *httpH.BlockHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, cfg config.Config, services Services, hub *realtime.SSEHub, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	var blockObs httpH.BlockObserver
	if metrics != nil {
		blockObs = metrics
	}
	return Handlers{
		Health:   httpH.NewHealthHandler(cfg.Version),
		AI:       httpH.NewAIHandler(services.Gateway),
		Course:   httpH.NewCourseHandler(log, services.Courses, services.Gateway),
		Block:    httpH.NewBlockHandler(services.Blocks, blockObs),
		Realtime: httpH.NewRealtimeHandler(log, hub),
	}
}

func wireRouter(log *logger.Logger, cfg config.Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return http.NewRouter(http.RouterConfig{
		Log:             log,
		ServiceName:     cfg.ServiceName,
		CORSOrigins:     cfg.CORSOrigins,
		Metrics:         metrics,
		HealthHandler:   handlers.Health,
		AIHandler:       handlers.AI,
		CourseHandler:   handlers.Course,
		BlockHandler:    handlers.Block,
		RealtimeHandler: handlers.Realtime,
	})
}

package handlers

import (
	"medvoice/internal/voice"
	"medvoice/pkg/config"
	"medvoice/pkg/logger"
	"medvoice/pkg/metrics"
	"medvoice/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handlers struct {
	db      *gorm.DB
	service *voice.Service
}

func NewHandlers(db *gorm.DB, service *voice.Service) *Handlers {
	return &Handlers{
		db:      db,
		service: service,
	}
}

func (h *Handlers) Register(engine *gin.Engine) {
	if config.GlobalConfig.MetricsEnabled {
		engine.Use(metrics.Middleware(metrics.Global()))
		engine.GET(config.GlobalConfig.MetricsPath, metrics.Handler())
	}

	r := engine.Group(config.GlobalConfig.APIPrefix)

	h.registerSystemRoutes(r)
	h.registerVoiceRoutes(r)
}

// Voice pipeline module
func (h *Handlers) registerVoiceRoutes(r *gin.RouterGroup) {
	voices := r.Group("voices")
	if config.GlobalConfig.RateLimit != "" {
		limit, err := middleware.RateLimiter(config.GlobalConfig.RateLimit)
		if err != nil {
			logger.Warn("invalid rate limit, limiter disabled", zap.Error(err))
		} else {
			voices.Use(limit)
		}
	}
	{
		// clone + generation triggers
		voices.POST("/submissions/:id/clone", h.handleCloneVoice)

		voices.POST("/submissions/:id/generate", h.handleGenerateLanguages)

		voices.GET("/submissions/:id/generated", h.handleListGenerated)

		voices.DELETE("/submissions/:id", h.handleDeleteVoice)

		// lifecycle / slot reclamation
		voices.POST("/cleanup", h.handleCleanup)

		voices.POST("/cleanup/all", h.handleDeleteAllActive)

		voices.GET("/active", h.handleListActive)

		voices.GET("/provider/health", h.handleProviderHealth)
	}
}

func (h *Handlers) registerSystemRoutes(r *gin.RouterGroup) {
	system := r.Group("system")
	{
		system.GET("/health", h.HealthCheck)
	}
}

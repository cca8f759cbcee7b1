package api

import (
	"github.com/gin-gonic/gin"

	"descstats/middleware"
)

// NewRouter wires the handler's routes behind recovery, correlation IDs and body limits.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CorrelationID(ServiceName))

	r.GET("/health", h.HealthCheck)
	r.GET("/statistics/names", h.StatisticNames)

	// JSON escaping can roughly double the size of the submitted text.
	textLimit := int64(h.opts.MaxTextBytes)*2 + 4096
	r.POST("/statistics/text", middleware.BodyLimit(textLimit), h.TextStatistics)
	r.POST("/statistics/file", middleware.BodyLimit(h.opts.MaxUploadBytes+multipartOverhead), h.FileStatistics)

	return r
}

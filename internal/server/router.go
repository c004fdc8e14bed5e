// Package server assembles the HTTP router.
package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/jimdaga/first-sip/internal/briefings"
	"github.com/jimdaga/first-sip/internal/health"
)

// Archive bundles the dependencies of the briefing archive endpoints. A
// nil Archive leaves those endpoints unregistered.
type Archive struct {
	Store    briefings.ArchiveStore
	Enqueuer briefings.Enqueuer
}

// NewRouter builds the gin engine serving the chat API, the optional
// archive API and the health check.
func NewRouter(svc briefings.Responder, archive *Archive, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(logger))

	r.GET("/health", gin.WrapF(health.Handler))

	api := r.Group("/api")
	api.POST("/briefing", briefings.ChatHandler(svc, logger))
	api.GET("/briefing", briefings.GenerateHandler(svc, logger))

	if archive != nil {
		api.POST("/briefings", briefings.CreateBriefingHandler(archive.Store, archive.Enqueuer, logger))
		api.GET("/briefings/latest", briefings.LatestBriefingHandler(archive.Store, logger))
		api.GET("/briefings/:id", briefings.GetBriefingStatusHandler(archive.Store, logger))
		api.POST("/briefings/:id/read", briefings.MarkBriefingReadHandler(archive.Store, logger))
	}

	return r
}

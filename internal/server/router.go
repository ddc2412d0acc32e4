// Package server exposes the HTTP surface: message ingestion, history,
// summary, health, and static serving of stored audio blobs.
package server

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"carelingo/internal/config"
	"carelingo/internal/database"
)

// NewRouter builds the gin engine with all routes registered. The audio blob
// directory is served under the store's URL prefix so persisted
// original_audio_url values are directly fetchable.
func NewRouter(svc ChatService, store database.Store, cfg config.ServerConfig, audioDir, audioURLPrefix string, log *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(log), gin.Recovery())

	// Clients are web/mobile apps served from other origins.
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
	}))

	router.Static(audioURLPrefix, audioDir)

	h := newHandlers(svc, store, cfg.MaxAudioBytes, log)
	router.GET("/healthz", h.health)
	router.POST("/chat/text", h.postText)
	router.POST("/chat/audio", h.postAudio)
	router.GET("/history", h.getHistory)
	router.GET("/summarize", h.getSummary)

	return router
}

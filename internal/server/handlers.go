package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"carelingo/internal/chat"
	"carelingo/internal/database"
)

// ChatService is the ingestion and reporting surface the handlers depend on.
type ChatService interface {
	SubmitText(ctx context.Context, in chat.TextInput) (*database.Message, error)
	SubmitAudio(ctx context.Context, in chat.AudioInput) (*database.Message, error)
	History(ctx context.Context) ([]database.Message, error)
	Summarize(ctx context.Context) (string, error)
}

type handlers struct {
	svc           ChatService
	store         database.Store
	maxAudioBytes int64
	log           *slog.Logger
}

func newHandlers(svc ChatService, store database.Store, maxAudioBytes int64, log *slog.Logger) *handlers {
	return &handlers{
		svc:           svc,
		store:         store,
		maxAudioBytes: maxAudioBytes,
		log:           log.With("component", "http_handlers"),
	}
}

type textRequest struct {
	Role       string `json:"role" binding:"required"`
	Text       string `json:"text" binding:"required"`
	TargetLang string `json:"target_lang" binding:"required"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) postText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request payload"})
		return
	}

	msg, err := h.svc.SubmitText(c.Request.Context(), chat.TextInput{
		Role:       req.Role,
		Text:       req.Text,
		TargetLang: req.TargetLang,
	})
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "text submission failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to store message"})
		return
	}

	c.JSON(http.StatusOK, msg)
}

func (h *handlers) postAudio(c *gin.Context) {
	role := c.PostForm("role")
	targetLang := c.PostForm("target_lang")
	if role == "" || targetLang == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "role and target_lang are required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "audio file is required"})
		return
	}
	if h.maxAudioBytes > 0 && fileHeader.Size > h.maxAudioBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "audio file too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "failed to read audio file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "failed to read audio file"})
		return
	}

	msg, err := h.svc.SubmitAudio(c.Request.Context(), chat.AudioInput{
		Role:       role,
		TargetLang: targetLang,
		Filename:   fileHeader.Filename,
		Data:       data,
	})
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "audio submission failed", "filename", fileHeader.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to store audio message"})
		return
	}

	c.JSON(http.StatusOK, msg)
}

func (h *handlers) getHistory(c *gin.Context) {
	messages, err := h.svc.History(c.Request.Context())
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "history retrieval failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *handlers) getSummary(c *gin.Context) {
	summary, err := h.svc.Summarize(c.Request.Context())
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "summary generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to generate summary"})
		return
	}

	c.JSON(http.StatusOK, summaryResponse{Summary: summary})
}

func (h *handlers) health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

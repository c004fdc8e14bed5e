// Package briefings serves the briefing chat API and the briefing archive.
package briefings

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jimdaga/first-sip/internal/briefing"
	"github.com/jimdaga/first-sip/internal/database"
	"github.com/jimdaga/first-sip/internal/models"
)

// generateFailedMessage is the only error text a failed generation exposes.
const generateFailedMessage = "Failed to generate briefing."

// maxBodyBytes bounds the chat request body.
const maxBodyBytes = 1 << 20

// Responder answers chat requests.
type Responder interface {
	Respond(ctx context.Context, history []briefing.Turn, message string) (briefing.Exchange, error)
	Generate(ctx context.Context) (briefing.Exchange, error)
}

type chatResponse struct {
	Briefing string          `json:"briefing"`
	History  []briefing.Turn `json:"history"`
}

// ChatHandler continues a briefing conversation.
func ChatHandler(svc Responder, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body."})
			return
		}

		req, err := decodeChatRequest(body)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		exchange, err := svc.Respond(c.Request.Context(), req.History, req.Message)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, chatResponse{Briefing: exchange.Reply, History: exchange.Transcript})
	}
}

// GenerateHandler returns a fresh single-shot briefing.
func GenerateHandler(svc Responder, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		exchange, err := svc.Generate(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, chatResponse{Briefing: exchange.Reply, History: exchange.Transcript})
	}
}

func respondError(c *gin.Context, logger *slog.Logger, err error) {
	if errors.Is(err, briefing.ErrInvalidRequest) {
		logger.Warn("Rejected briefing request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logger.Error("Error generating briefing", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": generateFailedMessage})
}

// ArchiveStore is the briefing archive used by the archive endpoints.
type ArchiveStore interface {
	Create(ctx context.Context, source string) (*models.Briefing, error)
	Get(ctx context.Context, id uint) (*models.Briefing, error)
	FindActive(ctx context.Context) (*models.Briefing, error)
	Latest(ctx context.Context) (*models.Briefing, error)
	Fail(ctx context.Context, id uint, message string) error
	MarkRead(ctx context.Context, id uint, at time.Time) (*models.Briefing, error)
}

// Enqueuer queues background generation of an archived briefing.
type Enqueuer interface {
	EnqueueGenerateBriefing(ctx context.Context, briefingID uint) error
}

// briefingView is the JSON shape of an archived briefing.
type briefingView struct {
	ID           uint       `json:"id"`
	Source       string     `json:"source"`
	Status       string     `json:"status"`
	Briefing     string     `json:"briefing,omitempty"`
	Prompt       string     `json:"prompt,omitempty"`
	ErrorMessage string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	GeneratedAt  *time.Time `json:"generated_at,omitempty"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
}

func newBriefingView(b *models.Briefing) briefingView {
	view := briefingView{
		ID:           b.ID,
		Source:       b.Source,
		Status:       b.Status,
		ErrorMessage: b.ErrorMessage,
		CreatedAt:    b.CreatedAt,
		GeneratedAt:  b.GeneratedAt,
		ReadAt:       b.ReadAt,
	}
	if len(b.Content) > 0 {
		var content models.BriefingContent
		if err := json.Unmarshal(b.Content, &content); err == nil {
			view.Briefing = content.Briefing
			view.Prompt = content.Prompt
		}
	}
	return view
}

// CreateBriefingHandler creates a new briefing and enqueues generation task.
// An in-flight briefing is returned instead of creating a duplicate.
func CreateBriefingHandler(store ArchiveStore, enqueuer Enqueuer, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		existing, err := store.FindActive(ctx)
		if err == nil {
			c.JSON(http.StatusAccepted, newBriefingView(existing))
			return
		}
		if !errors.Is(err, database.ErrNotFound) {
			logger.Error("Failed to look up active briefing", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create briefing."})
			return
		}

		b, err := store.Create(ctx, models.BriefingSourceManual)
		if err != nil {
			logger.Error("Failed to create briefing", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create briefing."})
			return
		}

		if err := enqueuer.EnqueueGenerateBriefing(ctx, b.ID); err != nil {
			logger.Error("Failed to enqueue briefing generation", "briefing_id", b.ID, "error", err)
			if failErr := store.Fail(ctx, b.ID, "Failed to enqueue generation task"); failErr != nil {
				logger.Error("Failed to mark briefing failed", "briefing_id", b.ID, "error", failErr)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue briefing generation."})
			return
		}

		c.JSON(http.StatusAccepted, newBriefingView(b))
	}
}

// GetBriefingStatusHandler returns the current state of a briefing.
func GetBriefingStatusHandler(store ArchiveStore, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := briefingID(c)
		if !ok {
			return
		}
		b, err := store.Get(c.Request.Context(), id)
		if err != nil {
			respondLookupError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, newBriefingView(b))
	}
}

// LatestBriefingHandler returns the most recent completed briefing.
func LatestBriefingHandler(store ArchiveStore, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := store.Latest(c.Request.Context())
		if err != nil {
			respondLookupError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, newBriefingView(b))
	}
}

// MarkBriefingReadHandler marks a briefing as read. Repeated calls keep the
// first read time.
func MarkBriefingReadHandler(store ArchiveStore, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := briefingID(c)
		if !ok {
			return
		}
		b, err := store.MarkRead(c.Request.Context(), id, time.Now())
		if err != nil {
			respondLookupError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, newBriefingView(b))
	}
}

func briefingID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid briefing id."})
		return 0, false
	}
	return uint(id), true
}

func respondLookupError(c *gin.Context, logger *slog.Logger, err error) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Briefing not found."})
		return
	}
	logger.Error("Failed to load briefing", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load briefing."})
}

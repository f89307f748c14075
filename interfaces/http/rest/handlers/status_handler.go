package handlers

import (
	"context"
	"net/http"
	"time"

	"studycapture/application/ports"
	"studycapture/pkg/common"
	appErrors "studycapture/pkg/errors"

	"go.uber.org/zap"
)

// StatusInfo describes the running service on GET /.
type StatusInfo struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Version     string `json:"version"`
	Database    string `json:"database"`
	TopicsCount int    `json:"topics_count"`
	NotesCount  int    `json:"notes_count"`
	NotionSync  bool   `json:"notion_sync"`
}

// StatusHandler serves the root, health and readiness endpoints.
type StatusHandler struct {
	stats       ports.StatsReader
	database    string
	version     string
	syncEnabled bool
	errors      *appErrors.ErrorHandler
	logger      *zap.Logger
}

func NewStatusHandler(
	stats ports.StatsReader,
	database, version string,
	syncEnabled bool,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) *StatusHandler {
	return &StatusHandler{
		stats:       stats,
		database:    database,
		version:     version,
		syncEnabled: syncEnabled,
		errors:      errorHandler,
		logger:      logger,
	}
}

// Root handles GET /
func (h *StatusHandler) Root(w http.ResponseWriter, r *http.Request) {
	topics, notes, err := h.stats.Counts(r.Context())
	if err != nil {
		h.errors.Handle(w, r, appErrors.NewPersistenceError("count rows", err))
		return
	}
	common.RespondJSON(w, http.StatusOK, StatusInfo{
		Status:      "running",
		Message:     "AI Study Assistant API",
		Version:     h.version,
		Database:    h.database,
		TopicsCount: topics,
		NotesCount:  notes,
		NotionSync:  h.syncEnabled,
	})
}

// Health handles GET /health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready handles GET /ready. The service is ready once the store answers.
func (h *StatusHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.stats.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		h.errors.Handle(w, r, appErrors.NewUnavailableError("store"))
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/parlor-chat/parlor/internal/archive"
	"github.com/parlor-chat/parlor/internal/chat"
	"github.com/parlor-chat/parlor/internal/metrics"
	"github.com/parlor-chat/parlor/internal/models"
	"github.com/parlor-chat/parlor/internal/notify"
	"github.com/parlor-chat/parlor/internal/session"
)

const archiveTimeout = 3 * time.Second

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store    *chat.Store
	sessions session.Store
	arc      archive.Archive // nil when no durable backing is configured
	notifier *notify.Dispatcher
	redis    *redis.Client // nil when Redis is not configured, health only
	logger   zerolog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(store *chat.Store, sessions session.Store, arc archive.Archive, notifier *notify.Dispatcher, redisClient *redis.Client, logger zerolog.Logger) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		arc:      arc,
		notifier: notifier,
		redis:    redisClient,
		logger:   logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// StoreError maps a chat store error onto the HTTP surface. Validation and
// not-found reasons are surfaced verbatim; anything unexpected is hidden.
func (h *Handler) StoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrValidation):
		h.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrDuplicateRoom):
		h.Error(w, http.StatusBadRequest, "Room already exists")
	case errors.Is(err, chat.ErrNotFound):
		h.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chat.ErrConflict):
		h.Error(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error().Err(err).Msg("store operation failed")
		h.Error(w, http.StatusInternalServerError, "internal error")
	}
}

// mirror runs a best-effort archive write. Failures are counted and logged,
// never surfaced: the volatile core is the source of truth. The write gets
// its own deadline so a slow database cannot stall or cancel with the
// request.
func (h *Handler) mirror(op string, fn func(ctx context.Context) error) {
	if h.arc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		metrics.ArchiveFailures.WithLabelValues(op).Inc()
		h.logger.Warn().Err(err).Str("op", op).Msg("archive write failed")
		return
	}
	metrics.ArchiveLatency.Observe(time.Since(start).Seconds())
}

// messageJSON adds the client-facing clock rendering to a message.
type messageJSON struct {
	models.Message
	FormattedTime string `json:"formatted_time"`
}

func toMessageJSON(m models.Message) messageJSON {
	return messageJSON{Message: m, FormattedTime: m.FormattedTime()}
}

// privateMessageJSON is the same for private messages.
type privateMessageJSON struct {
	models.PrivateMessage
	FormattedTime string `json:"formatted_time"`
}

func toPrivateMessageJSON(m models.PrivateMessage) privateMessageJSON {
	return privateMessageJSON{PrivateMessage: m, FormattedTime: m.FormattedTime()}
}

package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Mihla-Tembe/disruptorr/internal/ai"
	"github.com/Mihla-Tembe/disruptorr/internal/chat"
	"github.com/Mihla-Tembe/disruptorr/internal/common"
	"github.com/Mihla-Tembe/disruptorr/internal/config"
	"github.com/Mihla-Tembe/disruptorr/internal/httpapi/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	Cfg     config.Config
	ChatSvc *chat.Service
	// RelayBackend answers POST /relay/chat.
	RelayBackend ai.Provider
	Log          *zap.Logger
	Now          func() time.Time
}

func NewHandler(cfg config.Config, svc *chat.Service, relayBackend ai.Provider, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Cfg:          cfg,
		ChatSvc:      svc,
		RelayBackend: relayBackend,
		Log:          log,
		Now:          time.Now,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

// bindOptionalJSON decodes the request body into v; an empty body is allowed.
func bindOptionalJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func namespace(c *gin.Context) string {
	return c.GetString(middleware.NamespaceKey)
}

// chatError maps domain errors onto the response envelope.
func (h *Handler) chatError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, chat.ErrThreadNotFound):
		common.Fail(c, http.StatusNotFound, 40401, "thread not found")
	case errors.Is(err, chat.ErrMessageNotFound):
		common.Fail(c, http.StatusNotFound, 40402, "message not found")
	case errors.Is(err, chat.ErrInvalidMessage), errors.Is(err, chat.ErrInvalidMeta):
		common.Fail(c, http.StatusBadRequest, 40001, err.Error())
	case errors.Is(err, chat.ErrEmptyTitle):
		common.Fail(c, http.StatusBadRequest, 40002, "title must not be empty")
	case errors.Is(err, chat.ErrUndoExpired):
		common.Fail(c, http.StatusGone, 41001, "undo window expired")
	case errors.Is(err, chat.ErrAsyncDisabled):
		common.Fail(c, http.StatusServiceUnavailable, 50301, "async replies are not configured")
	default:
		h.Log.Error(fallback,
			zap.Error(err),
			zap.String("namespace", namespace(c)),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		)
		common.Fail(c, http.StatusInternalServerError, 50001, fallback)
	}
}

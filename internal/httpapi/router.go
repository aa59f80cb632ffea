package httpapi

import (
	"net/http"

	"github.com/Mihla-Tembe/disruptorr/internal/common"
	"github.com/Mihla-Tembe/disruptorr/internal/httpapi/handlers"
	"github.com/Mihla-Tembe/disruptorr/internal/httpapi/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(h *handlers.Handler, log *zap.Logger) *gin.Engine {
	if h.Cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)

	// relay contract is {query} -> {reply}, no auth
	r.POST("/relay/chat", h.RelayChat)

	scoped := r.Group("/")
	scoped.Use(middleware.ClientScope(h.Cfg.JWTSecret, h.Cfg.Namespace))

	scoped.GET("/threads", h.ListThreads)
	scoped.POST("/threads", h.CreateThread)
	scoped.POST("/threads/ensure", h.EnsureThread)
	scoped.GET("/threads/:id", h.GetThread)
	scoped.PATCH("/threads/:id", h.RenameThread)
	scoped.DELETE("/threads/:id", h.DeleteThread)
	scoped.POST("/threads/:id/restore", h.RestoreThread)
	scoped.POST("/threads/:id/messages", h.SendMessage)
	scoped.PATCH("/threads/:id/messages/:message_id/meta", h.UpdateMessageMeta)

	scoped.GET("/helper/messages", h.ListHelperMessages)
	scoped.POST("/helper/messages", h.AskHelper)
	scoped.DELETE("/helper/messages", h.ClearHelperMessages)

	return r
}

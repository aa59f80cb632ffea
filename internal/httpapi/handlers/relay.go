package handlers

import (
	"net/http"
	"strings"

	"github.com/Mihla-Tembe/disruptorr/internal/ai"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type relayReq struct {
	Query string `json:"query"`
}

// RelayChat is the reply endpoint the thread service calls: {query} in,
// {reply} out. It does not use the response envelope.
func (h *Handler) RelayChat(c *gin.Context) {
	var req relayReq
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query"})
		return
	}

	reply, err := h.RelayBackend.Chat(c.Request.Context(), []ai.Message{{Role: "user", Content: req.Query}})
	if err != nil {
		h.Log.Error("relay backend failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reply generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

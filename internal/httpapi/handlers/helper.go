package handlers

import (
	"net/http"

	"github.com/Mihla-Tembe/disruptorr/internal/common"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListHelperMessages(c *gin.Context) {
	common.OK(c, h.ChatSvc.Helper(namespace(c)).Load(c.Request.Context()))
}

type askHelperReq struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) AskHelper(c *gin.Context) {
	var req askHelperReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	q, a, err := h.ChatSvc.AskHelper(c.Request.Context(), namespace(c), req.Content)
	if err != nil {
		h.chatError(c, err, "failed to ask helper")
		return
	}
	common.OK(c, gin.H{"user": q, "assistant": a})
}

func (h *Handler) ClearHelperMessages(c *gin.Context) {
	if err := h.ChatSvc.Helper(namespace(c)).Clear(c.Request.Context()); err != nil {
		h.chatError(c, err, "failed to clear helper chat")
		return
	}
	common.OK(c, gin.H{"cleared": true})
}

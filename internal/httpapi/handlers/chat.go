package handlers

import (
	"net/http"
	"strconv"

	"github.com/Mihla-Tembe/disruptorr/internal/chat"
	"github.com/Mihla-Tembe/disruptorr/internal/common"
	"github.com/gin-gonic/gin"
)

// ListThreads returns the sidebar view; the first call for a namespace seeds
// the sample threads.
func (h *Handler) ListThreads(c *gin.Context) {
	threads, err := h.ChatSvc.Threads(namespace(c)).Hydrate(c.Request.Context())
	if err != nil {
		h.chatError(c, err, "failed to load threads")
		return
	}
	common.OK(c, gin.H{
		"groups": chat.Sidebar(threads, c.Query("q"), h.Now()),
		"total":  len(threads),
	})
}

type createThreadReq struct {
	Title string `json:"title"`
}

func (h *Handler) CreateThread(c *gin.Context) {
	var req createThreadReq
	if err := bindOptionalJSON(c, &req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	t, err := h.ChatSvc.Threads(namespace(c)).Create(c.Request.Context(), req.Title)
	if err != nil {
		h.chatError(c, err, "failed to create thread")
		return
	}
	common.Created(c, t)
}

type ensureThreadReq struct {
	ID string `json:"id"`
}

func (h *Handler) EnsureThread(c *gin.Context) {
	var req ensureThreadReq
	if err := bindOptionalJSON(c, &req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	t, err := h.ChatSvc.Threads(namespace(c)).Ensure(c.Request.Context(), req.ID)
	if err != nil {
		h.chatError(c, err, "failed to ensure thread")
		return
	}
	common.OK(c, t)
}

func (h *Handler) GetThread(c *gin.Context) {
	t, err := h.ChatSvc.Threads(namespace(c)).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.chatError(c, err, "failed to load thread")
		return
	}
	common.OK(c, t)
}

type renameThreadReq struct {
	Title string `json:"title" binding:"required"`
}

func (h *Handler) RenameThread(c *gin.Context) {
	var req renameThreadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	t, err := h.ChatSvc.Threads(namespace(c)).Rename(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		h.chatError(c, err, "failed to rename thread")
		return
	}
	common.OK(c, t)
}

func (h *Handler) DeleteThread(c *gin.Context) {
	t, err := h.ChatSvc.Threads(namespace(c)).Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.chatError(c, err, "failed to delete thread")
		return
	}
	common.OK(c, gin.H{
		"thread":         t,
		"undo_window_ms": h.Cfg.UndoWindow.Milliseconds(),
	})
}

func (h *Handler) RestoreThread(c *gin.Context) {
	t, err := h.ChatSvc.Threads(namespace(c)).Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.chatError(c, err, "failed to restore thread")
		return
	}
	common.OK(c, t)
}

type sendMessageReq struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage appends the user message and answers with the assistant reply.
// With ?async=1 (or ASYNC_REPLIES) the reply is queued and 202 is returned.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	ns, threadID := namespace(c), c.Param("id")

	if h.wantAsync(c) {
		userMsg, job, err := h.ChatSvc.SendAsync(c.Request.Context(), ns, threadID, req.Content)
		if err != nil {
			h.chatError(c, err, "failed to queue reply")
			return
		}
		common.Accepted(c, gin.H{
			"user":   userMsg,
			"job_id": job.JobID,
		})
		return
	}

	res, err := h.ChatSvc.Send(c.Request.Context(), ns, threadID, req.Content)
	if err != nil {
		h.chatError(c, err, "failed to send message")
		return
	}
	common.OK(c, res)
}

func (h *Handler) wantAsync(c *gin.Context) bool {
	if v, ok := c.GetQuery("async"); ok {
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	return h.Cfg.AsyncReplies && h.ChatSvc.AsyncEnabled()
}

func (h *Handler) UpdateMessageMeta(c *gin.Context) {
	var patch chat.MetaPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	m, err := h.ChatSvc.Threads(namespace(c)).UpdateMessageMeta(c.Request.Context(), c.Param("id"), c.Param("message_id"), patch)
	if err != nil {
		h.chatError(c, err, "failed to update message")
		return
	}
	common.OK(c, m)
}

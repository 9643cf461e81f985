package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"klinik-app-server/internal/chatbot"
	"klinik-app-server/internal/clock"
	"klinik-app-server/internal/middleware"
	"klinik-app-server/internal/models"
	"klinik-app-server/internal/utils"
)

// ChatHandler streams patient assistant replies. Chatbot is nil when no API
// key is configured, in which case the endpoint reports unavailable.
type ChatHandler struct {
	DB      *gorm.DB
	Chatbot *chatbot.Client
	Clock   clock.Clock
	Log     zerolog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(db *gorm.DB, client *chatbot.Client, clk clock.Clock, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{DB: db, Chatbot: client, Clock: clk, Log: log}
}

// ChatRequest represents the conversation transcript sent by the portal.
type ChatRequest struct {
	Messages []chatbot.Message `json:"messages" binding:"required,min=1"`
}

// Chat snapshots today's schedules and queue state, hands them to the model
// as context, and streams the reply as server-sent events.
func (h *ChatHandler) Chat(c *gin.Context) {
	if h.Chatbot == nil {
		utils.Error(c, 503, "Chat assistant is not configured")
		return
	}

	var req ChatRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	// Patients get their own visits in context; staff roles chat without one.
	patientID := ""
	if role, _ := middleware.GetUserRoleFromContext(c); role == models.RolePatient {
		patientID = c.GetString("patientID")
	}

	system, err := chatbot.BuildClinicContext(h.DB, h.Clock, patientID)
	if err != nil {
		utils.InternalServerError(c, "Failed to build chat context: "+err.Error())
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	err = h.Chatbot.StreamReply(c.Request.Context(), system, req.Messages, func(token string) error {
		c.SSEvent("message", token)
		c.Writer.Flush()
		return nil
	})
	if err != nil && err != io.EOF {
		h.Log.Error().Err(err).Msg("chat stream failed")
		c.SSEvent("error", "assistant unavailable")
		c.Writer.Flush()
		return
	}
	c.SSEvent("done", "")
	c.Writer.Flush()
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-service/internal/metrics"
	"social-service/internal/repositories"
	"social-service/internal/services"
	"social-service/internal/telemetry"
)

type MessageHandler struct {
	base
	messaging *services.MessagingService
}

func NewMessageHandler(messaging *services.MessagingService, audit *telemetry.AuditEmitter, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{base: newBase(audit, logger), messaging: messaging}
}

type sendMessageBody struct {
	SenderID   int64  `json:"senderId" binding:"omitempty,gt=0"`
	ReceiverID int64  `json:"receiverId" binding:"required,gt=0"`
	Content    string `json:"content" binding:"required,max=2000"`
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	var body sendMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		metrics.IncMessage(metrics.StatusFailed)
		writeValidationError(c, err)
		return
	}

	userID, ok := caller(c)
	if !ok {
		metrics.IncMessage(metrics.StatusFailed)
		return
	}
	if body.SenderID != 0 && body.SenderID != userID {
		metrics.IncMessage(metrics.StatusFailed)
		h.fail(c, "message.send", errActingAsOther)
		return
	}

	ctx := c.Request.Context()
	msg, err := h.messaging.SendMessage(ctx, userID, body.ReceiverID, body.Content)
	if err != nil {
		if errors.Is(err, repositories.ErrBlocked) {
			metrics.IncMessage(metrics.StatusBlocked)
		} else {
			metrics.IncMessage(metrics.StatusFailed)
		}
		h.fail(c, "message.send", err)
		return
	}

	h.emitAudit(ctx, c, telemetry.LevelInfo, "message.send", "Message sent to '"+strconv.FormatInt(body.ReceiverID, 10)+"'")
	metrics.IncMessage(metrics.StatusSuccess)
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *MessageHandler) Conversation(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	friendID, err := strconv.ParseInt(c.Query("friendId"), 10, 64)
	if err != nil || friendID <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "friendId is required", "code": "validation"})
		return
	}

	msgs, err := h.messaging.Conversation(c.Request.Context(), userID, friendID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	convs, err := h.messaging.ListConversations(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, convs)
}

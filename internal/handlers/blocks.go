package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-service/internal/metrics"
	"social-service/internal/services"
	"social-service/internal/telemetry"
)

type BlockHandler struct {
	base
	relationships *services.RelationshipService
}

func NewBlockHandler(relationships *services.RelationshipService, audit *telemetry.AuditEmitter, logger *zap.Logger) *BlockHandler {
	return &BlockHandler{base: newBase(audit, logger), relationships: relationships}
}

type blockBody struct {
	BlockerID int64 `json:"blockerId" binding:"required,gt=0"`
	BlockedID int64 `json:"blockedId" binding:"required,gt=0"`
}

// bindActing binds a blockBody whose blockerId must be the caller.
func (h *BlockHandler) bindActing(c *gin.Context, action string) (blockBody, bool) {
	var body blockBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeValidationError(c, err)
		return body, false
	}
	userID, ok := caller(c)
	if !ok {
		return body, false
	}
	if body.BlockerID != userID {
		h.fail(c, action, errActingAsOther)
		return body, false
	}
	return body, true
}

func (h *BlockHandler) Block(c *gin.Context) {
	body, ok := h.bindActing(c, "user.block")
	if !ok {
		metrics.IncBlock(metrics.StatusFailed)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.relationships.Block(ctx, body.BlockerID, body.BlockedID); err != nil {
		metrics.IncBlock(metrics.StatusFailed)
		h.fail(c, "user.block", err)
		return
	}

	h.emitAudit(ctx, c, telemetry.LevelInfo, "user.block", "User '"+strconv.FormatInt(body.BlockedID, 10)+"' blocked")
	metrics.IncBlock(metrics.StatusSuccess)
	c.JSON(http.StatusOK, gin.H{"message": "User blocked successfully"})
}

func (h *BlockHandler) Unblock(c *gin.Context) {
	body, ok := h.bindActing(c, "user.unblock")
	if !ok {
		metrics.IncUnblock(metrics.StatusFailed)
		return
	}

	ctx := c.Request.Context()
	if err := h.relationships.Unblock(ctx, body.BlockerID, body.BlockedID); err != nil {
		metrics.IncUnblock(metrics.StatusFailed)
		h.fail(c, "user.unblock", err)
		return
	}

	h.emitAudit(ctx, c, telemetry.LevelInfo, "user.unblock", "User '"+strconv.FormatInt(body.BlockedID, 10)+"' unblocked")
	metrics.IncUnblock(metrics.StatusSuccess)
	c.JSON(http.StatusOK, gin.H{"message": "User unblocked successfully"})
}

// CheckBlocked reports both block directions between blockerId and blockedId.
func (h *BlockHandler) CheckBlocked(c *gin.Context) {
	var body blockBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeValidationError(c, err)
		return
	}

	status, err := h.relationships.BlockStatus(c.Request.Context(), body.BlockerID, body.BlockedID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *BlockHandler) ListBlocked(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	blocked, err := h.relationships.ListBlocked(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, blocked)
}

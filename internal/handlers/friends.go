package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-service/internal/metrics"
	"social-service/internal/models"
	"social-service/internal/repositories"
	"social-service/internal/services"
	"social-service/internal/telemetry"
)

type FriendHandler struct {
	base
	relationships *services.RelationshipService
}

func NewFriendHandler(relationships *services.RelationshipService, audit *telemetry.AuditEmitter, logger *zap.Logger) *FriendHandler {
	return &FriendHandler{base: newBase(audit, logger), relationships: relationships}
}

type sendRequestBody struct {
	SenderID   int64 `json:"senderId" binding:"required,gt=0"`
	ReceiverID int64 `json:"receiverId" binding:"required,gt=0"`
}

type decisionBody struct {
	RequestID int64 `json:"requestId" binding:"required,gt=0"`
}

type pairBody struct {
	SenderID   int64 `json:"senderId" binding:"required,gt=0"`
	ReceiverID int64 `json:"receiverId" binding:"required,gt=0"`
}

type listIncomingBody struct {
	SenderID int64  `json:"senderId" binding:"omitempty,gt=0"`
	Status   string `json:"status" binding:"omitempty,oneof=pending accepted rejected"`
}

type checkFriendshipBody struct {
	UserID   int64 `json:"userId" binding:"required,gt=0"`
	FriendID int64 `json:"friendId" binding:"required,gt=0"`
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.emitAudit(c.Request.Context(), c, telemetry.LevelError, "friend_request.send", "invalid request payload")
		metrics.IncFriendRequest(metrics.StatusFailed)
		writeValidationError(c, err)
		return
	}

	userID, ok := caller(c)
	if !ok {
		metrics.IncFriendRequest(metrics.StatusFailed)
		return
	}
	if body.SenderID != userID {
		metrics.IncFriendRequest(metrics.StatusFailed)
		h.fail(c, "friend_request.send", errActingAsOther)
		return
	}

	ctx := c.Request.Context()
	req, err := h.relationships.SendRequest(ctx, body.SenderID, body.ReceiverID)
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyBlocked) {
			metrics.IncFriendRequest(metrics.StatusBlocked)
		} else {
			metrics.IncFriendRequest(metrics.StatusFailed)
		}
		h.fail(c, "friend_request.send", err)
		return
	}

	h.emitAudit(ctx, c, telemetry.LevelInfo, "friend_request.send",
		"Friend request sent to '"+strconv.FormatInt(body.ReceiverID, 10)+"'")
	metrics.IncFriendRequest(metrics.StatusSuccess)
	c.JSON(http.StatusCreated, req)
}

func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	h.handleDecision(c, h.relationships.AcceptRequest, "accepted", "friend_request.accept", metrics.IncFriendAccept)
}

func (h *FriendHandler) RejectRequest(c *gin.Context) {
	h.handleDecision(c, h.relationships.RejectRequest, "rejected", "friend_request.reject", metrics.IncFriendReject)
}

func (h *FriendHandler) handleDecision(
	c *gin.Context,
	action func(ctx context.Context, requestID, userID int64) (*models.FriendRequest, error),
	status, auditAction string,
	inc func(string),
) {
	var body decisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		inc(metrics.StatusFailed)
		writeValidationError(c, err)
		return
	}

	userID, ok := caller(c)
	if !ok {
		inc(metrics.StatusFailed)
		return
	}

	ctx := c.Request.Context()
	if _, err := action(ctx, body.RequestID, userID); err != nil {
		inc(metrics.StatusFailed)
		h.fail(c, auditAction, err)
		return
	}

	h.emitAudit(ctx, c, telemetry.LevelInfo, auditAction, "Friend request "+status)
	inc(metrics.StatusSuccess)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Friend request " + status})
}

func (h *FriendHandler) CheckRequestStatus(c *gin.Context) {
	var body pairBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeValidationError(c, err)
		return
	}

	check, err := h.relationships.CheckRequestStatus(c.Request.Context(), body.SenderID, body.ReceiverID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

// ListIncoming lists requests addressed to the caller. The body is optional.
func (h *FriendHandler) ListIncoming(c *gin.Context) {
	var body listIncomingBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		writeValidationError(c, err)
		return
	}

	userID, ok := caller(c)
	if !ok {
		return
	}

	requests, err := h.relationships.ListIncoming(c.Request.Context(), userID, repositories.IncomingFilter{
		SenderID: body.SenderID,
		Status:   models.RequestStatus(body.Status),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friendRequests": requests})
}

func (h *FriendHandler) CheckFriendship(c *gin.Context) {
	var body checkFriendshipBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeValidationError(c, err)
		return
	}

	isFriend, err := h.relationships.IsFriend(c.Request.Context(), body.UserID, body.FriendID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFriend": isFriend})
}

func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	friends, err := h.relationships.ListFriends(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

func (h *FriendHandler) ListFollowers(c *gin.Context) {
	h.listFollows(c, h.relationships.ListFollowers)
}

func (h *FriendHandler) ListFollowing(c *gin.Context) {
	h.listFollows(c, h.relationships.ListFollowing)
}

func (h *FriendHandler) listFollows(c *gin.Context, list func(context.Context, int64) ([]models.FollowEntry, error)) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entries, err := list(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *FriendHandler) Profile(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	profile, err := h.relationships.Profile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "code": "validation"})
		return 0, false
	}
	return id, true
}

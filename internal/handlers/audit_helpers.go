package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"social-service/internal/middleware"
	"social-service/internal/telemetry"
)

// base carries what every handler needs for audit and error reporting.
type base struct {
	audit  *telemetry.AuditEmitter
	logger *zap.Logger
}

func newBase(audit *telemetry.AuditEmitter, logger *zap.Logger) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{audit: audit, logger: logger}
}

func requestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	if id := c.GetHeader(middleware.RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

// auditActor names the user for audit records. The X-User-ID header is a
// fallback for attribution only and never authorizes anything.
func auditActor(c *gin.Context) *int64 {
	if userID, ok := middleware.UserID(c); ok {
		return &userID
	}

	if header := c.GetHeader("X-User-ID"); header != "" {
		if parsed, err := strconv.ParseInt(header, 10, 64); err == nil {
			return &parsed
		}
	}

	return nil
}

func (b base) emitAudit(ctx context.Context, c *gin.Context, level, action, text string) {
	if b.audit == nil {
		return
	}
	b.audit.Emit(ctx, telemetry.Record{
		Level:     level,
		Action:    action,
		Text:      text,
		Route:     c.FullPath(),
		RequestID: requestID(c),
		ActorID:   auditActor(c),
	})
}

// fail writes err and records an audit line for it.
func (b base) fail(c *gin.Context, action string, err error) {
	b.emitAudit(c.Request.Context(), c, telemetry.LevelError, action, err.Error())
	writeError(c, b.logger, err)
}

// caller returns the authenticated user id, writing 401 when there is none.
func caller(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, false
	}
	return id, true
}

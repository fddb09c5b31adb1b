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

type PostHandler struct {
	base
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService, audit *telemetry.AuditEmitter, logger *zap.Logger) *PostHandler {
	return &PostHandler{base: newBase(audit, logger), posts: posts}
}

type contentBody struct {
	Content string `json:"content" binding:"required,max=2000"`
}

type shareBody struct {
	FriendID int64 `json:"friendId" binding:"required,gt=0"`
}

// outcome maps a failed post action to its metric status.
func outcome(err error) string {
	if errors.Is(err, repositories.ErrBlocked) {
		return metrics.StatusBlocked
	}
	return metrics.StatusFailed
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	h.createContent(c, metrics.ActionPost, "post.create", func(userID int64, content string) (any, error) {
		return h.posts.CreatePost(c.Request.Context(), userID, content)
	})
}

func (h *PostHandler) CreateStory(c *gin.Context) {
	h.createContent(c, metrics.ActionStory, "story.create", func(userID int64, content string) (any, error) {
		return h.posts.CreateStory(c.Request.Context(), userID, content)
	})
}

func (h *PostHandler) createContent(c *gin.Context, action, auditAction string, create func(int64, string) (any, error)) {
	var body contentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		metrics.IncPostAction(action, metrics.StatusFailed)
		writeValidationError(c, err)
		return
	}
	userID, ok := caller(c)
	if !ok {
		metrics.IncPostAction(action, metrics.StatusFailed)
		return
	}

	created, err := create(userID, body.Content)
	if err != nil {
		metrics.IncPostAction(action, metrics.StatusFailed)
		h.fail(c, auditAction, err)
		return
	}

	h.emitAudit(c.Request.Context(), c, telemetry.LevelInfo, auditAction, "Created "+action)
	metrics.IncPostAction(action, metrics.StatusSuccess)
	c.JSON(http.StatusCreated, created)
}

func (h *PostHandler) Feed(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	posts, err := h.posts.Feed(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	post, err := h.posts.GetPost(c.Request.Context(), postID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) ToggleLike(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := caller(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	result, err := h.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		metrics.IncPostAction(metrics.ActionLike, outcome(err))
		h.fail(c, "post.like", err)
		return
	}

	verb := "unliked"
	if result.Liked {
		verb = "liked"
	}
	h.emitAudit(ctx, c, telemetry.LevelInfo, "post.like", "Post '"+strconv.FormatInt(postID, 10)+"' "+verb)
	metrics.IncPostAction(metrics.ActionLike, metrics.StatusSuccess)
	c.JSON(http.StatusOK, result)
}

func (h *PostHandler) Comment(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body contentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		metrics.IncPostAction(metrics.ActionComment, metrics.StatusFailed)
		writeValidationError(c, err)
		return
	}
	userID, ok := caller(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	comment, err := h.posts.Comment(ctx, postID, userID, body.Content)
	if err != nil {
		metrics.IncPostAction(metrics.ActionComment, outcome(err))
		h.fail(c, "post.comment", err)
		return
	}

	h.emitAudit(ctx, c, telemetry.LevelInfo, "post.comment", "Commented on post '"+strconv.FormatInt(postID, 10)+"'")
	metrics.IncPostAction(metrics.ActionComment, metrics.StatusSuccess)
	c.JSON(http.StatusCreated, comment)
}

func (h *PostHandler) ListComments(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	comments, err := h.posts.ListComments(c.Request.Context(), postID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *PostHandler) Share(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body shareBody
	if err := c.ShouldBindJSON(&body); err != nil {
		metrics.IncPostAction(metrics.ActionShare, metrics.StatusFailed)
		writeValidationError(c, err)
		return
	}
	userID, ok := caller(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	share, err := h.posts.Share(ctx, postID, userID, body.FriendID)
	if err != nil {
		metrics.IncPostAction(metrics.ActionShare, outcome(err))
		h.fail(c, "post.share", err)
		return
	}

	h.emitAudit(ctx, c, telemetry.LevelInfo, "post.share",
		"Post '"+strconv.FormatInt(postID, 10)+"' shared with '"+strconv.FormatInt(body.FriendID, 10)+"'")
	metrics.IncPostAction(metrics.ActionShare, metrics.StatusSuccess)
	c.JSON(http.StatusOK, gin.H{"share": share})
}

func (h *PostHandler) ActiveStories(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	stories, err := h.posts.ActiveStories(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stories)
}

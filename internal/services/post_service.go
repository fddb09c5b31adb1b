package services

import (
	"context"
	"fmt"
	"time"

	"social-service/internal/models"
	"social-service/internal/notify"
	"social-service/internal/repositories"
)

const (
	// StoryTTL is how long a story stays visible after it is posted.
	StoryTTL = 24 * time.Hour

	feedLimit = 50
)

// PostService covers posts, likes, comments, shares and stories. Authors who
// block a user also stop that user from engaging with their posts.
type PostService struct {
	posts         repositories.PostRepository
	stories       repositories.StoryRepository
	relationships RelationshipChecker
	users         repositories.UserRepository
	notifier      notify.Emitter
	now           func() time.Time
}

func NewPostService(
	posts repositories.PostRepository,
	stories repositories.StoryRepository,
	relationships RelationshipChecker,
	users repositories.UserRepository,
	notifier notify.Emitter,
) *PostService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &PostService{
		posts:         posts,
		stories:       stories,
		relationships: relationships,
		users:         users,
		notifier:      notifier,
		now:           time.Now,
	}
}

func (s *PostService) CreatePost(ctx context.Context, userID int64, content string) (*models.Post, error) {
	post, err := s.posts.Create(ctx, userID, content)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, postID int64) (*models.PostView, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	return post, nil
}

func (s *PostService) Feed(ctx context.Context, viewerID int64) ([]models.PostView, error) {
	return s.posts.Feed(ctx, viewerID, feedLimit)
}

// ToggleLike notifies the author only when the toggle adds a like.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID int64) (models.LikeResult, error) {
	post, err := s.engageable(ctx, postID, userID)
	if err != nil {
		return models.LikeResult{}, err
	}

	result, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return result, fmt.Errorf("toggle like: %w", err)
	}

	if result.Liked {
		s.notifyAuthor(ctx, post, userID, models.NotificationLike, "liked your post.")
	}
	return result, nil
}

func (s *PostService) Comment(ctx context.Context, postID, userID int64, content string) (*models.Comment, error) {
	post, err := s.engageable(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	comment, err := s.posts.AddComment(ctx, postID, userID, content)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	s.notifyAuthor(ctx, post, userID, models.NotificationComment, "commented on your post.")
	return comment, nil
}

func (s *PostService) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	return s.posts.ListComments(ctx, postID)
}

// Share sends postID to friendID. It is refused when friendID has blocked
// the sharer.
func (s *PostService) Share(ctx context.Context, postID, userID, friendID int64) (*models.Share, error) {
	if userID == friendID {
		return nil, repositories.ErrSelfShare
	}
	blocked, err := s.relationships.IsBlocked(ctx, friendID, userID)
	if err != nil {
		return nil, fmt.Errorf("check block: %w", err)
	}
	if blocked {
		return nil, repositories.ErrBlocked
	}

	share, err := s.posts.Share(ctx, postID, userID, friendID)
	if err != nil {
		return nil, fmt.Errorf("share post: %w", err)
	}

	s.notifier.Emit(ctx, models.Notification{
		UserID:      friendID,
		SenderID:    userID,
		Type:        models.NotificationShare,
		Content:     s.displayName(ctx, userID) + " shared a post with you.",
		ReferenceID: postID,
	})
	return share, nil
}

func (s *PostService) CreateStory(ctx context.Context, userID int64, content string) (*models.Story, error) {
	story, err := s.stories.Create(ctx, userID, content, s.now().Add(StoryTTL))
	if err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}
	return story, nil
}

func (s *PostService) ActiveStories(ctx context.Context, viewerID int64) ([]models.Story, error) {
	return s.stories.ListActive(ctx, viewerID, s.now())
}

// engageable loads the post and refuses users its author has blocked.
func (s *PostService) engageable(ctx context.Context, postID, userID int64) (*models.PostView, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if post.UserID == userID {
		return post, nil
	}
	blocked, err := s.relationships.IsBlocked(ctx, post.UserID, userID)
	if err != nil {
		return nil, fmt.Errorf("check block: %w", err)
	}
	if blocked {
		return nil, repositories.ErrBlocked
	}
	return post, nil
}

func (s *PostService) notifyAuthor(ctx context.Context, post *models.PostView, actorID int64, kind models.NotificationType, text string) {
	if post.UserID == actorID {
		return
	}
	s.notifier.Emit(ctx, models.Notification{
		UserID:      post.UserID,
		SenderID:    actorID,
		Type:        kind,
		Content:     s.displayName(ctx, actorID) + " " + text,
		ReferenceID: post.ID,
	})
}

func (s *PostService) displayName(ctx context.Context, userID int64) string {
	if user, err := s.users.GetByID(ctx, userID); err == nil && user.Username != "" {
		return user.Username
	}
	return "Someone"
}

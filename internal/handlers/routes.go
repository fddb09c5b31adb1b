package handlers

import (
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Friends       *FriendHandler
	Blocks        *BlockHandler
	Messages      *MessageHandler
	Notifications *NotificationHandler
	Posts         *PostHandler
}

// Register mounts the API on api. Authentication is installed by the caller;
// limited is applied to state-changing routes only.
func (h Handlers) Register(api *gin.RouterGroup, limited gin.HandlerFunc) {
	if limited == nil {
		limited = func(c *gin.Context) { c.Next() }
	}

	fr := api.Group("/friend-request")
	fr.POST("/send", limited, h.Friends.SendRequest)
	fr.POST("/accept", limited, h.Friends.AcceptRequest)
	fr.POST("/reject", limited, h.Friends.RejectRequest)
	fr.POST("/check", h.Friends.CheckRequestStatus)
	fr.POST("/list", h.Friends.ListIncoming)
	fr.POST("/check-friendship", h.Friends.CheckFriendship)

	api.GET("/friends", h.Friends.ListFriends)
	api.GET("/users/:id/followers", h.Friends.ListFollowers)
	api.GET("/users/:id/following", h.Friends.ListFollowing)
	api.GET("/users/:id/profile", h.Friends.Profile)

	user := api.Group("/user")
	user.POST("/block", limited, h.Blocks.Block)
	user.POST("/unblock", limited, h.Blocks.Unblock)
	user.POST("/check-blocked", h.Blocks.CheckBlocked)
	user.GET("/blocked", h.Blocks.ListBlocked)

	msg := api.Group("/message")
	msg.POST("/send", limited, h.Messages.SendMessage)
	msg.GET("/conversation", h.Messages.Conversation)
	msg.GET("", h.Messages.ListConversations)

	notif := api.Group("/notification")
	notif.GET("", h.Notifications.List)
	notif.POST("/:id/read", h.Notifications.MarkRead)

	posts := api.Group("/posts")
	posts.POST("", limited, h.Posts.CreatePost)
	posts.GET("", h.Posts.Feed)
	posts.GET("/:id", h.Posts.GetPost)
	posts.POST("/:id/like", limited, h.Posts.ToggleLike)
	posts.POST("/:id/comments", limited, h.Posts.Comment)
	posts.GET("/:id/comments", h.Posts.ListComments)
	posts.POST("/:id/share", limited, h.Posts.Share)

	stories := api.Group("/stories")
	stories.POST("", limited, h.Posts.CreateStory)
	stories.GET("/active", h.Posts.ActiveStories)
}

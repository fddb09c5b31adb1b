package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusBlocked = "blocked"
)

var (
	socialMetricsOnce sync.Once

	friendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_requests_total",
			Help: "Total number of friend request attempts",
		},
		[]string{"status"},
	)

	friendAcceptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_accepts_total",
			Help: "Total number of friend request accept attempts",
		},
		[]string{"status"},
	)

	friendRejectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_rejects_total",
			Help: "Total number of friend request reject attempts",
		},
		[]string{"status"},
	)

	blocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blocks_total",
			Help: "Total number of block attempts",
		},
		[]string{"status"},
	)

	unblocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unblocks_total",
			Help: "Total number of unblock attempts",
		},
		[]string{"status"},
	)

	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total number of direct message send attempts",
		},
		[]string{"status"},
	)

	postActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_actions_total",
			Help: "Total number of post, like, comment, share and story attempts",
		},
		[]string{"action", "status"},
	)
)

// Actions recorded by IncPostAction.
const (
	ActionPost    = "post"
	ActionLike    = "like"
	ActionComment = "comment"
	ActionShare   = "share"
	ActionStory   = "story"
)

func RegisterSocialMetrics() {
	socialMetricsOnce.Do(func() {
		prometheus.MustRegister(friendRequestsTotal, friendAcceptsTotal, friendRejectsTotal, blocksTotal, unblocksTotal, messagesTotal, postActionsTotal)
	})
}

func IncFriendRequest(status string) {
	RegisterSocialMetrics()
	friendRequestsTotal.WithLabelValues(status).Inc()
}

func IncFriendAccept(status string) {
	RegisterSocialMetrics()
	friendAcceptsTotal.WithLabelValues(status).Inc()
}

func IncFriendReject(status string) {
	RegisterSocialMetrics()
	friendRejectsTotal.WithLabelValues(status).Inc()
}

func IncBlock(status string) {
	RegisterSocialMetrics()
	blocksTotal.WithLabelValues(status).Inc()
}

func IncUnblock(status string) {
	RegisterSocialMetrics()
	unblocksTotal.WithLabelValues(status).Inc()
}

func IncMessage(status string) {
	RegisterSocialMetrics()
	messagesTotal.WithLabelValues(status).Inc()
}

func IncPostAction(action, status string) {
	RegisterSocialMetrics()
	postActionsTotal.WithLabelValues(action, status).Inc()
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"social-service/internal/metrics"
)

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func fetchMetrics(t *testing.T, s *testServer) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func metricValue(metricsBody, name, status string) (float64, bool) {
	target := name + `{status="` + status + `"}`
	for _, line := range strings.Split(metricsBody, "\n") {
		if strings.HasPrefix(line, target+" ") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return 0, false
			}
			value, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return 0, false
			}
			return value, true
		}
	}
	return 0, false
}

func assertMetricIncrement(t *testing.T, s *testServer, name, status string, call func()) {
	t.Helper()
	before, _ := metricValue(fetchMetrics(t, s), name, status)
	call()
	after, found := metricValue(fetchMetrics(t, s), name, status)
	require.True(t, found)
	require.Greater(t, after, before)
}

func TestFriendRequestMetricsFailed(t *testing.T) {
	metrics.RegisterSocialMetrics()
	s := newTestServer(t)

	assertMetricIncrement(t, s, "friend_requests_total", "failed", func() {
		rec := s.do(http.MethodPost, "/api/friend-request/send", 1, `{"senderId":"bad"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFriendRequestMetricsSuccess(t *testing.T) {
	metrics.RegisterSocialMetrics()
	s := newTestServer(t)

	assertMetricIncrement(t, s, "friend_requests_total", "success", func() {
		s.sendRequest(1, 2)
	})
}

func TestFriendAcceptMetricsFailed(t *testing.T) {
	metrics.RegisterSocialMetrics()
	s := newTestServer(t)

	assertMetricIncrement(t, s, "friend_accepts_total", "failed", func() {
		rec := s.do(http.MethodPost, "/api/friend-request/accept", 2, gin.H{"requestId": 777})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestFriendRejectMetricsSuccess(t *testing.T) {
	metrics.RegisterSocialMetrics()
	s := newTestServer(t)
	id := s.sendRequest(3, 4)

	assertMetricIncrement(t, s, "friend_rejects_total", "success", func() {
		rec := s.do(http.MethodPost, "/api/friend-request/reject", 4, gin.H{"requestId": id})
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMessageMetricsBlocked(t *testing.T) {
	metrics.RegisterSocialMetrics()
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/user/block", 2, gin.H{"blockerId": 2, "blockedId": 1}).Code)

	assertMetricIncrement(t, s, "messages_total", "blocked", func() {
		rec := s.do(http.MethodPost, "/api/message/send", 1, gin.H{"receiverId": 2, "content": "hi"})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

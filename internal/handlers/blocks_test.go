package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockUnblock(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/user/block", 1, gin.H{"blockerId": 1, "blockedId": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"User blocked successfully"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/user/block", 1, gin.H{"blockerId": 1, "blockedId": 2})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/user/check-blocked", 2, gin.H{"blockerId": 2, "blockedId": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isBlocked":false,"blockedBy":true}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/user/blocked", 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	blocked := decode[[]map[string]any](t, rec)
	require.Len(t, blocked, 1)
	assert.Equal(t, "user2", blocked[0]["username"])

	rec = s.do(http.MethodPost, "/api/user/unblock", 1, gin.H{"blockerId": 1, "blockedId": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"User unblocked successfully"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/user/unblock", 1, gin.H{"blockerId": 1, "blockedId": 2})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_blocked", decode[map[string]any](t, rec)["code"])
}

func TestBlock_MustActAsCaller(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/api/user/block", 3, gin.H{"blockerId": 1, "blockedId": 2})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/user/block", 1, gin.H{"blockerId": 1, "blockedId": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

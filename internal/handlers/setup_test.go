package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	"social-service/internal/middleware"
	"social-service/internal/notify"
	"social-service/internal/repositories"
	"social-service/internal/services"
	"social-service/internal/testutil"
)

const testSecret = "handlers-test-secret"

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	r := gin.New()
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	api := r.Group("/api", middleware.JWTAuth(testSecret))
	newTestHandlers(t).Register(api, nil)

	return &testServer{t: t, router: r}
}

// newTestHandlers wires every handler over a fresh sqlite store seeded with users 1..4.
func newTestHandlers(t *testing.T) Handlers {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := testutil.SetupTestDB(t)
	testutil.SeedUsers(t, database, 1, 2, 3, 4)

	friends := repositories.NewFriendRepository(database, nil, nil)
	blocks := repositories.NewBlockRepository(database, nil, nil)
	users := repositories.NewUserRepository(database)
	notificationRepo := repositories.NewNotificationRepository(database)
	emitter := notify.NewDispatcher(notificationRepo, nil, nil)

	rel := services.NewRelationshipService(friends, blocks, users, emitter, nil)
	messaging := services.NewMessagingService(repositories.NewMessageRepository(database, nil, nil), rel, users, emitter)
	posts := services.NewPostService(
		repositories.NewPostRepository(database, nil, nil),
		repositories.NewStoryRepository(database, nil, nil),
		rel, users, emitter)

	return Handlers{
		Friends:       NewFriendHandler(rel, nil, nil),
		Blocks:        NewBlockHandler(rel, nil, nil),
		Messages:      NewMessageHandler(messaging, nil, nil),
		Notifications: NewNotificationHandler(services.NewNotificationService(notificationRepo), nil),
		Posts:         NewPostHandler(posts, nil, nil),
	}
}

// do sends body as JSON on behalf of userID (0 means anonymous).
func (s *testServer) do(method, path string, userID int64, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		tok, err := middleware.GenerateToken(userID, "", testSecret, time.Hour)
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) sendRequest(sender, receiver int64) int64 {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/friend-request/send", sender, gin.H{"senderId": sender, "receiverId": receiver})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return int64(decode[map[string]any](s.t, rec)["id"].(float64))
}

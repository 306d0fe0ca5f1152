package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/venturelink/venturelink/internal/auth"
	"github.com/venturelink/venturelink/internal/database/testutil"
	"github.com/venturelink/venturelink/internal/middleware"
	"github.com/venturelink/venturelink/internal/models"
	"github.com/venturelink/venturelink/internal/realtime"
	"github.com/venturelink/venturelink/internal/services"
)

func newNotificationRouter(t *testing.T) (*gin.Engine, *services.NotificationService, *iauth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	require.NoError(t, db.Create(&models.User{
		ID:       "user-n1",
		Email:    "user-n1@example.com",
		Password: "hashed",
		Name:     "Nadia",
		Role:     models.RoleInvestor,
		IsActive: true,
	}).Error)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)

	svc, err := services.NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)
	handler := NewNotificationHandler(svc)

	router := gin.New()
	api := router.Group("/api", middleware.Auth(jwt))
	api.GET("/notifications", handler.List)
	api.GET("/notifications/unread", handler.UnreadCount)
	api.POST("/notifications/read-all", handler.MarkAllRead)
	api.POST("/notifications/:id/read", handler.MarkRead)

	return router, svc, jwt
}

func doAuthed(t *testing.T, router *gin.Engine, jwt *iauth.JWTService, method, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	token, err := jwt.GenerateAccessToken(iauth.AccessTokenInput{UserID: "user-n1"})
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestNotificationListRequiresAuth(t *testing.T) {
	router, _, _ := newNotificationRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotificationListAndMarkRead(t *testing.T) {
	router, svc, jwt := newNotificationRouter(t)

	dto, err := svc.Notify(context.Background(), services.NotifyInput{
		RecipientID: "user-n1",
		Type:        models.NotifyNewMessage,
		Message:     "New message from Alice",
	})
	require.NoError(t, err)

	rec, env := doAuthed(t, router, jwt, http.MethodGet, "/api/notifications")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var items []services.NotificationDTO
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	require.False(t, items[0].IsRead)

	rec, _ = doAuthed(t, router, jwt, http.MethodPost, "/api/notifications/"+dto.ID+"/read")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = doAuthed(t, router, jwt, http.MethodGet, "/api/notifications/unread")
	require.Equal(t, http.StatusOK, rec.Code)

	var unread struct {
		Unread int64 `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &unread))
	require.Zero(t, unread.Unread)
}

func TestNotificationMarkAllRead(t *testing.T) {
	router, svc, jwt := newNotificationRouter(t)

	for i := 0; i < 2; i++ {
		_, err := svc.Notify(context.Background(), services.NotifyInput{
			RecipientID: "user-n1",
			Type:        models.NotifyDealUpdated,
			Message:     "Deal status changed",
		})
		require.NoError(t, err)
	}

	rec, _ := doAuthed(t, router, jwt, http.MethodPost, "/api/notifications/read-all")
	require.Equal(t, http.StatusOK, rec.Code)

	_, env := doAuthed(t, router, jwt, http.MethodGet, "/api/notifications/unread")
	var unread struct {
		Unread int64 `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &unread))
	require.Zero(t, unread.Unread)
}

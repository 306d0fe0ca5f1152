package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/venturelink/venturelink/internal/app"
	iauth "github.com/venturelink/venturelink/internal/auth"
	"github.com/venturelink/venturelink/internal/database/testutil"
	"github.com/venturelink/venturelink/internal/realtime"
	"github.com/venturelink/venturelink/internal/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret", Issuer: "venturelink"})
	require.NoError(t, err)
	sessions, err := iauth.NewSessionService(db, jwt, iauth.SessionConfig{})
	require.NoError(t, err)
	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := &app.Config{}

	router, err := NewRouter(Dependencies{
		DB:       db,
		JWT:      jwt,
		Config:   cfg,
		Sessions: sessions,
		Hub:      realtime.NewHub(),
		Store:    store,
	})
	require.NoError(t, err)
	return router
}

func TestHealthEndpointIsPublic(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{
		"/api/auth/me",
		"/api/profiles",
		"/api/requests/incoming",
		"/api/deals",
		"/api/meetings",
		"/api/conversations",
		"/api/documents",
		"/api/notifications",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}
}

func TestWebsocketEndpointRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownRouteReturnsNotFoundEnvelope(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":false`)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/venturelink/venturelink/internal/auth"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *iauth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", Auth(jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(CtxUserIDKey)})
	})
	router.GET("/investors-only", Auth(jwt), RequireRole("investor"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, jwt
}

func TestAuthRejectsMissingAndMalformedHeaders(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	for _, header := range []string{"", "Token abc", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthAcceptsValidToken(t *testing.T) {
	router, jwt := newAuthTestRouter(t)

	token, err := jwt.GenerateAccessToken(iauth.AccessTokenInput{UserID: "user-1", Role: "entrepreneur"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "user-1")
}

func TestRequireRoleEnforcesRole(t *testing.T) {
	router, jwt := newAuthTestRouter(t)

	entrepreneur, err := jwt.GenerateAccessToken(iauth.AccessTokenInput{UserID: "user-2", Role: "entrepreneur"})
	require.NoError(t, err)
	investor, err := jwt.GenerateAccessToken(iauth.AccessTokenInput{UserID: "user-3", Role: "investor"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/investors-only", nil)
	req.Header.Set("Authorization", "Bearer "+entrepreneur)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/investors-only", nil)
	req.Header.Set("Authorization", "Bearer "+investor)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

// Package middleware_test provides unit tests for the API middleware.
package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/omnidesk/autoreply-service/internal/api/middleware"
)

func performRequest(engine *gin.Engine, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func setupEngine(handler gin.HandlerFunc, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	group := engine.Group("/", mw...)
	group.GET("/ping", handler)
	return engine
}

func TestAuthenticate_ValidToken(t *testing.T) {
	auth := middleware.NewAuthMiddleware("svc-key")

	var captured string
	engine := setupEngine(func(c *gin.Context) {
		captured = middleware.GetToken(c)
		c.Status(http.StatusOK)
	}, auth.Authenticate())

	w := performRequest(engine, "GET", "/ping", "Bearer user-token-123")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-token-123", captured)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	auth := middleware.NewAuthMiddleware("svc-key")

	engine := setupEngine(func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, auth.Authenticate())

	w := performRequest(engine, "GET", "/ping", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing authorization header")
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	auth := middleware.NewAuthMiddleware("svc-key")

	engine := setupEngine(func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, auth.Authenticate())

	w := performRequest(engine, "GET", "/ping", "Basic dXNlcjpwYXNz")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid authorization header format")
}

func TestAuthenticateService_ValidKey(t *testing.T) {
	auth := middleware.NewAuthMiddleware("svc-key")

	engine := setupEngine(func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, auth.AuthenticateService())

	w := performRequest(engine, "GET", "/ping", "Bearer svc-key")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticateService_WrongKey(t *testing.T) {
	auth := middleware.NewAuthMiddleware("svc-key")

	engine := setupEngine(func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, auth.AuthenticateService())

	w := performRequest(engine, "GET", "/ping", "Bearer not-the-key")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid service key")
}

func TestExtractTenant_SetsContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	tenantMw := middleware.NewTenantMiddleware()

	var tenantID string
	engine.GET("/tenants/:tenantId/ping", tenantMw.ExtractTenant(), func(c *gin.Context) {
		tenantID = middleware.GetTenantID(c)
		c.Status(http.StatusOK)
	})

	w := performRequest(engine, "GET", "/tenants/tenant-42/ping", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tenant-42", tenantID)
}

func TestGetTenantContext_ReadsPathParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	var tc *middleware.TenantContext
	engine.GET("/tenants/:tenantId/conversations/:conversationId", func(c *gin.Context) {
		tc = middleware.GetTenantContext(c)
		c.Status(http.StatusOK)
	})

	w := performRequest(engine, "GET", "/tenants/tenant-42/conversations/conv-7", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tenant-42", tc.TenantID)
	assert.Equal(t, "conv-7", tc.ConversationID)
}

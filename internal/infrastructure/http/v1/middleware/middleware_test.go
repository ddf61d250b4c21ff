package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restopos/internal/core/apperror"
	appctx "restopos/internal/core/context"
	"restopos/pkg/logger"
)

type stubValidator struct {
	user *appctx.UserContext
	err  error
	got  string
}

func (s *stubValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	s.got = token
	return s.user, s.err
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), Trace(), Logger(logger.Nop()), ErrorHandler())
	r.GET("/x", handlers...)
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_AppError(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("order", "42"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, apperror.CodeNotFound, body["code"])
}

func TestErrorHandler_UnknownErrorIsHidden(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	w := serve(r, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Equal(t, "req-1", body["details"].(map[string]any)["request_id"])
}

func TestRecovery_ConvertsPanic(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		panic("boom")
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, decode(t, w)["code"])
}

func TestTrace_EchoesAndGeneratesIDs(t *testing.T) {
	var seen *appctx.TraceContext
	r := newEngine(func(c *gin.Context) {
		seen = appctx.GetTrace(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-7")
	w := serve(r, req)

	require.NotNil(t, seen)
	assert.Equal(t, "req-7", seen.RequestID)
	assert.NotEmpty(t, seen.TraceID)
	assert.Equal(t, "req-7", w.Header().Get(HeaderRequestID))
	assert.Equal(t, seen.TraceID, w.Header().Get(HeaderTraceID))
}

func TestAuth(t *testing.T) {
	validator := &stubValidator{user: &appctx.UserContext{UserID: "u-1", Roles: []string{"cashier"}}}
	var userID string
	r := newEngine(Auth(validator), RequireRole("admin", "cashier"), func(c *gin.Context) {
		userID = appctx.GetUserID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("missing header", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := serve(r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer tok")
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "tok", validator.got)
		assert.Equal(t, "u-1", userID)
	})

	t.Run("invalid token", func(t *testing.T) {
		bad := newEngine(Auth(&stubValidator{err: errors.New("expired")}), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer tok")
		w := serve(bad, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole_Forbidden(t *testing.T) {
	validator := &stubValidator{user: &appctx.UserContext{UserID: "u-2", Roles: []string{"kitchen"}}}
	r := newEngine(Auth(validator), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperror.CodeForbidden, decode(t, w)["code"])
}

package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/deppfellow/go-marketplace/internal/config"
	"github.com/deppfellow/go-marketplace/internal/errs"
	"github.com/deppfellow/go-marketplace/internal/logger"
	"github.com/deppfellow/go-marketplace/internal/server"
)

func testServer() *server.Server {
	l := zerolog.Nop()
	cfg := &config.Config{}
	cfg.Server.RateLimitPerSecond = 1
	cfg.Auth.AdminRole = "org:admin"
	return &server.Server{Config: cfg, Logger: &l}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestRequestIDReusesIncomingHeader(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Body.String() != "abc-123" {
		t.Fatalf("expected request id abc-123, got %q", rec.Body.String())
	}
	if rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected response header to echo request id")
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestEnhanceContextBindsLoggerToRequestContext(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	s := testServer()
	s.Logger = &l

	e := echo.New()
	e.Use(RequestID(), NewContextEnhancer(s).EnhanceContext())
	e.GET("/withdrawals", func(c echo.Context) error {
		logger.FromContext(c.Request().Context()).Info().Msg("from service")
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/withdrawals", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	e.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) || !strings.Contains(out, `"path":"/withdrawals"`) {
		t.Fatalf("expected request fields on the context logger, got %s", out)
	}
}

func TestRequireRole(t *testing.T) {
	s := testServer()
	auth := NewAuthMiddleware(s)

	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{name: "admin", role: "org:admin", wantStatus: http.StatusOK},
		{name: "member", role: "org:member", wantStatus: http.StatusForbidden},
		{name: "no role", role: "", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler

			setRole := func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error {
					return auth.authenticated(c, next, "user_1", tt.role)
				}
			}
			e.GET("/admin", func(c echo.Context) error {
				return c.String(http.StatusOK, GetUserID(c))
			}, setRole, auth.RequireRole("org:admin"))

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusForbidden && decodeError(t, rec).Code != "FORBIDDEN" {
				t.Fatalf("expected FORBIDDEN body, got %s", rec.Body.String())
			}
		})
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	s := testServer()
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, NewAuthMiddleware(s).RequireAuth)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED, got %q", body.Code)
	}
}

func TestGlobalErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "http error", err: errs.InsufficientBalance("no"), wantStatus: http.StatusConflict, wantCode: errs.CodeInsufficientBalance},
		{name: "wrapped http error", err: errors.Join(errors.New("ctx"), errs.NotFound("withdrawal")), wantStatus: http.StatusNotFound, wantCode: "WITHDRAWAL_NOT_FOUND"},
		{name: "echo route not found", err: echo.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "echo method not allowed", err: echo.ErrMethodNotAllowed, wantStatus: http.StatusMethodNotAllowed, wantCode: "METHOD_NOT_ALLOWED"},
		{name: "no rows", err: pgx.ErrNoRows, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.HTTPErrorHandler = NewGlobalMiddlewares(testServer()).GlobalErrorHandler
			e.GET("/", func(c echo.Context) error { return tt.err })

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if body := decodeError(t, rec); body.Code != tt.wantCode {
				t.Fatalf("expected %q, got %q", tt.wantCode, body.Code)
			}
		})
	}
}

func TestRateLimitRejectsBurst(t *testing.T) {
	s := testServer()
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	e.Use(NewRateLimitMiddleware(s).Limit())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	var limited bool
	for range 10 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			if body := decodeError(t, rec); body.Code != "TOO_MANY_REQUESTS" {
				t.Fatalf("expected TOO_MANY_REQUESTS, got %q", body.Code)
			}
			break
		}
	}
	if !limited {
		t.Fatal("expected the limiter to reject a burst")
	}
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fixapp/fixapp-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "echo error passthrough",
			err:      echo.NewHTTPError(http.StatusNotFound, "route not found"),
			wantCode: http.StatusNotFound,
			wantMsg:  "route not found",
		},
		{
			name:     "invalid credentials",
			err:      domain.ErrInvalidCredentials,
			wantCode: http.StatusUnauthorized,
			wantMsg:  "invalid credentials",
		},
		{
			name:     "session not found",
			err:      domain.ErrSessionNotFound,
			wantCode: http.StatusUnauthorized,
			wantMsg:  "invalid or expired session",
		},
		{
			name:     "wrapped session not found",
			err:      fmt.Errorf("validate: %w", domain.ErrSessionNotFound),
			wantCode: http.StatusUnauthorized,
			wantMsg:  "invalid or expired session",
		},
		{
			name:     "user not found",
			err:      domain.ErrUserNotFound,
			wantCode: http.StatusNotFound,
			wantMsg:  "user not found",
		},
		{
			name:     "user exists",
			err:      domain.ErrUserExists,
			wantCode: http.StatusConflict,
			wantMsg:  "user already exists",
		},
		{
			name:     "storage fault is a generic 500",
			err:      fmt.Errorf("find session: %w", errors.New("disk I/O error")),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "internal server error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}

			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error != tc.wantMsg {
				t.Fatalf("expected message %q, got %q", tc.wantMsg, resp.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := c.NoContent(http.StatusNoContent); err != nil {
		t.Fatalf("committing response: %v", err)
	}

	// A committed response must be left alone.
	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrUserExists, c)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("committed response was overwritten: %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("committed response body was overwritten: %q", rec.Body.String())
	}
}

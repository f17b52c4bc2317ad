package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chapunchi/ledger-service/internal/domain/entity"
	"github.com/chapunchi/ledger-service/internal/infrastructure/logger"
)

// staticAuthenticator implements port.Authenticator with a fixed pair
type staticAuthenticator struct {
	username string
	password string
}

func (a staticAuthenticator) Verify(ctx context.Context, username, password string) error {
	if subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1 &&
		subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1 {
		return nil
	}
	return entity.ErrUnauthorized
}

func (a staticAuthenticator) Reload(ctx context.Context) error { return nil }

func TestBasicAuthMiddleware(t *testing.T) {
	log := logger.NewLogger()

	tests := []struct {
		name       string
		username   string
		password   string
		omitHeader bool
		wantStatus int
	}{
		{
			name:       "valid credentials",
			username:   "svc",
			password:   "secret",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong password",
			username:   "svc",
			password:   "nope",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong username",
			username:   "intruder",
			password:   "secret",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing authorization header",
			omitHeader: true,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}
			handler := BasicAuthMiddleware(next, staticAuthenticator{username: "svc", password: "secret"}, log)

			req := httptest.NewRequest(http.MethodGet, "/balance/12345", nil)
			if !tt.omitHeader {
				req.SetBasicAuth(tt.username, tt.password)
			}

			w := httptest.NewRecorder()
			handler(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if got := errorBody(t, w.Body); got != "Unauthorized" {
					t.Errorf("error = %q, want %q", got, "Unauthorized")
				}
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	log := logger.NewLogger()

	t.Run("generates a request id", func(t *testing.T) {
		var seen string
		next := func(w http.ResponseWriter, r *http.Request) {
			seen, _ = r.Context().Value("request_id").(string)
		}
		handler := RequestIDMiddleware(next, log)

		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if seen == "" {
			t.Error("request id not set on context")
		}
		if got := w.Header().Get("X-Request-ID"); got != seen {
			t.Errorf("X-Request-ID header = %q, want %q", got, seen)
		}
	})

	t.Run("propagates a provided request id", func(t *testing.T) {
		var seen string
		next := func(w http.ResponseWriter, r *http.Request) {
			seen, _ = r.Context().Value("request_id").(string)
		}
		handler := RequestIDMiddleware(next, log)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "caller-supplied")

		handler(httptest.NewRecorder(), req)

		if seen != "caller-supplied" {
			t.Errorf("request id = %q, want caller-supplied", seen)
		}
	})
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	log := logger.NewLogger()

	next := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}
	handler := LoggingMiddleware(next, log)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("status = %v, want %v", w.Code, http.StatusTeapot)
	}
}

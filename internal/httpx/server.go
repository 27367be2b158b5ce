package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

type userKey struct{}

// RequireUser: identitas datang dari gateway di header X-User-Id. Format dan
// verifikasi token bukan urusan service ini.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := r.Header.Get("X-User-Id")
		if uid == "" {
			writeErr(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing X-User-Id", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, uid)))
	})
}

// UserID returns the authenticated user id set by RequireUser.
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(userKey{}).(string)
	return uid
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errResp struct {
	IsError bool   `json:"is_error"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeErr(w http.ResponseWriter, code int, kind, msg string, data any) {
	writeJSON(w, code, errResp{IsError: true, Kind: kind, Message: msg, Data: data})
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brandmark/internal/auth"

	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	valid, _, err := tokens.Issue()
	require.NoError(t, err)

	expired, _, err := auth.NewTokenManager("test-secret", -time.Minute).Issue()
	require.NoError(t, err)

	foreign, _, err := auth.NewTokenManager("other-secret", time.Hour).Issue()
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := AuthMiddleware(tokens)(next)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"foreign token", "Bearer " + foreign, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/batches", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			require.Equal(t, tt.want, rec.Code)
		})
	}
}

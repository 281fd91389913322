package transport

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type stubHealth map[string]string

func (s stubHealth) Health(ctx context.Context) map[string]string { return s }

func TestHealthHandler(t *testing.T) {
	for _, tc := range []struct {
		status string
		code   int
	}{
		{"up", http.StatusOK},
		{"down", http.StatusServiceUnavailable},
	} {
		r := chi.NewRouter()
		NewHealthHandler(stubHealth{"status": tc.status}).RegisterRoutes(r)

		live := serve(r, "GET", "/api/health", nil)
		assert.Equal(t, http.StatusOK, live.Code)
		assert.JSONEq(t, `{"status":"OK","message":"Server is running"}`, live.Body.String())

		db := serve(r, "GET", "/api/health/db", nil)
		assert.Equal(t, tc.code, db.Code)
	}
}

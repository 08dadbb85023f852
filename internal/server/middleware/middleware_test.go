package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/healthz", "/healthz"},
		{"/api/history", "/api/history"},
		{"/api/sessions", "/api/sessions"},
		{"/api/sessions/", "/api/sessions/"},
		{"/api/sessions/3f2a9c1b-0000-4000-8000-000000000001", "/api/sessions/{id}"},
		{"/api/sessions/abc/process", "/api/sessions/{id}/process"},
		{"/api/sessions/abc/entries/def", "/api/sessions/{id}/entries/{entryID}"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.path), tt.path)
	}
}

func TestResponseWriters_CaptureStatus(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	rec := httptest.NewRecorder()
	MetricsMiddleware()(RequestLogger()(h)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rw := newResponseWriter(httptest.NewRecorder())
	_, _ = rw.Write([]byte("1234"))
	assert.Equal(t, http.StatusOK, rw.statusCode)
	assert.EqualValues(t, 4, rw.written)
}

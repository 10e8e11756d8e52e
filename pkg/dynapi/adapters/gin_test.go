package adapters

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGinAdapter_Mount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	adapter := NewGinAdapter(engine)
	assert.Equal(t, "Gin", adapter.Name())

	_, err := adapter.Mount(newNotesInstance(t))
	require.NoError(t, err)

	tests := []struct {
		method string
		target string
		body   string
		status int
		want   string
	}{
		{http.MethodGet, "/notes/hello/grace", "", http.StatusOK, "hello grace"},
		{http.MethodGet, "/notes", "", http.StatusOK, `["first","second"]`},
		{http.MethodPost, "/notes", `{"title":"b"}`, http.StatusCreated, `{"title":"b"}`},
		{http.MethodGet, "/notes/missing", "", http.StatusNotFound, "no such note"},
		{http.MethodDelete, "/notes/9", "", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, tt.status, rec.Code, tt.target)
		if tt.want != "" {
			assert.Contains(t, rec.Body.String(), tt.want, tt.target)
		}
	}
}

func TestGinAdapter_LogsFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	engine := gin.New()
	adapter := NewGinAdapter(engine, WithLogger(zap.New(core)))

	_, err := adapter.Mount(newNotesInstance(t))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes/hello/x", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	served := logs.FilterMessage("request served").All()
	require.Len(t, served, 1)
	assert.Equal(t, "/notes/hello/x", served[0].ContextMap()["path"])
	assert.Equal(t, int64(http.StatusOK), served[0].ContextMap()["status"])
}

func TestGinAdapter_StopBeforeStart(t *testing.T) {
	assert.NoError(t, NewDefaultGinAdapter().Stop(t.Context()))
}

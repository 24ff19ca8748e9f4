package apiversion

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(d *Dispatcher, handlers map[Version]gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(d.Middleware())
	r.GET("/api/leads", d.Handle(handlers))
	return r
}

func namedHandler(d *Dispatcher, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		d.Respond(c, http.StatusOK, map[string]any{"handler": name})
	}
}

func TestDispatchExactMatch(t *testing.T) {
	d := NewDispatcher(DefaultRegistry(), DefaultMigrationGraph())
	router := newTestRouter(d, map[Version]gin.HandlerFunc{
		MustParse("1.0"): namedHandler(d, "h1"),
		MustParse("2.0"): namedHandler(d, "h2"),
	})

	req := httptest.NewRequest("GET", "/api/leads", nil)
	req.Header.Set("X-API-Version", "2.0")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "h2", body["handler"])
}

func TestDispatchLowestCompatibleFallback(t *testing.T) {
	d := NewDispatcher(DefaultRegistry(), DefaultMigrationGraph())
	router := newTestRouter(d, map[Version]gin.HandlerFunc{
		MustParse("1.0"): namedHandler(d, "h1"),
		MustParse("2.0"): namedHandler(d, "h2"),
	})

	// 1.1 has no handler of its own; the earliest newer-or-equal handler
	// (2.0) serves it, not the older 1.0 one.
	req := httptest.NewRequest("GET", "/api/leads", nil)
	req.Header.Set("X-API-Version", "1.1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "h2", body["handler"])
}

func TestDispatchNoCompatibleHandler(t *testing.T) {
	d := NewDispatcher(DefaultRegistry(), DefaultMigrationGraph())
	router := newTestRouter(d, map[Version]gin.HandlerFunc{
		MustParse("1.0"): namedHandler(d, "h1"),
	})

	// client on 2.0 can never accept a 1.0-shaped response
	req := httptest.NewRequest("GET", "/api/leads", nil)
	req.Header.Set("X-API-Version", "2.0")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body struct {
		Error   string `json:"error"`
		Details struct {
			SupportedVersions []string `json:"supported_versions"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Unsupported API version", body.Error)
	assert.Equal(t, []string{"1.0", "1.1", "2.0"}, body.Details.SupportedVersions)
}

func TestDispatchHandlerPanicBecomes500(t *testing.T) {
	d := NewDispatcher(DefaultRegistry(), DefaultMigrationGraph())
	router := newTestRouter(d, map[Version]gin.HandlerFunc{
		MustParse("1.0"): func(c *gin.Context) { panic("boom: secret internals") },
	})

	req := httptest.NewRequest("GET", "/api/leads", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotContains(t, rr.Body.String(), "secret internals")
}

func TestDispatchResponseHeaders(t *testing.T) {
	d := NewDispatcher(DefaultRegistry(), DefaultMigrationGraph())
	router := newTestRouter(d, map[Version]gin.HandlerFunc{
		MustParse("1.0"): namedHandler(d, "h1"),
		MustParse("2.0"): namedHandler(d, "h2"),
	})

	t.Run("active version", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/leads", nil)
		req.Header.Set("X-API-Version", "2.0")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, "2.0", rr.Header().Get("X-API-Version"))
		assert.Equal(t, "1.0, 1.1, 2.0", rr.Header().Get("X-Supported-Versions"))
		assert.Equal(t, "2.0", rr.Header().Get("X-Latest-Version"))
		assert.Equal(t, "application/vnd.suncrest.v2.0+json", rr.Header().Get("Content-Type"))
		assert.Empty(t, rr.Header().Get("X-API-Version-Status"))
	})

	t.Run("deprecated version", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/leads", nil)
		req.Header.Set("X-API-Version", "1.0")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, "1.0", rr.Header().Get("X-API-Version"))
		assert.Equal(t, "deprecated", rr.Header().Get("X-API-Version-Status"))
		assert.Equal(t, "2026-12-31", rr.Header().Get("X-API-Sunset-Date"))
		assert.Contains(t, rr.Header().Get("Warning"), "deprecated")
	})
}

func TestRespondWithHeadersMergesWithoutOverride(t *testing.T) {
	d := NewDispatcher(DefaultRegistry(), DefaultMigrationGraph())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(d.Middleware())
	r.GET("/api/leads", d.Handle(map[Version]gin.HandlerFunc{
		MustParse("2.0"): func(c *gin.Context) {
			d.RespondWithHeaders(c, http.StatusOK, map[string]any{"ok": true}, map[string]string{
				"X-Total-Count": "42",
				"X-API-Version": "spoofed",
			})
		},
	}))

	req := httptest.NewRequest("GET", "/api/leads", nil)
	req.Header.Set("X-API-Version", "2.0")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "42", rr.Header().Get("X-Total-Count"))
	// the version headers always win
	assert.Equal(t, "2.0", rr.Header().Get("X-API-Version"))
}

func TestRespondTransformsForResolvedVersion(t *testing.T) {
	d := NewDispatcher(DefaultRegistry(), DefaultMigrationGraph())

	payload := map[string]any{
		"id":                 "123",
		"enhanced_analytics": map[string]any{"views": 10},
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(d.Middleware())
	r.GET("/api/leads", func(c *gin.Context) {
		d.Respond(c, http.StatusOK, payload)
	})

	req := httptest.NewRequest("GET", "/api/leads", nil)
	req.Header.Set("X-API-Version", "1.0")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "123", body["id"])
	assert.NotContains(t, body, "enhanced_analytics")
}

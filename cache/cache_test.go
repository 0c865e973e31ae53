package cache

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, Key("jobs", "/api/jobs?"), Key("jobs", "/api/jobs?"))
	assert.NotEqual(t, Key("jobs", "/api/jobs?"), Key("jobs", "/api/jobs?q=x"))
	assert.NotEqual(t, Key("jobs", "f"), Key("products", "f"))
	assert.Regexp(t, `^jobs:[0-9a-f]{16}$`, Key("jobs", "anything"))
}

func TestSetGetInvalidate(t *testing.T) {
	q := New(16, time.Minute)

	gen := q.Generation("jobs")
	require.True(t, q.Set("jobs", "a", gen, Entry{Status: 200, Body: []byte("jobs-a")}))
	require.True(t, q.Set("products", "a", q.Generation("products"), Entry{Status: 200, Body: []byte("products-a")}))

	e, ok := q.Get("jobs", "a")
	require.True(t, ok)
	assert.Equal(t, "jobs-a", string(e.Body))

	q.Invalidate("jobs")

	_, ok = q.Get("jobs", "a")
	assert.False(t, ok)
	_, ok = q.Get("products", "a")
	assert.True(t, ok, "other entities stay cached")
}

func TestSetAfterInvalidateIsDropped(t *testing.T) {
	q := New(16, time.Minute)

	gen := q.Generation("media")
	q.Invalidate("media")

	assert.False(t, q.Set("media", "a", gen, Entry{Status: 200}))
	_, ok := q.Get("media", "a")
	assert.False(t, ok)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	q := New(16, time.Minute)

	calls := 0
	router := gin.New()
	router.GET("/api/jobs", Middleware(q, "jobs"), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	get := func(url string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest("GET", url, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := get("/api/jobs")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"calls":1}`, w.Body.String())

	w = get("/api/jobs")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"calls":1}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	w = get("/api/jobs?department=Sales")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	q.Invalidate("jobs")
	w = get("/api/jobs")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"calls":3}`, w.Body.String())
}

func TestMiddlewareSkipsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	q := New(16, time.Minute)

	router := gin.New()
	router.GET("/api/jobs/:id", Middleware(q, "jobs"), func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	req, _ := http.NewRequest("GET", "/api/jobs/9", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Zero(t, q.Len())
}

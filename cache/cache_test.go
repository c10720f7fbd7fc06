package cache

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key("/api/writeups", "page=1")
	b := Key("/api/writeups", "page=1")
	c := Key("/api/writeups", "page=2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestKey_SeparatorMatters(t *testing.T) {
	// "ab"+"c" and "a"+"bc" must not collide.
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
}

func TestStore_SetAndGet(t *testing.T) {
	store := New(time.Minute)

	store.Set("k", []byte("payload"), "application/json")

	body, contentType, ok := store.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("payload"), body)
	assert.Equal(t, "application/json", contentType)
}

func TestStore_SetCopiesBody(t *testing.T) {
	store := New(time.Minute)
	original := []byte("payload")

	store.Set("k", original, "text/plain")
	original[0] = 'X'

	body, _, ok := store.Get("k")
	assert.True(t, ok)
	assert.Equal(t, byte('p'), body[0])
}

func TestStore_Expiry(t *testing.T) {
	store := New(10 * time.Millisecond)

	store.Set("k", []byte("payload"), "text/plain")
	time.Sleep(20 * time.Millisecond)

	_, _, ok := store.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestStore_Clear(t *testing.T) {
	store := New(time.Minute)

	store.Set("a", []byte("1"), "text/plain")
	store.Set("b", []byte("2"), "text/plain")
	assert.Equal(t, 2, store.Len())

	store.Clear()

	assert.Equal(t, 0, store.Len())
	_, _, ok := store.Get("a")
	assert.False(t, ok)
}

func TestStore_ClearExpired(t *testing.T) {
	store := New(10 * time.Millisecond)

	store.Set("old", []byte("1"), "text/plain")
	time.Sleep(20 * time.Millisecond)
	store.Set("fresh", []byte("2"), "text/plain")

	store.ClearExpired()

	assert.Equal(t, 1, store.Len())
	_, _, ok := store.Get("fresh")
	assert.True(t, ok)
}

func setupCachedRouter(store *Store, hits *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(store.Middleware())
	router.GET("/api/things", func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusOK, gin.H{"hits": *hits})
	})
	router.GET("/api/broken", func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMiddleware_HitAfterMiss(t *testing.T) {
	store := New(time.Minute)
	hits := 0
	router := setupCachedRouter(store, &hits)

	first := get(router, "/api/things")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := get(router, "/api/things")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, hits)
}

func TestMiddleware_QueryStringSeparatesEntries(t *testing.T) {
	store := New(time.Minute)
	hits := 0
	router := setupCachedRouter(store, &hits)

	get(router, "/api/things?page=1")
	get(router, "/api/things?page=2")

	assert.Equal(t, 2, hits)
}

func TestMiddleware_ErrorsNotCached(t *testing.T) {
	store := New(time.Minute)
	hits := 0
	router := setupCachedRouter(store, &hits)

	get(router, "/api/broken")
	get(router, "/api/broken")

	assert.Equal(t, 2, hits)
	assert.Equal(t, 0, store.Len())
}

func TestMiddleware_ClearInvalidates(t *testing.T) {
	store := New(time.Minute)
	hits := 0
	router := setupCachedRouter(store, &hits)

	get(router, "/api/things")
	store.Clear()
	w := get(router, "/api/things")

	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, 2, hits)
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: make(map[string]string)}
}

func (m *memoryRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryRedis) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (m *memoryRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func newIdempotentRouter(rdb RedisClient, status int, calls *int) *gin.Engine {
	r := gin.New()
	r.Use(IdempotencyMiddleware(DefaultIdempotencyConfig(rdb)))
	r.POST("/bookings", func(c *gin.Context) {
		*calls++
		key, _ := GetIdempotencyKey(c)
		c.JSON(status, gin.H{"call": *calls, "key": key})
	})
	return r
}

func doPost(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(newMemoryRedis(), http.StatusCreated, &calls)

	first := doPost(r, "key-1", `{"a":1}`)
	second := doPost(r, "key-1", `{"a":1}`)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("X-Idempotent-Replay"))
	assert.Contains(t, first.Body.String(), `"key":"key-1"`)
}

func TestIdempotency_KeyReusedWithDifferentBody(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(newMemoryRedis(), http.StatusCreated, &calls)

	doPost(r, "key-1", `{"a":1}`)
	w := doPost(r, "key-1", `{"a":2}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_InProgress(t *testing.T) {
	rdb := newMemoryRedis()
	calls := 0
	r := newIdempotentRouter(rdb, http.StatusCreated, &calls)

	// seed a processing record for the same request
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/bookings", nil)
	record := &IdempotencyRecord{Key: "key-1", Status: StatusProcessing, RequestHash: hashRequest(c, []byte(`{}`))}
	_, _ = trySetIdempotencyRecord(context.Background(), rdb, IdempotencyKeyPrefix+"key-1", record, time.Minute)

	resp := doPost(r, "key-1", `{}`)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, 0, calls)
}

func TestIdempotency_ServerErrorNotCached(t *testing.T) {
	rdb := newMemoryRedis()
	calls := 0
	r := newIdempotentRouter(rdb, http.StatusInternalServerError, &calls)

	doPost(r, "key-1", `{}`)
	doPost(r, "key-1", `{}`)

	assert.Equal(t, 2, calls)
	assert.Empty(t, rdb.data)
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(newMemoryRedis(), http.StatusCreated, &calls)

	doPost(r, "", `{}`)
	doPost(r, "", `{}`)

	assert.Equal(t, 2, calls)
}

func TestIdempotency_RequireKey(t *testing.T) {
	cfg := DefaultIdempotencyConfig(newMemoryRedis())
	cfg.RequireKey = true

	r := gin.New()
	r.Use(IdempotencyMiddleware(cfg))
	r.POST("/bookings", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := doPost(r, "", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdempotency_FailsOpenOnRedisError(t *testing.T) {
	rdb := newMemoryRedis()
	rdb.err = errors.New("connection refused")
	calls := 0
	r := newIdempotentRouter(rdb, http.StatusCreated, &calls)

	doPost(r, "key-1", `{}`)
	doPost(r, "key-1", `{}`)

	assert.Equal(t, 2, calls)
}

func TestMatchPath(t *testing.T) {
	assert.True(t, matchPath("/health", "/health"))
	assert.True(t, matchPath("/api/v1/public/x", "/api/v1/public/*"))
	assert.False(t, matchPath("/api/v1/private", "/api/v1/public/*"))
}

package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/prohmpiriya/experience-marketplace/pkg/response"
)

const (
	IdempotencyKeyHeader     = "X-Idempotency-Key"
	ContextKeyIdempotencyKey = "idempotency_key"
	IdempotencyKeyPrefix     = "idempotency:"
)

// IdempotencyStatus is the state of a stored request
type IdempotencyStatus string

const (
	StatusProcessing IdempotencyStatus = "processing"
	StatusCompleted  IdempotencyStatus = "completed"
)

// IdempotencyRecord stores the outcome of a keyed request
type IdempotencyRecord struct {
	Key          string            `json:"key"`
	Status       IdempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code"`
	ResponseBody string            `json:"response_body"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// RedisClient is the subset of go-redis used for idempotency records
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	Redis RedisClient
	// TTL of completed records
	TTL time.Duration
	// TTL of in-flight records, so a crashed request frees its key
	ProcessingTTL time.Duration
	// RequireKey rejects requests that carry no key
	RequireKey      bool
	RequiredMethods []string
}

// DefaultIdempotencyConfig returns default configuration
func DefaultIdempotencyConfig(rdb RedisClient) *IdempotencyConfig {
	return &IdempotencyConfig{
		Redis:           rdb,
		TTL:             24 * time.Hour,
		ProcessingTTL:   60 * time.Second,
		RequiredMethods: []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}
}

// IdempotencyMiddleware replays the stored response for a repeated
// X-Idempotency-Key. Redis failures let the request through.
func IdempotencyMiddleware(config *IdempotencyConfig) gin.HandlerFunc {
	if config.ProcessingTTL == 0 {
		config.ProcessingTTL = 60 * time.Second
	}
	if config.TTL == 0 {
		config.TTL = 24 * time.Hour
	}

	return func(c *gin.Context) {
		if !slices.Contains(config.RequiredMethods, c.Request.Method) {
			c.Next()
			return
		}

		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" {
			if config.RequireKey {
				c.AbortWithStatusJSON(http.StatusBadRequest,
					response.Error("MISSING_IDEMPOTENCY_KEY", "X-Idempotency-Key header is required"))
				return
			}
			c.Next()
			return
		}
		c.Set(ContextKeyIdempotencyKey, key)

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		requestHash := hashRequest(c, body)
		redisKey := IdempotencyKeyPrefix + key
		ctx := c.Request.Context()

		existing, err := getIdempotencyRecord(ctx, config.Redis, redisKey)
		if err != nil {
			c.Next()
			return
		}
		if existing != nil {
			replay(c, existing, requestHash)
			return
		}

		record := &IdempotencyRecord{
			Key:         key,
			Status:      StatusProcessing,
			RequestHash: requestHash,
			CreatedAt:   time.Now(),
		}
		stored, err := trySetIdempotencyRecord(ctx, config.Redis, redisKey, record, config.ProcessingTTL)
		if err != nil {
			c.Next()
			return
		}
		if !stored {
			// lost the race to a concurrent request with the same key
			if existing, err = getIdempotencyRecord(ctx, config.Redis, redisKey); err == nil && existing != nil {
				replay(c, existing, requestHash)
				return
			}
		}

		rw := &idempotencyResponseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}, status: http.StatusOK}
		c.Writer = rw

		c.Next()

		// server errors are not cached so the client can retry
		if rw.status >= http.StatusInternalServerError {
			config.Redis.Del(ctx, redisKey)
			return
		}

		now := time.Now()
		record.Status = StatusCompleted
		record.ResponseCode = rw.status
		record.ResponseBody = rw.body.String()
		record.CompletedAt = &now
		saveIdempotencyRecord(ctx, config.Redis, redisKey, record, config.TTL)
	}
}

func replay(c *gin.Context, record *IdempotencyRecord, requestHash string) {
	if record.RequestHash != requestHash {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity,
			response.Error("IDEMPOTENCY_KEY_REUSED", "Idempotency key already used with a different request"))
		return
	}
	if record.Status == StatusProcessing {
		c.AbortWithStatusJSON(http.StatusConflict,
			response.Error("REQUEST_IN_PROGRESS", "A request with this idempotency key is already being processed"))
		return
	}
	c.Header("X-Idempotent-Replay", "true")
	c.Data(record.ResponseCode, "application/json; charset=utf-8", []byte(record.ResponseBody))
	c.Abort()
}

// GetIdempotencyKey extracts idempotency key from gin context
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	key := c.GetString(ContextKeyIdempotencyKey)
	return key, key != ""
}

type idempotencyResponseWriter struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *idempotencyResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func matchPath(path, pattern string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(path, prefix)
	}
	return path == pattern
}

func hashRequest(c *gin.Context, body []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	if userID, ok := GetUserID(c); ok {
		h.Write([]byte(userID))
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func getIdempotencyRecord(ctx context.Context, rdb RedisClient, key string) (*IdempotencyRecord, error) {
	result, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record IdempotencyRecord
	if err := json.Unmarshal([]byte(result), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func trySetIdempotencyRecord(ctx context.Context, rdb RedisClient, key string, record *IdempotencyRecord, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return false, err
	}
	return rdb.SetNX(ctx, key, string(data), ttl).Result()
}

func saveIdempotencyRecord(ctx context.Context, rdb RedisClient, key string, record *IdempotencyRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, string(data), ttl).Err()
}

package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
)

const (
	msgRateLimited        = "слишком много запросов, попробуйте позже"
	msgRateLimiterFailure = "сервис временно недоступен"
)

// WindowCounter счетчик запросов в фиксированном окне
type WindowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisCounter фиксированное окно в Redis, общее для всех экземпляров сервиса
type RedisCounter struct {
	client redis.Scripter
}

// NewRedisCounter создает счетчик поверх клиента Redis
func NewRedisCounter(client redis.Scripter) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr увеличивает счетчик ключа и возвращает новое значение
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	res, err := fixedWindowScript.Run(ctx, c.client, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return 0, err
	}
	switch v := res.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected script result type %T", res)
	}
}

// RateLimiter ограничивает частоту запросов пользователя (или IP для анонимных)
type RateLimiter struct {
	counter  WindowCounter
	limit    int64
	window   time.Duration
	prefix   string
	failOpen bool
	logger   Logger
}

// NewRateLimiter создает ограничитель
func NewRateLimiter(counter WindowCounter, limit int, window time.Duration, prefix string, failOpen bool, logger Logger) *RateLimiter {
	if limit <= 0 {
		limit = 30
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		counter:  counter,
		limit:    int64(limit),
		window:   window,
		prefix:   prefix,
		failOpen: failOpen,
		logger:   logger,
	}
}

// Middleware возвращает обработчик; ставится после Auth, чтобы ключом был пользователь
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.prefix + ":" + rl.clientKey(r)

		count, err := rl.counter.Incr(r.Context(), key, rl.window)
		if err != nil {
			rl.logger.Warn("RateLimit: counter error for %s: %v", key, err)
			if rl.failOpen {
				next.ServeHTTP(w, r)
				return
			}
			handlers.RespondError(w, http.StatusServiceUnavailable, msgRateLimiterFailure)
			return
		}

		if count > rl.limit {
			rl.logger.Warn("RateLimit: %s exceeded %d requests per %s", key, rl.limit, rl.window)
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			handlers.RespondTooManyRequests(w, msgRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) clientKey(r *http.Request) string {
	if actor, ok := GetActor(r.Context()); ok {
		return "user:" + strconv.FormatInt(actor.ID, 10)
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return "ip:" + strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return "ip:" + host
	}
	return "ip:" + r.RemoteAddr
}

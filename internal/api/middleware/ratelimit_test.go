package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
)

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (c *memoryCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.counts[key]++
	return c.counts[key], nil
}

func newLimitedHandler(counter WindowCounter, failOpen bool) http.Handler {
	rl := NewRateLimiter(counter, 2, time.Minute, "rl:book", failOpen, logger.NewNop())
	return rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
}

func requestAs(actor *domain.Actor, remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", nil)
	req.RemoteAddr = remoteAddr
	if actor != nil {
		req = req.WithContext(WithActor(req.Context(), *actor))
	}
	return req
}

func TestRateLimiter_PerUser(t *testing.T) {
	counter := &memoryCounter{counts: map[string]int64{}}
	h := newLimitedHandler(counter, true)
	alice := &domain.Actor{ID: 7, Role: domain.RoleCustomer}
	bob := &domain.Actor{ID: 8, Role: domain.RoleCustomer}

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestAs(alice, "10.0.0.1:5000"))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(bob, "10.0.0.1:5000"))
	assert.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, int64(3), counter.counts["rl:book:user:7"])
}

func TestRateLimiter_AnonymousByIP(t *testing.T) {
	counter := &memoryCounter{counts: map[string]int64{}}
	h := newLimitedHandler(counter, true)

	h.ServeHTTP(httptest.NewRecorder(), requestAs(nil, "10.0.0.1:5000"))
	assert.Equal(t, int64(1), counter.counts["rl:book:ip:10.0.0.1"])
}

func TestRateLimiter_CounterFailure(t *testing.T) {
	counter := &memoryCounter{err: errors.New("redis down")}
	actor := &domain.Actor{ID: 7, Role: domain.RoleCustomer}

	rec := httptest.NewRecorder()
	newLimitedHandler(counter, true).ServeHTTP(rec, requestAs(actor, "10.0.0.1:5000"))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	newLimitedHandler(counter, false).ServeHTTP(rec, requestAs(actor, "10.0.0.1:5000"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type bucket struct {
	count   int
	resetAt time.Time
}

// Limiter — лимит запросов с фиксированным окном на ключ (IP клиента).
type Limiter struct {
	mu      sync.Mutex
	win     time.Duration
	max     int
	buckets map[string]*bucket
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

// NewLimiter запускает фоновую очистку устаревших окон; остановить через Stop.
func NewLimiter(max int, window time.Duration) *Limiter {
	l := &Limiter{
		win:     window,
		max:     max,
		buckets: make(map[string]*bucket),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow учитывает запрос и возвращает, сколько ждать, если лимит исчерпан.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b == nil || !now.Before(b.resetAt) {
		b = &bucket{resetAt: now.Add(l.win)}
		l.buckets[key] = b
	}
	b.count++
	if b.count <= l.max {
		return true, 0
	}
	return false, b.resetAt.Sub(now)
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCh:
			return
		}
	}
}

func (l *Limiter) cleanup() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if !now.Before(b.resetAt) {
			delete(l.buckets, key)
		}
	}
}

func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stopCh) })
}

// WithRateLimit отвечает 429 с Retry-After, когда клиент превысил лимит.
func WithRateLimit(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.Allow(clientIP(r))
			if !ok {
				w.Header().Set("Retry-After", retryAfterSeconds(wait))
				writeMessage(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(d time.Duration) string {
	if d <= 0 {
		return "0"
	}
	// округляем вверх, чтобы клиент не пришёл раньше срока
	return strconv.Itoa(int((d + time.Second - 1) / time.Second))
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Close()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "limits are per client")
	assert.Equal(t, 61, rl.RetryAfter("a"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"))
	assert.Equal(t, 0, rl.RetryAfter("unknown"))

	now = now.Add(3 * time.Minute)
	rl.cleanup()
	assert.Empty(t, rl.buckets)
}

func TestRateLimiterZeroRate(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	defer rl.Close()
	assert.False(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"remote addr", "10.0.0.1:5555", "", "10.0.0.1"},
		{"forwarded", "10.0.0.1:5555", "203.0.113.7, 10.0.0.1", "203.0.113.7"},
		{"bare host", "10.0.0.2", "", "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, clientIP(r))
		})
	}
}

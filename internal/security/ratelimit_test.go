package security

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	if limiter.Allow("10.0.0.1") {
		t.Error("request over the limit should be refused")
	}

	// A different client has its own bucket
	if !limiter.Allow("10.0.0.2") {
		t.Error("a different IP should not share the exhausted bucket")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{
			name:     "x-forwarded-for wins",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.5", "X-Real-IP": "198.51.100.7"},
			remote:   "10.0.0.1:1234",
			expected: "203.0.113.5",
		},
		{
			name:     "x-real-ip fallback",
			headers:  map[string]string{"X-Real-IP": "198.51.100.7"},
			remote:   "10.0.0.1:1234",
			expected: "198.51.100.7",
		},
		{
			name:     "remote addr fallback",
			remote:   "10.0.0.1:1234",
			expected: "10.0.0.1:1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/", nil)
			request.RemoteAddr = tt.remote
			for key, value := range tt.headers {
				request.Header.Set(key, value)
			}
			if got := GetClientIP(request); got != tt.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://docs.google.com/spreadsheets/d/x/pub?output=csv"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "llm://openai"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()
	feed := "https://docs.google.com/spreadsheets/d/a"

	if err := limiter.Wait(ctx, feed); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Same host, different path shares the bucket
	if limiter.Allow("https://DOCS.google.com/spreadsheets/d/b") {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	if !limiter.Allow("llm://anthropic") {
		t.Errorf("expected allow for other host")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 20; i++ {
		if !limiter.Allow("llm://ollama") {
			t.Fatalf("call %d throttled with rate disabled", i)
		}
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	limiter.Allow("llm://openai")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "llm://openai"); err == nil {
		t.Error("expected error when context expires before a token is available")
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetHostRate("openai", 0.1, 1)

	if !limiter.Allow("llm://openai") {
		t.Errorf("first request should pass")
	}
	if limiter.Allow("llm://openai") {
		t.Errorf("second request should fail")
	}
	if !limiter.Allow("llm://anthropic") {
		t.Errorf("other host should pass")
	}
}

func TestHostKey(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"https://Docs.Google.com:443/spreadsheets", "docs.google.com", false},
		{"llm://openai", "openai", false},
		{"::invalid", "", true},
		{"/local/path.csv", "", true},
	}

	for _, tt := range tests {
		got, err := hostKey(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("hostKey(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("hostKey(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

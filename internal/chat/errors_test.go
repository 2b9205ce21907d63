package chat

import (
	"errors"
	"strings"
	"testing"
)

func TestClassifyError_RateLimitWithHint(t *testing.T) {
	info := classifyError(errors.New("googleapi: Error 429: quota exceeded, retry in 17.3s"))
	if info.Code != CodeRateLimited {
		t.Fatalf("expected %s, got %s", CodeRateLimited, info.Code)
	}
	if info.RetryAfterSeconds != 18 {
		t.Fatalf("hint should round up to 18, got %d", info.RetryAfterSeconds)
	}
}

func TestClassifyError_RateLimitDefault(t *testing.T) {
	info := classifyError(errors.New("RESOURCE_EXHAUSTED"))
	if info.Code != CodeRateLimited {
		t.Fatalf("expected %s, got %s", CodeRateLimited, info.Code)
	}
	if info.RetryAfterSeconds != defaultRetrySeconds {
		t.Fatalf("expected default retry, got %d", info.RetryAfterSeconds)
	}
}

func TestClassifyError_AuthCollapsed(t *testing.T) {
	info := classifyError(errors.New("gemini: API key not valid. Please pass a valid API key. sk-abc123"))
	if info.Code != CodeConfig {
		t.Fatalf("expected %s, got %s", CodeConfig, info.Code)
	}
	// Never echo provider detail back to the user.
	if info.Message == "" || len(info.Message) > 200 {
		t.Fatalf("unexpected message: %q", info.Message)
	}
	for _, leak := range []string{"sk-abc123", "API key"} {
		if strings.Contains(info.Message, leak) {
			t.Fatalf("provider detail leaked: %q", info.Message)
		}
	}
}

func TestClassifyError_UnknownIsInternal(t *testing.T) {
	info := classifyError(errors.New("dial tcp: connection refused"))
	if info.Code != CodeInternal {
		t.Fatalf("expected %s, got %s", CodeInternal, info.Code)
	}
}

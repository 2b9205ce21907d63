package chat

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Error codes surfaced to clients.
const (
	CodeRateLimited = "rate_limited"
	CodeConfig      = "configuration"
	CodeBusy        = "turn_in_flight"
	CodeInternal    = "internal"
)

// ErrorInfo is the user-presentable shape of a failed turn. Provider detail
// never leaks through; configuration failures in particular are collapsed to
// a generic message.
type ErrorInfo struct {
	Code              string `json:"code"`
	Message           string `json:"message"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
}

var retryHintRe = regexp.MustCompile(`retry in (\d+(?:\.\d+)?)s`)

// defaultRetrySeconds is used when a rate-limit error carries no hint.
const defaultRetrySeconds = 60

// classifyError maps a provider error onto the client taxonomy.
func classifyError(err error) *ErrorInfo {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "429"),
		strings.Contains(lower, "resource_exhausted"),
		strings.Contains(lower, "quota"),
		strings.Contains(lower, "rate limit"):
		retry := defaultRetrySeconds
		if m := retryHintRe.FindStringSubmatch(msg); m != nil {
			if secs, perr := strconv.ParseFloat(m[1], 64); perr == nil {
				retry = int(math.Ceil(secs))
			}
		}
		return &ErrorInfo{
			Code:              CodeRateLimited,
			Message:           "The model is rate limited right now. Please wait a moment and try again.",
			RetryAfterSeconds: retry,
		}

	case strings.Contains(lower, "401"),
		strings.Contains(lower, "403"),
		strings.Contains(lower, "api key"),
		strings.Contains(lower, "unauthenticated"),
		strings.Contains(lower, "permission_denied"):
		return &ErrorInfo{
			Code:    CodeConfig,
			Message: "The assistant is not configured correctly. Please contact the administrator.",
		}

	default:
		return &ErrorInfo{
			Code:    CodeInternal,
			Message: "Something went wrong while processing your message. Please try again.",
		}
	}
}

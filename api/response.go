package api

import (
	"net/http"
	"strconv"
	"time"
)

// Response is a parsed API response body plus the rate-limit state
// reported by the admin endpoints.
type Response struct {
	Body map[string]interface{}

	RateLimitAllowed   int
	RateLimitRemaining int
	RateLimitResetAt   time.Time
}

// NewResponse wraps a decoded body, picking the rate-limit headers out
// of the HTTP response when present.
func NewResponse(body map[string]interface{}, header http.Header) *Response {
	r := &Response{Body: body}
	if header == nil {
		return r
	}
	if v, err := strconv.Atoi(header.Get("X-FeatureRateLimit-Limit")); err == nil {
		r.RateLimitAllowed = v
	}
	if v, err := strconv.Atoi(header.Get("X-FeatureRateLimit-Remaining")); err == nil {
		r.RateLimitRemaining = v
	}
	if t, err := time.Parse(time.RFC1123, header.Get("X-FeatureRateLimit-Reset")); err == nil {
		r.RateLimitResetAt = t
	}
	return r
}

// Get returns a top level field of the body, or nil
func (r *Response) Get(key string) interface{} {
	if r == nil || r.Body == nil {
		return nil
	}
	return r.Body[key]
}

// GetString returns a top level string field of the body, or ""
func (r *Response) GetString(key string) string {
	s, _ := r.Get(key).(string)
	return s
}

package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorClass buckets a raw channel failure for the retry decision.
type ErrorClass string

const (
	ClassAuth        ErrorClass = "auth"
	ClassNetwork     ErrorClass = "network"
	ClassProvider4xx ErrorClass = "provider_4xx"
	ClassProvider5xx ErrorClass = "provider_5xx"
	ClassUnknown     ErrorClass = "unknown"
)

// Retryable reports whether the queue engine should re-queue after this
// class of failure. Auth and provider 4xx are permanent unless a channel
// declares its own fallback path (as SMS does).
func (c ErrorClass) Retryable() bool {
	switch c {
	case ClassProvider5xx, ClassNetwork, ClassUnknown:
		return true
	}
	return false
}

func (c ErrorClass) String() string {
	return string(c)
}

// HTTPStatusError is returned by outbound providers when an explicit HTTP
// status is available, letting classification skip text matching.
type HTTPStatusError struct {
	Status int
	Body   string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("provider returned status %d", e.Status)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Body)
}

// Classify maps a raw failure into an ErrorClass. Explicit status codes win;
// otherwise the error text is pattern-matched against the same vocabulary.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassUnknown
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(statusErr.Status)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ClassNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassNetwork
	}

	return classifyText(err.Error())
}

func classifyStatus(status int) ErrorClass {
	switch {
	case status == 401 || status == 403:
		return ClassAuth
	case status == 408 || status == 429:
		return ClassNetwork
	case status >= 500:
		return ClassProvider5xx
	case status >= 400:
		return ClassProvider4xx
	}
	return ClassUnknown
}

func classifyText(msg string) ErrorClass {
	m := strings.ToLower(msg)

	switch {
	case containsAny(m, "unauthorized", "forbidden", "invalid api key", "authentication", "401", "403"):
		return ClassAuth
	case containsAny(m, "timeout", "timed out", "connection refused", "connection reset", "no such host", "network", "too many requests", "429", "temporarily unavailable"):
		return ClassNetwork
	case containsAny(m, "internal server error", "bad gateway", "service unavailable", "gateway timeout", "500", "502", "503", "504"):
		return ClassProvider5xx
	case containsAny(m, "bad request", "not found", "invalid", "unprocessable", "400", "404", "422"):
		return ClassProvider4xx
	}
	return ClassUnknown
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a gateway failure by the condition that caused it.
type Kind string

const (
	KindAuthRequired       Kind = "auth_required"
	KindForbidden          Kind = "forbidden"
	KindRateLimited        Kind = "rate_limited"
	KindQuotaExceeded      Kind = "quota_exceeded"
	KindServiceUnavailable Kind = "service_unavailable"
	KindNetwork            Kind = "network_error"
	KindValidation         Kind = "validation_error"
	KindRequest            Kind = "request_failed"
)

// Sentinels for errors.Is; only Kind is compared.
var (
	ErrAuthRequired       = &Error{Kind: KindAuthRequired}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrRateLimited        = &Error{Kind: KindRateLimited}
	ErrQuotaExceeded      = &Error{Kind: KindQuotaExceeded}
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable}
	ErrNetwork            = &Error{Kind: KindNetwork}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrRequest            = &Error{Kind: KindRequest}
)

// Codes the backend uses for provider content-policy rejections.
var contentPolicyCodes = map[string]bool{
	"content_policy_violation": true,
	"content_filter":           true,
	"moderation_blocked":       true,
}

const (
	msgAuthRequired  = "Authentication required. Please sign in again to use AI features."
	msgForbidden     = "You do not have permission to use this AI feature."
	msgContentPolicy = "This request was blocked by the AI content policy. Please rephrase your prompt and try again."
	msgRateLimited   = "Rate limit exceeded. Please wait before making more AI requests."
	msgQuota         = "AI usage quota exceeded. Upgrade your plan or wait for the quota to reset."
	msgUnavailable   = "AI service is temporarily unavailable. Please try again later."
	msgNetwork       = "Could not reach the AI service. Check your connection and try again."
	msgValidation    = "The AI service returned an invalid response."
	msgRequest       = "The AI request failed."
)

// Error is returned by every Client operation that fails after reaching
// (or trying to reach) the backend. Message is short and user-facing;
// Detail carries diagnostics for logs.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "gateway error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = defaultMessage(e.Kind)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.Status
}

// IsContentPolicy reports whether a Forbidden error came from the provider's
// content policy rather than from missing permissions.
func (e *Error) IsContentPolicy() bool {
	return e != nil && e.Kind == KindForbidden && contentPolicyCodes[strings.ToLower(e.Code)]
}

// NewValidationError builds a KindValidation error. detail is kept for logs.
func NewValidationError(message, detail string, err error) *Error {
	if strings.TrimSpace(message) == "" {
		message = msgValidation
	}
	return &Error{Kind: KindValidation, Message: message, Detail: detail, Err: err}
}

func defaultMessage(k Kind) string {
	switch k {
	case KindAuthRequired:
		return msgAuthRequired
	case KindForbidden:
		return msgForbidden
	case KindRateLimited:
		return msgRateLimited
	case KindQuotaExceeded:
		return msgQuota
	case KindServiceUnavailable:
		return msgUnavailable
	case KindNetwork:
		return msgNetwork
	case KindValidation:
		return msgValidation
	default:
		return msgRequest
	}
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthRequired
	case status == http.StatusPaymentRequired:
		return KindQuotaExceeded
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindServiceUnavailable
	default:
		return KindRequest
	}
}

// parseHTTPError accepts {success:false,error:"msg",code:"x"} and
// {error:{message,code}} bodies.
func parseHTTPError(status int, raw []byte) *Error {
	body := strings.TrimSpace(string(raw))
	serverMsg, code := decodeErrorBody(raw)

	e := &Error{
		Kind:   kindForStatus(status),
		Status: status,
		Code:   code,
		Detail: fmt.Sprintf("status=%d body=%s", status, clipBody(body)),
	}
	switch e.Kind {
	case KindForbidden:
		if e.IsContentPolicy() {
			e.Message = msgContentPolicy
		} else {
			e.Message = msgForbidden
		}
	case KindRequest:
		// Generic 4xx: the backend's own wording is the most useful thing we have.
		e.Message = serverMsg
		if e.Message == "" {
			e.Message = fmt.Sprintf("%s (%d %s)", msgRequest, status, http.StatusText(status))
		}
	default:
		e.Message = defaultMessage(e.Kind)
	}
	return e
}

func decodeErrorBody(raw []byte) (message, code string) {
	var env struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Code    string          `json:"code"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", ""
	}
	message = strings.TrimSpace(env.Message)
	code = strings.TrimSpace(env.Code)
	if len(env.Error) == 0 {
		return message, code
	}
	var s string
	if err := json.Unmarshal(env.Error, &s); err == nil {
		if strings.TrimSpace(s) != "" {
			message = strings.TrimSpace(s)
		}
		return message, code
	}
	var obj struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(env.Error, &obj); err == nil {
		if strings.TrimSpace(obj.Message) != "" {
			message = strings.TrimSpace(obj.Message)
		}
		if strings.TrimSpace(obj.Code) != "" {
			code = strings.TrimSpace(obj.Code)
		} else if code == "" {
			code = strings.TrimSpace(obj.Type)
		}
	}
	return message, code
}

func clipBody(s string) string {
	const max = 512
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// AsError unwraps err to *Error when possible.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

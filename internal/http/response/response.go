package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr picks status and code from err: *apierr.Error first, then
// *gateway.Error by kind, then 500.
func RespondErr(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	if ge, ok := gateway.AsError(err); ok {
		code := string(ge.Kind)
		if ge.IsContentPolicy() {
			code = "content_policy_violation"
		}
		RespondError(c, StatusForKind(ge.Kind), code, ge)
		return
	}
	if errors.Is(err, context.Canceled) {
		RespondError(c, 499, "client_closed_request", err)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		RespondError(c, http.StatusGatewayTimeout, "timeout", err)
		return
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal error"))
}

// StatusForKind maps a gateway failure kind to the status returned to our
// own callers.
func StatusForKind(k gateway.Kind) int {
	switch k {
	case gateway.KindAuthRequired:
		return http.StatusUnauthorized
	case gateway.KindForbidden:
		return http.StatusForbidden
	case gateway.KindQuotaExceeded:
		return http.StatusPaymentRequired
	case gateway.KindRateLimited:
		return http.StatusTooManyRequests
	case gateway.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case gateway.KindNetwork:
		return http.StatusBadGateway
	case gateway.KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

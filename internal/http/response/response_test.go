package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/apierr"
)

func respond(err error) (int, ErrorEnvelope) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondErr(c, err)
	var env ErrorEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec.Code, env
}

func TestRespondErrMapsGatewayKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&gateway.Error{Kind: gateway.KindAuthRequired, Message: "sign in"}, http.StatusUnauthorized, "auth_required"},
		{&gateway.Error{Kind: gateway.KindForbidden}, http.StatusForbidden, "forbidden"},
		{&gateway.Error{Kind: gateway.KindForbidden, Code: "content_policy_violation"}, http.StatusForbidden, "content_policy_violation"},
		{&gateway.Error{Kind: gateway.KindQuotaExceeded}, http.StatusPaymentRequired, "quota_exceeded"},
		{&gateway.Error{Kind: gateway.KindRateLimited}, http.StatusTooManyRequests, "rate_limited"},
		{&gateway.Error{Kind: gateway.KindServiceUnavailable}, http.StatusServiceUnavailable, "service_unavailable"},
		{&gateway.Error{Kind: gateway.KindNetwork}, http.StatusBadGateway, "network_error"},
		{gateway.NewValidationError("", "x", nil), http.StatusUnprocessableEntity, "validation_error"},
		{&gateway.Error{Kind: gateway.KindRequest}, http.StatusBadRequest, "request_failed"},
		{apierr.New(http.StatusBadRequest, "invalid_request", errors.New("title is required")), http.StatusBadRequest, "invalid_request"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{errors.New("db password leaked"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, env := respond(tc.err)
		if status != tc.status || env.Error.Code != tc.code {
			t.Fatalf("%v: got %d/%s want %d/%s", tc.err, status, env.Error.Code, tc.status, tc.code)
		}
		if env.Error.Message == "" {
			t.Fatalf("%v: empty message", tc.err)
		}
	}
}

func TestRespondErrHidesInternalDetail(t *testing.T) {
	_, env := respond(errors.New("db password leaked"))
	if env.Error.Message != "internal error" {
		t.Fatalf("message=%q", env.Error.Message)
	}
}

func TestRespondErrUsesUserFacingGatewayMessage(t *testing.T) {
	_, env := respond(&gateway.Error{Kind: gateway.KindRateLimited, Detail: "status=429 body=..."})
	if env.Error.Message != "Rate limit exceeded. Please wait before making more AI requests." {
		t.Fatalf("message=%q", env.Error.Message)
	}
}

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"financegateway/internal/finance"
	"financegateway/internal/provider"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidInput        = "invalid_input"
	CodeNotFound            = "not_found"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeUpstreamError       = "upstream_error"
	CodeInternal            = "internal_error"
	CodeCanceled            = "canceled"
)

// statusClientClosedRequest is the nginx convention for a request the client abandoned.
const statusClientClosedRequest = 499

// ErrorResponse is the body of every request-level error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeAggregate writes a keyed or ordered aggregate. A non-empty aggregate
// in which every key failed is a 502 with the same body.
func writeAggregate(c *gin.Context, summary finance.Summary, body any) {
	status := http.StatusOK
	if summary.AllFailed() {
		status = http.StatusBadGateway
	}
	c.JSON(status, body)
}

// writeError maps err onto a status code and error envelope.
func writeError(c *gin.Context, err error) {
	status, code := classify(err)
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func classify(err error) (int, string) {
	if errors.Is(err, finance.ErrInvalidInput) {
		return http.StatusBadRequest, CodeInvalidInput
	}

	var fe *provider.FetchError
	if !errors.As(err, &fe) {
		return http.StatusInternalServerError, CodeInternal
	}
	switch fe.Type {
	case provider.ErrorTypeNotFound:
		return http.StatusNotFound, CodeNotFound
	case provider.ErrorTypeCircuitOpen, provider.ErrorTypeRateLimit:
		return http.StatusServiceUnavailable, CodeUpstreamUnavailable
	case provider.ErrorTypeTimeout:
		return http.StatusGatewayTimeout, CodeUpstreamUnavailable
	case provider.ErrorTypeCanceled:
		return statusClientClosedRequest, CodeCanceled
	default:
		return http.StatusBadGateway, CodeUpstreamError
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeInvalidInput})
}

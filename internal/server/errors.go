package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
)

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// httpStatus classifies err through its gRPC status.
func httpStatus(err error) int {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.FailedPrecondition:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DataLoss:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error body and aborts the chain. Causes stay in the log.
func (s *Server) fail(c *gin.Context, err error) {
	code := httpStatus(err)
	body := errorBody{Error: "internal server error", Code: common.CodeInternal}
	var ae *common.AppError
	if errors.As(err, &ae) {
		body.Error, body.Code = ae.Message, ae.Code
	}

	attrs := []any{
		"req_id", common.RequestIDFromContext(c.Request.Context()),
		"route", c.FullPath(),
		"status", code,
		"code", body.Code,
		"error", err,
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("http.request.failed", attrs...)
	} else {
		s.logger.Debug("http.request.rejected", attrs...)
	}
	c.AbortWithStatusJSON(code, body)
}

func badRequest(err error) error {
	return common.ValidationErrorf("invalid request body: %v", err)
}

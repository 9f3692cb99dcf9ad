// Package handlers – error translation.
//
// Handlers record failures with c.Error(err) and return. Errors() runs after
// the chain (and after the unit of work has rolled back) and turns the last
// recorded error into an ErrorMessage:
//
//   - storage constraint violations → 400 with the violation detail
//     (TranslateConstraintViolation);
//   - not-found sentinels → 404;
//   - invalid input → 400;
//   - idempotency conflicts → 409;
//   - request cancellation or deadline → 503;
//   - anything else → 500 "internal server error", logged with the cause.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-kennel-backend/internal/dberr"
	"github.com/tbourn/go-kennel-backend/internal/http/middleware"
	"github.com/tbourn/go-kennel-backend/internal/services"
)

// TranslateConstraintViolation maps a constraint violation to a 400
// response. It is pure: equal inputs give equal bodies, and ok is false for
// any error that is not a constraint violation.
func TranslateConstraintViolation(err error) (status int, body ErrorMessage, ok bool) {
	cv, isCV := dberr.Classify(err)
	if !isCV {
		return 0, ErrorMessage{}, false
	}
	return http.StatusBadRequest, ErrorMessage{Code: http.StatusBadRequest, Message: cv.Message()}, true
}

// statusFor maps non-constraint failures to a status and a client-safe
// message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrDogNotFound),
		errors.Is(err, services.ErrPersonNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrInvalidName):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrIdempotencyConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// Errors writes the response for the last error recorded on the Gin context
// when nothing has been written yet. Register it before any UnitOfWork
// middleware so it runs after the scope has been released.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		if cv, isCV := dberr.Classify(err); isCV {
			status, body, _ := TranslateConstraintViolation(cv)
			middleware.ObserveConstraintViolation(cv.Kind.String())
			middleware.LoggerFrom(c).Info().
				Str("kind", cv.Kind.String()).
				Str("constraint", body.Message).
				Msg("constraint violation")
			c.AbortWithStatusJSON(status, body)
			return
		}

		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			middleware.LoggerFrom(c).Error().Err(err).Int("status", status).Msg("unhandled error")
		}
		c.AbortWithStatusJSON(status, ErrorMessage{Code: status, Message: msg})
	}
}

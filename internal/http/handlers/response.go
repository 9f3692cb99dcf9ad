// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers used across all endpoints. Every
// failure, whether produced here or mapped later by Errors(), is written as
// an ErrorMessage:
//
//	HTTP/1.1 400 Bad Request
//	{ "code": 400, "message": "unique constraint violation: UNIQUE constraint failed: dogs.name; table: DOGS" }
//
// Conventions:
//   - Request validation failures are written directly with fail().
//   - Service and storage failures are recorded with c.Error(err) and left
//     to Errors(), so the unit-of-work middleware sees them first.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-kennel-backend/internal/http/middleware"
)

// ErrorMessage is the error envelope returned by all endpoints.
type ErrorMessage struct {
	// HTTP status code, repeated in the body.
	Code int `json:"code" example:"400"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"unique constraint violation: UNIQUE constraint failed: dogs.name; table: DOGS"`
}

// fail aborts the request with an ErrorMessage and logs server-side errors.
func fail(c *gin.Context, status int, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorMessage{Code: status, Message: msg})
}

// Fail is the exported variant of fail() for router-level handlers
// (NoRoute, NoMethod).
func Fail(c *gin.Context, status int, msg string) { fail(c, status, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file binds a database unit of work to each request. UnitOfWork wraps
// the remaining handler chain in uow.Manager.Run with a per-route descriptor:
//
//   - the session is acquired before the handler and bound to the request
//     context, where services pick it up with uow.DB(ctx);
//   - the handler's response is buffered, so a failed commit can still turn
//     into an error response instead of a half-sent success;
//   - after a successful commit the buffer is flushed to the client;
//   - when the handler itself fails (a recorded gin error or a status >= 400)
//     the session is rolled back and whatever the handler wrote is kept;
//   - when acquire, commit or cancellation fails, the buffer is discarded and
//     the error is recorded on the Gin context for the Errors() middleware.
package middleware

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-kennel-backend/internal/uow"
)

// errErrorStatus marks a handler that answered with status >= 400 without
// recording a gin error, so the scope is rolled back.
var errErrorStatus = errors.New("handler responded with error status")

// UnitOfWork runs the rest of the chain inside a unit of work described by d.
func UnitOfWork(m *uow.Manager, d uow.Descriptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		orig, origReq := c.Writer, c.Request
		buf := newBufferedWriter(orig)
		defer func() {
			c.Writer = orig
			c.Request = origReq
		}()

		var handlerErr error
		ran := false
		err := m.Run(c.Request.Context(), d, func(ctx context.Context) error {
			ran = true
			errsBefore := len(c.Errors)
			c.Writer = buf
			c.Request = origReq.WithContext(ctx)

			c.Next()

			switch {
			case len(c.Errors) > errsBefore:
				handlerErr = c.Errors.Last().Err
			case buf.Status() >= http.StatusBadRequest:
				handlerErr = errErrorStatus
			}
			return handlerErr
		})

		c.Writer = orig
		switch {
		case err == nil:
			httpUowOutcomes.WithLabelValues(routeLabel(c), uowCommitted).Inc()
			buf.flush()
		case ran && handlerErr != nil && errors.Is(err, handlerErr):
			// The handler's own failure; its response (if any) stands.
			httpUowOutcomes.WithLabelValues(routeLabel(c), uowHandlerError).Inc()
			if buf.Written() {
				buf.flush()
			}
		default:
			// Acquire, commit or cancellation failed: nothing from the
			// handler may reach the client.
			httpUowOutcomes.WithLabelValues(routeLabel(c), uowScopeError).Inc()
			_ = c.Error(err)
			c.Abort()
		}
	}
}

// bufferedWriter holds status, headers and body until the unit of work ends.
// Headers start as a copy of the real writer's so values set by earlier
// middleware (X-Request-ID) stay visible to handlers.
type bufferedWriter struct {
	gin.ResponseWriter

	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newBufferedWriter(w gin.ResponseWriter) *bufferedWriter {
	return &bufferedWriter{
		ResponseWriter: w,
		header:         w.Header().Clone(),
		status:         http.StatusOK,
	}
}

func (w *bufferedWriter) Header() http.Header { return w.header }

func (w *bufferedWriter) WriteHeader(code int) {
	if code > 0 && !w.wroteHeader {
		w.status = code
	}
}

func (w *bufferedWriter) WriteHeaderNow() { w.wroteHeader = true }

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.body.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	w.wroteHeader = true
	return w.body.WriteString(s)
}

func (w *bufferedWriter) Status() int { return w.status }

func (w *bufferedWriter) Size() int {
	if !w.wroteHeader {
		return -1
	}
	return w.body.Len()
}

func (w *bufferedWriter) Written() bool { return w.wroteHeader }

// Flush is a no-op; streaming would defeat the buffer.
func (w *bufferedWriter) Flush() {}

func (w *bufferedWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return nil, nil, errors.New("hijack not supported inside a unit of work")
}

// flush copies the buffered response to the real writer.
func (w *bufferedWriter) flush() {
	dst := w.ResponseWriter.Header()
	for k := range dst {
		if _, ok := w.header[k]; !ok {
			dst.Del(k)
		}
	}
	for k, vv := range w.header {
		dst[k] = vv
	}
	w.ResponseWriter.WriteHeader(w.status)
	if w.wroteHeader {
		w.ResponseWriter.WriteHeaderNow()
	}
	if w.body.Len() > 0 {
		_, _ = w.ResponseWriter.Write(w.body.Bytes())
	}
}

package response

import (
	apperrors "tenantconsole-backend/shared/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceIDKey is the gin context key holding the request trace id.
const TraceIDKey = "trace_id"

// TraceIDHeader echoes the trace id to the client.
const TraceIDHeader = "X-Trace-ID"

// Envelope is the uniform response shape of every console operation.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
	TraceID string `json:"trace_id"`
}

// NewTraceID returns a fresh correlation id.
func NewTraceID() string {
	return uuid.New().String()
}

// Success builds a successful envelope with a new trace id.
func Success[T any](data T, message string) Envelope[T] {
	return Envelope[T]{Success: true, Data: data, Message: message, TraceID: NewTraceID()}
}

// ErrorBody is the envelope written for failures.
type ErrorBody struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	TraceID    string `json:"trace_id"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// TraceID returns the trace id of the request, creating one if the
// trace middleware did not run.
func TraceID(c *gin.Context) string {
	if v, ok := c.Get(TraceIDKey); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	id := NewTraceID()
	c.Set(TraceIDKey, id)
	c.Header(TraceIDHeader, id)
	return id
}

// JSON writes an envelope produced by a service, replacing its trace id
// with the request's so logs and body correlate.
func JSON[T any](c *gin.Context, status int, env Envelope[T]) {
	env.TraceID = TraceID(c)
	c.JSON(status, env)
}

// OK writes a successful envelope around data.
func OK[T any](c *gin.Context, status int, data T, message string) {
	JSON(c, status, Envelope[T]{Success: true, Data: data, Message: message})
}

// Error writes a failure envelope with the status derived from err.
func Error(c *gin.Context, err error) {
	c.Error(err)
	c.AbortWithStatusJSON(apperrors.HTTPStatus(err), ErrorBody{
		Success: false,
		Data:    nil,
		Message: err.Error(),
		TraceID: TraceID(c),
	})
}

// Forbidden writes the Access Denied envelope with a redirect offer.
func Forbidden(c *gin.Context, redirectTo string) {
	c.AbortWithStatusJSON(apperrors.HTTPStatus(apperrors.ErrForbidden), ErrorBody{
		Success:    false,
		Message:    apperrors.ErrForbidden.Error(),
		TraceID:    TraceID(c),
		RedirectTo: redirectTo,
	})
}

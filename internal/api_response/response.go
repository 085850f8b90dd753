package api_response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/openivms/telemetry-server/internal/constants"
)

type Response[T any] struct {
	RequestID     string         `json:"request_id"`
	Code          string         `json:"code"`
	Message       string         `json:"message"`
	ServerTime    int64          `json:"server_time"`
	ServerTimeISO string         `json:"server_time_iso"`
	Count         int            `json:"count,omitempty"`
	Data          T              `json:"data"`
	Meta          map[string]any `json:"meta,omitempty"`
}

type BaseOutput struct {
	Status  int
	Code    string
	Message string
	Data    any
	Count   int
	Meta    any
}

func New[T any](ctx context.Context) *Response[T] {
	now := time.Now()
	return &Response[T]{
		RequestID:     requestIDFromContext(ctx),
		ServerTime:    now.Unix(),
		ServerTimeISO: now.Format(time.RFC3339),
	}
}

// OK constructs a success response with data.
func OK[T any](ctx context.Context, data T) *Response[T] {
	resp := New[T](ctx)
	resp.Data = data
	return resp
}

// Error constructs an error response with a code/message.
func Error[T any](ctx context.Context, code, message string) *Response[T] {
	resp := New[T](ctx)
	resp.Code = code
	resp.Message = message
	return resp
}

func (r *Response[T]) WithCode(c string) *Response[T]    { r.Code = c; return r }
func (r *Response[T]) WithMessage(m string) *Response[T] { r.Message = m; return r }
func (r *Response[T]) WithCount(n int) *Response[T]      { r.Count = n; return r }
func (r *Response[T]) WithMetaKV(k string, v any) *Response[T] {
	if r.Meta == nil {
		r.Meta = make(map[string]any)
	}
	r.Meta[k] = v
	return r
}

// Populate fills the envelope in one call. Prefer fluent setters in new code.
func (r *Response[T]) Populate(code, message string, data T, meta any, count any) *Response[T] {
	r.Code = code
	r.Message = message
	r.Data = data
	if meta != nil {
		switch m := meta.(type) {
		case map[string]any:
			for k, v := range m {
				r.WithMetaKV(k, v)
			}
		default:
			r.WithMetaKV("meta", m)
		}
	}
	if count != nil {
		if total, ok := count.(int); ok {
			r.Count = total
		}
	}
	return r
}

// WriteJSON writes the response with the given HTTP status.
// It sets Content-Type and echoes X-Request-ID if present.
func WriteJSON[T any](w http.ResponseWriter, status int, resp *Response[T]) error {
	if resp == nil {
		return errors.New("nil response")
	}
	if resp.RequestID != "" {
		w.Header().Set(constants.HeaderXRequestID, resp.RequestID)
	}
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	return enc.Encode(resp)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return uuid.New().String()
	}

	if v := ctx.Value(constants.APIFieldRequestID); v != nil {
		return fmt.Sprint(v)
	}
	return uuid.New().String()
}

package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"etforacle/pkg/etforacle"
)

// accessLogWriter captures the status, size and the error a handler
// answered with, so the access log line can carry the core error code.
type accessLogWriter struct {
	middleware.WrapResponseWriter
	failure error
}

func newAccessLogWriter(w http.ResponseWriter, r *http.Request) *accessLogWriter {
	return &accessLogWriter{WrapResponseWriter: middleware.NewWrapResponseWriter(w, r.ProtoMajor)}
}

func (w *accessLogWriter) recordError(err error) {
	w.failure = err
}

func (w *accessLogWriter) Flush() {
	if flusher, ok := w.WrapResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// requestLoggingMiddleware writes one line per request. Route parameters
// (index, sector, ticker) are logged under their own names, unescaped.
func requestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newAccessLogWriter(w, r)

			next.ServeHTTP(wrapped, r)

			status := wrapped.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := requestAttrs(r)
			attrs = append(attrs,
				slog.Int("status", status),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
			attrs = append(attrs, failureAttrs(wrapped.failure)...)

			logger.LogAttrs(r.Context(), levelForStatus(status), "http request completed", attrs...)
		})
	}
}

func recoveryLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				attrs := append(requestAttrs(r),
					slog.String("panic", fmt.Sprint(recovered)),
					slog.String("stack", string(debug.Stack())),
				)
				logger.LogAttrs(r.Context(), slog.LevelError, "panic recovered", attrs...)

				if sw, ok := w.(interface{ Status() int }); ok && sw.Status() != 0 {
					return
				}
				writeErrorResponse(w, r, http.StatusInternalServerError,
					etforacle.NewError(etforacle.ErrCodeInternal, "internal server error"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func requestAttrs(r *http.Request) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		attrs = append(attrs, slog.String("route", rctx.RoutePattern()))
		for i, key := range rctx.URLParams.Keys {
			if key == "*" || i >= len(rctx.URLParams.Values) {
				continue
			}
			value := rctx.URLParams.Values[i]
			if unescaped, err := url.PathUnescape(value); err == nil {
				value = unescaped
			}
			attrs = append(attrs, slog.String(key, value))
		}
	}
	if r.URL.RawQuery != "" {
		attrs = append(attrs, slog.String("query", r.URL.RawQuery))
	}
	return append(attrs,
		slog.String("remote_ip", r.RemoteAddr),
		slog.String("user_agent", r.UserAgent()),
	)
}

func failureAttrs(err error) []slog.Attr {
	if err == nil {
		return nil
	}
	attrs := []slog.Attr{slog.String("error_message", err.Error())}
	var coreErr *etforacle.Error
	if errors.As(err, &coreErr) {
		attrs = append(attrs, slog.String("error_code", string(coreErr.Code)))
	}
	return attrs
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

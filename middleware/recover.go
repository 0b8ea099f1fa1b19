package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/infocampus/campus/internal/observability"
	"github.com/infocampus/campus/utils"
)

// Recoverer turns a panic into a JSON 500 that still carries the CORS headers
func Recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				observability.FromContext(r.Context(), logger).Error("panic recovered",
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()))

				setCORSHeaders(w.Header())
				_ = utils.WriteInternalServerError(w, "Error interno del servidor")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

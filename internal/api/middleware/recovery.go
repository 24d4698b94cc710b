package middleware

import (
	"net/http"
	"runtime"

	"github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers"
)

// Recovery turns a handler panic into a 500 and logs the stack
func Recovery(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rv := recover(); rv != nil {
					var stack [4096]byte
					n := runtime.Stack(stack[:], false)
					logger.Error("panic recovered: %v request_id=%s\n%s", rv, GetRequestID(r.Context()), stack[:n])
					handlers.RespondInternalError(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

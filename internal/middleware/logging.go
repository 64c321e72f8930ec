package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	reqctx "portal-united/directory/internal/context"
	"portal-united/directory/internal/logging"
)

// Recoverer turns a handler panic into a logged 500 page.
func Recoverer(pages ErrorPages) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil || rec == http.ErrAbortHandler {
					if rec != nil {
						panic(rec)
					}
					return
				}

				logging.Error("Handler panicked",
					"request_id", reqctx.GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				pages.ServerError(w, r, fmt.Errorf("panic: %v", rec))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

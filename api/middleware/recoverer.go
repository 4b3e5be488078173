package middleware

import (
	"fmt"
	"net/http"

	"github.com/ejidepharmacy/pharmabot-backend/api/responses"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
)

// Recoverer turns a handler panic into a 500 envelope. Aborted responses are
// re-panicked so net/http can drop the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
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
				ctx := logg.WithFields(r.Context(), map[string]any{
					"panic":  fmt.Sprint(rec),
					"method": r.Method,
					"path":   r.URL.Path,
				})
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "handler panicked"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

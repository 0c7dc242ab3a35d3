package middleware

import (
	"context"
	"net/http"

	"github.com/rpattn/leadflow/internal/leadloader"
	"github.com/rpattn/leadflow/internal/repository"
)

type ctxKey string

const leadLoaderKey ctxKey = "leadLoader"

// DataLoaderMiddleware attaches a fresh lead loader to every request context.
func DataLoaderMiddleware(repo repository.LeadRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := leadloader.NewLeadLoader(repo)
			ctx := context.WithValue(r.Context(), leadLoaderKey, loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LeadLoaderFromContext retrieves the request's lead loader, or nil outside the middleware.
func LeadLoaderFromContext(ctx context.Context) *leadloader.LeadLoader {
	if l, ok := ctx.Value(leadLoaderKey).(*leadloader.LeadLoader); ok {
		return l
	}
	return nil
}

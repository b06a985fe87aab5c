package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/username/flipfolio/backend/src/logger"
	"github.com/username/flipfolio/backend/src/utils"
)

type contextKey string

const accountIDContextKey = contextKey("accountID")

// AccountMiddleware resolves the acting account from the X-Account-ID
// header set by the fronting auth proxy. Requests without a valid
// account id never reach the handlers.
func AccountMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountIDStr := r.Header.Get("X-Account-ID")
		if accountIDStr == "" {
			logger.L.Debug("AccountMiddleware: X-Account-ID header missing", "path", r.URL.Path)
			utils.SendJSONError(w, "Account identification required", http.StatusUnauthorized)
			return
		}

		accountID, err := strconv.ParseInt(accountIDStr, 10, 64)
		if err != nil || accountID <= 0 {
			logger.L.Warn("AccountMiddleware: Invalid account id", "accountID", accountIDStr, "path", r.URL.Path)
			utils.SendJSONError(w, "Invalid account id", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), accountIDContextKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAccountIDFromContext retrieves the acting account id placed by
// AccountMiddleware.
func GetAccountIDFromContext(ctx context.Context) (int64, bool) {
	accountID, ok := ctx.Value(accountIDContextKey).(int64)
	return accountID, ok
}

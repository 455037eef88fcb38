package auth

import (
	"context"
	"net/http"
	"strconv"

	"github.com/workstack/org-messaging/internal/directory"
	"github.com/workstack/org-messaging/internal/transport"
	"github.com/workstack/org-messaging/pkg/logger"
)

type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*Claims, error)
}

type DirectoryAPI interface {
	GetEmployeeByAccountID(ctx context.Context, accountID int64) (*directory.Employee, error)
}

type Handler struct {
	*transport.BaseHandler
	tokens TokenValidator
	dir    DirectoryAPI
}

func NewHandler(tokens TokenValidator, dir DirectoryAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		tokens:      tokens,
		dir:         dir,
	}
}

// AuthMiddleware validates the bearer token and resolves the account into
// its directory record, so downstream handlers always operate on a
// hydrated employee.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Warn("auth middleware: missing authorization token")
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.tokens.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("auth middleware: token validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		accountID, err := strconv.ParseInt(claims.AccountID, 10, 64)
		if err != nil {
			h.Logger.Warn("auth middleware: malformed account id in claims", "value", claims.AccountID)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		emp, err := h.dir.GetEmployeeByAccountID(r.Context(), accountID)
		if err != nil {
			h.Logger.Warn("auth middleware: no employee for account", "account_id", accountID, "error", err)
			h.WriteError(w, http.StatusUnauthorized, "employee not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithEmployee(r.Context(), emp)))
	})
}

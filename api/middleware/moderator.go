package middleware

import (
	"net/http"

	"github.com/crmbase-app/crmbase-backend/api/responses"
	pkgerrors "github.com/crmbase-app/crmbase-backend/pkg/errors"
	"github.com/crmbase-app/crmbase-backend/pkg/logger"
)

// RequireModerator blocks actors without moderator or admin rights.
func RequireModerator(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !CapabilitiesFromContext(r.Context()).CanAdministerUsers() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "moderator rights required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

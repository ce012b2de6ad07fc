package middleware

import (
	"net/http"

	"github.com/angelmondragon/tableside-backend/api/responses"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
	"github.com/angelmondragon/tableside-backend/pkg/logger"
)

// Policy names the caller an endpoint admits.
type Policy string

const (
	// PolicyPublic admits anyone. Members are identified by wp_openid parameters.
	PolicyPublic Policy = "public"
	// PolicyStaff admits restaurant owners holding a valid access token.
	PolicyStaff Policy = "staff"
)

// Require enforces the policy declared at route registration. Auth must run
// earlier in the chain.
func Require(policy Policy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch policy {
			case PolicyPublic:
			case PolicyStaff:
				if _, ok := UserIDFromContext(r.Context()); !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "staff credentials required"))
					return
				}
			default:
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "endpoint policy unknown"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

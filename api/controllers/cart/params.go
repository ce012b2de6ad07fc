package cart

import (
	"context"
	"net/http"

	"github.com/angelmondragon/tableside-backend/api/validators"
	"github.com/angelmondragon/tableside-backend/pkg/logger"
)

func callerFromQuery(r *http.Request) (openID, wpOpenID string) {
	return validators.QueryString(r, "openid"), validators.QueryString(r, "wp_openid")
}

func tagCaller(r *http.Request, logg *logger.Logger, openID, wpOpenID string) context.Context {
	ctx := r.Context()
	if logg == nil {
		return ctx
	}
	return logg.WithMember(logg.WithRestaurant(ctx, openID), wpOpenID)
}

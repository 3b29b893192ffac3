package plantnetserver

import (
	"github.com/gin-gonic/gin"

	userports "github.com/plantnet/plantnet-api/internal/domains/users/ports"
	"github.com/plantnet/plantnet-api/internal/platform/auth"
	apierrors "github.com/plantnet/plantnet-api/internal/shared/errors"
)

const callerKey = "plantnet.caller"

// RequireToken verifies the session cookie and stores the caller for the
// handlers behind it. Missing, invalid, expired and revoked tokens all get 401.
func RequireToken(users userports.Service, responder *apierrors.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.CookieName)
		if err != nil || token == "" {
			responder.Unauthorized(c, "unauthorized access")
			return
		}
		session, err := users.Authenticate(c.Request.Context(), token)
		if err != nil {
			responder.RespondError(c, err)
			return
		}
		c.Set(callerKey, session)
		c.Next()
	}
}

// callerEmail is the verified email of the request, empty on public routes.
func callerEmail(c *gin.Context) string {
	if v, ok := c.Get(callerKey); ok {
		if session, ok := v.(*userports.Session); ok && session != nil {
			return session.Email
		}
	}
	return ""
}

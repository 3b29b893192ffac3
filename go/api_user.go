package plantnetserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/plantnet/plantnet-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/plantnet/plantnet-api/internal/domains/users/ports"
	"github.com/plantnet/plantnet-api/internal/platform/auth"
	apierrors "github.com/plantnet/plantnet-api/internal/shared/errors"
)

// UserAPI serves sessions, login upserts and role management.
type UserAPI struct {
	service   userports.Service
	cookies   auth.CookiePolicy
	responder *apierrors.Responder
}

// NewUserAPI wires dependencies.
func NewUserAPI(service userports.Service, cookies auth.CookiePolicy, responder *apierrors.Responder) UserAPI {
	return UserAPI{service: service, cookies: cookies, responder: responder}
}

// Post /jwt
// Signs a session token and stores it in the httpOnly cookie.
func (api *UserAPI) IssueToken(c *gin.Context) {
	var payload userhttpmapper.TokenRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	session, err := api.service.IssueToken(c.Request.Context(), payload.Email)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	api.setCookie(c, session.Token, api.cookies.MaxAgeSeconds())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Get /logout
func (api *UserAPI) Logout(c *gin.Context) {
	if token, err := c.Cookie(auth.CookieName); err == nil && token != "" {
		if err := api.service.Logout(c.Request.Context(), token); err != nil {
			api.responder.RespondError(c, err)
			return
		}
	}
	api.setCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (api *UserAPI) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(api.cookies.SameSite())
	c.SetCookie(auth.CookieName, value, maxAge, "/", "", api.cookies.Secure(), true)
}

// Post /user
// Registers a first login or refreshes the last login time.
func (api *UserAPI) SaveUser(c *gin.Context) {
	var payload userhttpmapper.LoginUser
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	result, err := api.service.UpsertOnLogin(c.Request.Context(), payload.Email, payload.Name, payload.Image)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromUpsertResult(result))
}

// Get /user/role/:email
func (api *UserAPI) GetUserRole(c *gin.Context) {
	role, err := api.service.GetRole(c.Request.Context(), c.Param("email"))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.RoleResponse{Role: string(role)})
}

// Get /all-users
func (api *UserAPI) ListUsers(c *gin.Context) {
	users, err := api.service.ListUsers(c.Request.Context(), callerEmail(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUsers(users))
}

// Patch /user/role/update/:email
func (api *UserAPI) UpdateUserRole(c *gin.Context) {
	var payload userhttpmapper.RoleUpdateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	updated, err := api.service.UpdateRole(c.Request.Context(), callerEmail(c), c.Param("email"), payload.Role)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromUpdatedUser(updated))
}

// Patch /become-seller-request/:email
func (api *UserAPI) RequestSellerUpgrade(c *gin.Context) {
	updated, err := api.service.RequestSellerUpgrade(c.Request.Context(), callerEmail(c), c.Param("email"))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromUpdatedUser(updated))
}

package plantnetserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// Guards run before HandlerFunc, in order.
	Guards []gin.HandlerFunc
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	PlantAPI PlantAPI
	OrderAPI OrderAPI
	UserAPI  UserAPI
	StatsAPI StatsAPI
	// Auth guards routes that need a signed-in caller.
	Auth gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing engine so callers
// can install middleware first.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		chain := make([]gin.HandlerFunc, 0, len(route.Guards)+1)
		for _, guard := range route.Guards {
			if guard != nil {
				chain = append(chain, guard)
			}
		}
		chain = append(chain, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, chain...)
	}
	return router
}

// DefaultHandleFunc is the default handler for not yet implemented routes.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// Index answers liveness checks.
func Index(c *gin.Context) {
	c.String(http.StatusOK, "Hello from plantNet Server..")
}

func getRoutes(h ApiHandleFunctions) []Route {
	authed := []gin.HandlerFunc{h.Auth}
	return []Route{
		{"Index", http.MethodGet, "/", nil, Index},
		{"IssueToken", http.MethodPost, "/jwt", nil, h.UserAPI.IssueToken},
		{"Logout", http.MethodGet, "/logout", nil, h.UserAPI.Logout},
		{"AddPlant", http.MethodPost, "/add-plant", nil, h.PlantAPI.AddPlant},
		{"ListPlants", http.MethodGet, "/plants", nil, h.PlantAPI.ListPlants},
		{"GetPlant", http.MethodGet, "/plant/:id", nil, h.PlantAPI.GetPlant},
		{"CreatePaymentIntent", http.MethodPost, "/create-payment-intent", nil, h.OrderAPI.CreatePaymentIntent},
		{"SaveUser", http.MethodPost, "/user", nil, h.UserAPI.SaveUser},
		{"GetUserRole", http.MethodGet, "/user/role/:email", nil, h.UserAPI.GetUserRole},
		{"PlaceOrder", http.MethodPost, "/order", nil, h.OrderAPI.PlaceOrder},
		{"UpdateQuantity", http.MethodPatch, "/quantity-update/:id", nil, h.OrderAPI.UpdateQuantity},
		{"ListUsers", http.MethodGet, "/all-users", authed, h.UserAPI.ListUsers},
		{"UpdateUserRole", http.MethodPatch, "/user/role/update/:email", authed, h.UserAPI.UpdateUserRole},
		{"RequestSellerUpgrade", http.MethodPatch, "/become-seller-request/:email", authed, h.UserAPI.RequestSellerUpgrade},
		{"AdminStats", http.MethodGet, "/admin-stats", nil, h.StatsAPI.AdminStats},
	}
}

package plantnetserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	planthttpmapper "github.com/plantnet/plantnet-api/internal/domains/plants/adapters/http/mapper"
	plantports "github.com/plantnet/plantnet-api/internal/domains/plants/ports"
	apierrors "github.com/plantnet/plantnet-api/internal/shared/errors"
)

// searchLimit caps /plants?search= results.
const searchLimit = 50

// PlantAPI serves the catalogue.
type PlantAPI struct {
	service   plantports.Service
	responder *apierrors.Responder
}

// NewPlantAPI wires dependencies.
func NewPlantAPI(service plantports.Service, responder *apierrors.Responder) PlantAPI {
	return PlantAPI{service: service, responder: responder}
}

// Post /add-plant
func (api *PlantAPI) AddPlant(c *gin.Context) {
	var payload planthttpmapper.NewPlant
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	created, err := api.service.AddPlant(c.Request.Context(), planthttpmapper.ToDomainPlant(payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insertedId": created.ID, "plant": planthttpmapper.FromDomainPlant(created)})
}

// Get /plants
func (api *PlantAPI) ListPlants(c *gin.Context) {
	ctx := c.Request.Context()
	if query := strings.TrimSpace(c.Query("search")); query != "" {
		plants, err := api.service.SearchPlants(ctx, query, searchLimit)
		if err != nil {
			api.responder.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, planthttpmapper.FromDomainPlants(plants))
		return
	}
	plants, err := api.service.ListPlants(ctx)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, planthttpmapper.FromDomainPlants(plants))
}

// Get /plant/:id
func (api *PlantAPI) GetPlant(c *gin.Context) {
	plant, err := api.service.GetPlant(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, planthttpmapper.FromDomainPlant(plant))
}

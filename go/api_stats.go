package plantnetserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	statshttpmapper "github.com/plantnet/plantnet-api/internal/domains/stats/adapters/http/mapper"
	statsports "github.com/plantnet/plantnet-api/internal/domains/stats/ports"
	apierrors "github.com/plantnet/plantnet-api/internal/shared/errors"
)

type StatsAPI struct {
	service   statsports.Service
	responder *apierrors.Responder
}

func NewStatsAPI(service statsports.Service, responder *apierrors.Responder) StatsAPI {
	return StatsAPI{service: service, responder: responder}
}

// Get /admin-stats
func (api *StatsAPI) AdminStats(c *gin.Context) {
	stats, err := api.service.ComputeAdminStats(c.Request.Context())
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statshttpmapper.FromDomainStats(stats))
}

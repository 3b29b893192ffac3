package plantnetserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/plantnet/plantnet-api/internal/domains/orders/adapters/http/mapper"
	orderports "github.com/plantnet/plantnet-api/internal/domains/orders/ports"
	apierrors "github.com/plantnet/plantnet-api/internal/shared/errors"
)

// OrderAPI serves payments, order placement and manual stock updates.
type OrderAPI struct {
	service   orderports.Service
	workflows orderports.WorkflowOrchestrator
	responder *apierrors.Responder
}

// NewOrderAPI wires dependencies. Placement goes through workflows so a
// paid order that loses the stock race is refunded.
func NewOrderAPI(service orderports.Service, workflows orderports.WorkflowOrchestrator, responder *apierrors.Responder) OrderAPI {
	return OrderAPI{service: service, workflows: workflows, responder: responder}
}

// Post /create-payment-intent
func (api *OrderAPI) CreatePaymentIntent(c *gin.Context) {
	var payload orderhttpmapper.PaymentIntentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	intent, err := api.service.CreatePaymentIntent(c.Request.Context(), payload.PlantID, payload.Quantity)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.PaymentIntentResponse{ClientSecret: intent.ClientSecret})
}

// Post /order
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	var payload orderhttpmapper.OrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	order, err := api.workflows.PlaceOrder(c.Request.Context(), orderhttpmapper.ToPlacement(payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insertedId": order.ID, "order": orderhttpmapper.FromDomainOrder(order)})
}

// Patch /quantity-update/:id
func (api *OrderAPI) UpdateQuantity(c *gin.Context) {
	var payload orderhttpmapper.QuantityUpdateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	update, err := api.service.UpdateQuantity(c.Request.Context(), c.Param("id"), payload.QuantityUpdate, payload.Status)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromQuantityUpdate(update))
}

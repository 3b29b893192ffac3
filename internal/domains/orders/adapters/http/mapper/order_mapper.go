package mapper

import (
	"time"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/domains/orders/ports"
)

// PaymentIntentRequest is the body of POST /create-payment-intent.
type PaymentIntentRequest struct {
	PlantID  string `json:"plantId"`
	Quantity int    `json:"quantity"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type Seller struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo,omitempty"`
}

// OrderRequest is the body of POST /order. Client supplied price and plant
// details are accepted for compatibility and ignored.
type OrderRequest struct {
	PlantID       string   `json:"plantId"`
	Quantity      int      `json:"quantity"`
	TransactionID string   `json:"transactionId"`
	Customer      Customer `json:"customer"`
	Price         *float64 `json:"price,omitempty"`
	PlantName     string   `json:"plantName,omitempty"`
}

type Order struct {
	ID            string    `json:"_id"`
	PlantID       string    `json:"plantId"`
	PlantName     string    `json:"plantName"`
	PlantCategory string    `json:"plantCategory"`
	PlantImage    string    `json:"plantImage"`
	Seller        Seller    `json:"seller"`
	Customer      Customer  `json:"customer"`
	Quantity      int       `json:"quantity"`
	Price         float64   `json:"price"`
	TransactionID string    `json:"transactionId"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// QuantityUpdateRequest is the body of PATCH /quantity-update/:id.
type QuantityUpdateRequest struct {
	QuantityUpdate int    `json:"quantityUpdate"`
	Status         string `json:"status"`
}

type QuantityUpdateResponse struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	Quantity      int   `json:"quantity"`
}

func ToPlacement(in OrderRequest) domain.Placement {
	return domain.Placement{
		PlantID:       in.PlantID,
		Quantity:      in.Quantity,
		TransactionID: in.TransactionID,
		Customer:      domain.Party{Name: in.Customer.Name, Email: in.Customer.Email, Image: in.Customer.Photo},
	}
}

func FromDomainOrder(o *domain.Order) Order {
	if o == nil {
		return Order{}
	}
	return Order{
		ID:            o.ID,
		PlantID:       o.PlantID,
		PlantName:     o.PlantName,
		PlantCategory: o.PlantCategory,
		PlantImage:    o.PlantImage,
		Seller:        Seller{Name: o.Seller.Name, Email: o.Seller.Email, Image: o.Seller.Image},
		Customer:      Customer{Name: o.Customer.Name, Email: o.Customer.Email, Photo: o.Customer.Image},
		Quantity:      o.Quantity,
		Price:         o.Price.InexactFloat64(),
		TransactionID: o.TransactionID,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}
}

func FromQuantityUpdate(u *ports.QuantityUpdate) QuantityUpdateResponse {
	if u == nil {
		return QuantityUpdateResponse{}
	}
	return QuantityUpdateResponse{MatchedCount: u.Matched, ModifiedCount: u.Modified, Quantity: u.Quantity}
}

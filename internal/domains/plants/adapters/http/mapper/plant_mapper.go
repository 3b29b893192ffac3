package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/plantnet/plantnet-api/internal/domains/plants/domain"
)

// Seller is the HTTP representation of a listing owner.
type Seller struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

// NewPlant is the inbound payload of POST /add-plant.
type NewPlant struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Seller      Seller  `json:"seller"`
}

// Plant is the HTTP representation returned to clients. The id is exposed
// as "_id" to match the dashboard contract.
type Plant struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Seller      Seller    `json:"seller"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToDomainPlant converts the payload; validation happens in the service.
func ToDomainPlant(in NewPlant) *domain.Plant {
	return &domain.Plant{
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		Image:       in.Image,
		Price:       decimal.NewFromFloat(in.Price),
		Quantity:    in.Quantity,
		Seller:      domain.Seller{Name: in.Seller.Name, Email: in.Seller.Email, Image: in.Seller.Image},
	}
}

func FromDomainPlant(p *domain.Plant) Plant {
	if p == nil {
		return Plant{}
	}
	return Plant{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Image:       p.Image,
		Price:       p.Price.InexactFloat64(),
		Quantity:    p.Quantity,
		Seller:      Seller{Name: p.Seller.Name, Email: p.Seller.Email, Image: p.Seller.Image},
		CreatedAt:   p.CreatedAt,
	}
}

func FromDomainPlants(plants []*domain.Plant) []Plant {
	result := make([]Plant, 0, len(plants))
	for _, p := range plants {
		result = append(result, FromDomainPlant(p))
	}
	return result
}

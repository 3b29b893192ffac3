package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNameRequired      = errors.New("plant name is required")
	ErrNegativePrice     = errors.New("plant price must not be negative")
	ErrNegativeQuantity  = errors.New("plant quantity must not be negative")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Seller identifies the listing owner.
type Seller struct {
	Name  string
	Email string
	Image string
}

// Plant is a catalogue listing. Price is per unit; Quantity is units in stock.
type Plant struct {
	ID          string
	Name        string
	Category    string
	Description string
	Image       string
	Price       decimal.Decimal
	Quantity    int
	Seller      Seller
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPlant validates and constructs a listing without an identity.
func NewPlant(name, category, description, image string, price decimal.Decimal, quantity int, seller Seller) (*Plant, error) {
	p := &Plant{
		Name:        strings.TrimSpace(name),
		Category:    strings.TrimSpace(category),
		Description: strings.TrimSpace(description),
		Image:       strings.TrimSpace(image),
		Price:       price,
		Quantity:    quantity,
		Seller: Seller{
			Name:  strings.TrimSpace(seller.Name),
			Email: strings.ToLower(strings.TrimSpace(seller.Email)),
			Image: strings.TrimSpace(seller.Image),
		},
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate enforces invariants on the aggregate.
func (p *Plant) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Quantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// Adjust applies a stock delta. Decrements never take stock below zero.
func (p *Plant) Adjust(delta int) error {
	if p.Quantity+delta < 0 {
		return ErrInsufficientStock
	}
	p.Quantity += delta
	return nil
}

// Matches reports a case-insensitive substring hit on name, category or description.
func (p *Plant) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Category), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

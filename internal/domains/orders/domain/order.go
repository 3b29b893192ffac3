package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order progression. Only pending is written today.
type Status string

const (
	StatusPending Status = "pending"
)

var (
	ErrMissingPlant       = errors.New("plant id is required")
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrMissingTransaction = errors.New("transaction id is required")
	ErrMissingCustomer    = errors.New("customer email is required")
	ErrInsufficientStock  = errors.New("insufficient stock")
	// ErrNothingToCharge rejects purchases of free listings; providers
	// refuse zero-amount intents.
	ErrNothingToCharge = errors.New("order total must be greater than zero")
)

// Party identifies the seller or the customer of an order.
type Party struct {
	Name  string
	Email string
	Image string
}

// Listing is the catalogue view the order context needs.
type Listing struct {
	ID       string
	Name     string
	Category string
	Image    string
	Price    decimal.Decimal
	Quantity int
	Seller   Party
}

// Placement carries the client-supplied part of an order. Price is never
// taken from the client.
type Placement struct {
	PlantID       string
	Quantity      int
	TransactionID string
	Customer      Party
}

// Normalize trims identifiers and lowercases the customer email.
func (p Placement) Normalize() Placement {
	p.PlantID = strings.TrimSpace(p.PlantID)
	p.TransactionID = strings.TrimSpace(p.TransactionID)
	p.Customer.Name = strings.TrimSpace(p.Customer.Name)
	p.Customer.Email = strings.ToLower(strings.TrimSpace(p.Customer.Email))
	return p
}

func (p Placement) Validate() error {
	if p.PlantID == "" {
		return ErrMissingPlant
	}
	if p.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if p.TransactionID == "" {
		return ErrMissingTransaction
	}
	if p.Customer.Email == "" {
		return ErrMissingCustomer
	}
	return nil
}

// Order is a completed purchase. Price is the total charged.
type Order struct {
	ID            string
	PlantID       string
	PlantName     string
	PlantCategory string
	PlantImage    string
	Seller        Party
	Customer      Party
	Quantity      int
	Price         decimal.Decimal
	TransactionID string
	Status        Status
	CreatedAt     time.Time
}

// NewOrder snapshots the listing into a pending order priced server-side.
func NewOrder(listing Listing, placement Placement, now time.Time) (*Order, error) {
	placement = placement.Normalize()
	if err := placement.Validate(); err != nil {
		return nil, err
	}
	return &Order{
		PlantID:       listing.ID,
		PlantName:     listing.Name,
		PlantCategory: listing.Category,
		PlantImage:    listing.Image,
		Seller:        listing.Seller,
		Customer:      placement.Customer,
		Quantity:      placement.Quantity,
		Price:         Total(listing.Price, placement.Quantity),
		TransactionID: placement.TransactionID,
		Status:        StatusPending,
		CreatedAt:     now.UTC(),
	}, nil
}

// Total is unit price times quantity.
func Total(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

// MinorUnits converts a total into the smallest currency unit, rounding half away from zero.
func MinorUnits(total decimal.Decimal) int64 {
	return total.Shift(2).Round(0).IntPart()
}

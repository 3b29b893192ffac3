package domain

import "strings"

// IntentStatusSucceeded is the provider status of a captured payment.
const IntentStatusSucceeded = "succeeded"

// Metadata keys stamped on every intent so a placement can be matched to
// the purchase that was priced.
const (
	MetadataPlantID  = "plantId"
	MetadataQuantity = "quantity"
)

// IntentRequest is what the provider is asked to charge for one purchase.
type IntentRequest struct {
	Amount   int64
	Currency string
	PlantID  string
	Quantity int
}

// PaymentIntent mirrors the provider object. It is never persisted beyond
// Order.TransactionID.
type PaymentIntent struct {
	ID             string
	Amount         int64
	AmountReceived int64
	AmountRefunded int64
	Currency       string
	ClientSecret   string
	Status         string
	PlantID        string
	Quantity       int
}

func (p *PaymentIntent) Succeeded() bool {
	return p != nil && p.Status == IntentStatusSucceeded
}

// Refunded reports whether any captured money went back to the customer.
// Providers keep the intent succeeded after a refund.
func (p *PaymentIntent) Refunded() bool {
	return p != nil && p.AmountRefunded > 0
}

// Funds reports whether the intent was created for exactly this placement.
func (p *PaymentIntent) Funds(placement Placement, currency string) bool {
	if p == nil {
		return false
	}
	return p.PlantID == placement.PlantID &&
		p.Quantity == placement.Quantity &&
		strings.EqualFold(p.Currency, currency)
}

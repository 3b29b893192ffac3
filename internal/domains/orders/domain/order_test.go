package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder_PricesServerSide(t *testing.T) {
	listing := Listing{ID: "p1", Name: "Monstera", Category: "Indoor", Price: decimal.RequireFromString("12.50"), Quantity: 5,
		Seller: Party{Email: "seller@example.com"}}
	now := time.Date(2025, 3, 1, 23, 30, 0, 0, time.FixedZone("UTC+2", 2*3600))

	order, err := NewOrder(listing, Placement{PlantID: "p1", Quantity: 3, TransactionID: " pi_1 ",
		Customer: Party{Name: "Ann", Email: "Ann@Example.com"}}, now)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("37.5").Equal(order.Price))
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, "pi_1", order.TransactionID)
	assert.Equal(t, "ann@example.com", order.Customer.Email)
	assert.Equal(t, time.UTC, order.CreatedAt.Location())
	assert.Equal(t, "Monstera", order.PlantName)
}

func TestPlacement_Validate(t *testing.T) {
	valid := Placement{PlantID: "p1", Quantity: 1, TransactionID: "pi_1", Customer: Party{Email: "a@b.c"}}
	cases := []struct {
		name   string
		mutate func(p *Placement)
		want   error
	}{
		{"missing plant", func(p *Placement) { p.PlantID = "" }, ErrMissingPlant},
		{"zero quantity", func(p *Placement) { p.Quantity = 0 }, ErrInvalidQuantity},
		{"missing transaction", func(p *Placement) { p.TransactionID = "" }, ErrMissingTransaction},
		{"missing customer", func(p *Placement) { p.Customer.Email = "" }, ErrMissingCustomer},
	}
	require.NoError(t, valid.Validate())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			assert.ErrorIs(t, p.Validate(), tc.want)
		})
	}
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(3750), MinorUnits(Total(decimal.RequireFromString("12.50"), 3)))
	assert.Equal(t, int64(1999), MinorUnits(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(1), MinorUnits(decimal.RequireFromString("0.005")))
}

func TestDirection(t *testing.T) {
	d, err := ParseDirection(" Increase ")
	require.NoError(t, err)
	delta, err := d.Delta(4)
	require.NoError(t, err)
	assert.Equal(t, 4, delta)

	d, err = ParseDirection("decrease")
	require.NoError(t, err)
	delta, err = d.Delta(2)
	require.NoError(t, err)
	assert.Equal(t, -2, delta)

	_, err = d.Delta(0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

package application

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantnet/plantnet-api/internal/domains/orders/adapters/catalog"
	ordermemory "github.com/plantnet/plantnet-api/internal/domains/orders/adapters/memory"
	"github.com/plantnet/plantnet-api/internal/domains/orders/adapters/payments/offline"
	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/domains/orders/ports"
	plantmemory "github.com/plantnet/plantnet-api/internal/domains/plants/adapters/memory"
	plantdomain "github.com/plantnet/plantnet-api/internal/domains/plants/domain"
	"github.com/plantnet/plantnet-api/internal/platform/memtx"
	"github.com/plantnet/plantnet-api/internal/shared/events"
)

type fixture struct {
	svc      *Service
	plants   *plantmemory.Repository
	orders   *ordermemory.Repository
	gateway  *offline.Gateway
	recorder *events.Recorder
	plantID  string
}

func newFixture(t *testing.T, stock int, opts ...Option) fixture {
	t.Helper()
	plants := plantmemory.NewRepository()
	plant, err := plants.Create(context.Background(), &plantdomain.Plant{
		Name: "Monstera", Category: "Indoor", Price: decimal.RequireFromString("12.50"), Quantity: stock,
		Seller: plantdomain.Seller{Name: "Sam", Email: "seller@example.com"},
	})
	require.NoError(t, err)

	f := fixture{
		plants:   plants,
		orders:   ordermemory.NewRepository(),
		gateway:  offline.NewGateway(),
		recorder: &events.Recorder{},
		plantID:  plant.ID,
	}
	base := []Option{WithPaymentGateway(f.gateway), WithPublisher(f.recorder)}
	f.svc = NewService(f.orders, catalog.NewPlants(plants), memtx.NewTransactor(), append(base, opts...)...)
	return f
}

// paidPlacement pays through CreatePaymentIntent, so the intent is priced
// for exactly this plant and quantity.
func (f fixture) paidPlacement(t *testing.T, quantity int) domain.Placement {
	t.Helper()
	intent, err := f.svc.CreatePaymentIntent(context.Background(), f.plantID, quantity)
	require.NoError(t, err)
	return domain.Placement{PlantID: f.plantID, Quantity: quantity, TransactionID: intent.ID,
		Customer: domain.Party{Name: "Ann", Email: "ann@example.com"}}
}

func (f fixture) setStock(t *testing.T, quantity int) {
	t.Helper()
	_, err := f.plants.AdjustQuantity(context.Background(), f.plantID, quantity-f.stock(t))
	require.NoError(t, err)
}

func (f fixture) stock(t *testing.T) int {
	t.Helper()
	p, err := f.plants.GetByID(context.Background(), f.plantID)
	require.NoError(t, err)
	return p.Quantity
}

func TestCreatePaymentIntent_AmountInMinorUnits(t *testing.T) {
	f := newFixture(t, 5)

	intent, err := f.svc.CreatePaymentIntent(context.Background(), f.plantID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3750), intent.Amount)
	assert.Equal(t, "usd", intent.Currency)
	assert.NotEmpty(t, intent.ClientSecret)
	assert.Equal(t, f.plantID, intent.PlantID)
	assert.Equal(t, 3, intent.Quantity)
}

func TestCreatePaymentIntent_RejectsFreeListing(t *testing.T) {
	f := newFixture(t, 5)
	free, err := f.plants.Create(context.Background(), &plantdomain.Plant{
		Name: "Cutting", Price: decimal.Zero, Quantity: 3,
		Seller: plantdomain.Seller{Email: "seller@example.com"},
	})
	require.NoError(t, err)

	_, err = f.svc.CreatePaymentIntent(context.Background(), free.ID, 1)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrNothingToCharge)
}

func TestCreatePaymentIntent_Errors(t *testing.T) {
	f := newFixture(t, 2)

	_, err := f.svc.CreatePaymentIntent(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, ports.ErrPlantNotFound)

	_, err = f.svc.CreatePaymentIntent(context.Background(), f.plantID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.CreatePaymentIntent(context.Background(), f.plantID, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestPlaceOrder_DecrementsAndRecords(t *testing.T) {
	now := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	f := newFixture(t, 5, WithClock(func() time.Time { return now }))

	order, err := f.svc.PlaceOrder(context.Background(), f.paidPlacement(t, 2))
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("25").Equal(order.Price))
	assert.Equal(t, now, order.CreatedAt)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, "seller@example.com", order.Seller.Email)
	assert.Equal(t, 3, f.stock(t))
	assert.Equal(t, []string{EventOrderPlaced}, f.recorder.Names())
}

func TestPlaceOrder_RequiresSucceededPayment(t *testing.T) {
	f := newFixture(t, 5)

	_, err := f.svc.PlaceOrder(context.Background(), domain.Placement{PlantID: f.plantID, Quantity: 1,
		TransactionID: "pi_unknown", Customer: domain.Party{Email: "ann@example.com"}})
	require.ErrorIs(t, err, ports.ErrPaymentNotCompleted)
	assert.Equal(t, 5, f.stock(t))
}

func TestPlaceOrder_RejectsDuplicateTransaction(t *testing.T) {
	f := newFixture(t, 5)
	placement := f.paidPlacement(t, 1)

	_, err := f.svc.PlaceOrder(context.Background(), placement)
	require.NoError(t, err)
	_, err = f.svc.PlaceOrder(context.Background(), placement)
	require.ErrorIs(t, err, ports.ErrDuplicateOrder)

	assert.Equal(t, 4, f.stock(t))
	n, err := f.orders.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPlaceOrder_InsufficientStockLeavesNoTrace(t *testing.T) {
	f := newFixture(t, 2)
	placement := f.paidPlacement(t, 2)
	f.setStock(t, 1)

	_, err := f.svc.PlaceOrder(context.Background(), placement)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, f.stock(t))
	n, _ := f.orders.Count(context.Background())
	assert.Zero(t, n)
	assert.Empty(t, f.recorder.Names())
}

type failingRepo struct {
	ports.Repository
}

func (failingRepo) Create(context.Context, *domain.Order) (*domain.Order, error) {
	return nil, assert.AnError
}

func TestPlaceOrder_FailedInsertRollsBackDecrement(t *testing.T) {
	f := newFixture(t, 3)
	svc := NewService(failingRepo{f.orders}, catalog.NewPlants(f.plants), memtx.NewTransactor(), WithPaymentGateway(f.gateway))

	_, err := svc.PlaceOrder(context.Background(), f.paidPlacement(t, 2))
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, f.stock(t))
}

func TestPlaceOrder_LastUnitRace(t *testing.T) {
	f := newFixture(t, 1)
	placements := make([]domain.Placement, 8)
	for i := range placements {
		placements[i] = f.paidPlacement(t, 1)
	}

	var wg sync.WaitGroup
	var placed, rejected atomic.Int32
	for _, p := range placements {
		wg.Add(1)
		go func(p domain.Placement) {
			defer wg.Done()
			_, err := f.svc.PlaceOrder(context.Background(), p)
			switch {
			case err == nil:
				placed.Add(1)
			case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
				rejected.Add(1)
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, int32(1), placed.Load())
	assert.Equal(t, int32(7), rejected.Load())
	assert.Zero(t, f.stock(t))
}

func TestUpdateQuantity(t *testing.T) {
	f := newFixture(t, 4)

	res, err := f.svc.UpdateQuantity(context.Background(), f.plantID, 3, "increase")
	require.NoError(t, err)
	assert.Equal(t, 7, res.Quantity)
	assert.Equal(t, int64(1), res.Modified)

	res, err = f.svc.UpdateQuantity(context.Background(), f.plantID, 7, "decrease")
	require.NoError(t, err)
	assert.Zero(t, res.Quantity)

	_, err = f.svc.UpdateQuantity(context.Background(), f.plantID, 1, "decrease")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.svc.UpdateQuantity(context.Background(), f.plantID, 1, "up")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.UpdateQuantity(context.Background(), f.plantID, -2, "increase")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.UpdateQuantity(context.Background(), "nope", 1, "increase")
	assert.ErrorIs(t, err, ports.ErrPlantNotFound)
}

func TestUpdateQuantity_ConcurrentIncrements(t *testing.T) {
	f := newFixture(t, 4)
	const n = 32

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.UpdateQuantity(context.Background(), f.plantID, 1, "increase")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 4+n, f.stock(t))
}

func TestRefundPayment(t *testing.T) {
	f := newFixture(t, 1)
	placement := f.paidPlacement(t, 1)

	require.NoError(t, f.svc.RefundPayment(context.Background(), placement.TransactionID))
	intent, err := f.gateway.GetIntent(context.Background(), placement.TransactionID)
	require.NoError(t, err)
	assert.True(t, intent.Succeeded())
	assert.True(t, intent.Refunded())
	refunded, err := f.orders.IsRefunded(context.Background(), placement.TransactionID)
	require.NoError(t, err)
	assert.True(t, refunded)
	assert.Equal(t, []string{EventPaymentRefunded}, f.recorder.Names())
}

func TestRefundPayment_RefusesPlacedOrder(t *testing.T) {
	f := newFixture(t, 2)
	placement := f.paidPlacement(t, 1)
	_, err := f.svc.PlaceOrder(context.Background(), placement)
	require.NoError(t, err)

	err = f.svc.RefundPayment(context.Background(), placement.TransactionID)
	require.ErrorIs(t, err, ports.ErrDuplicateOrder)
	intent, err := f.gateway.GetIntent(context.Background(), placement.TransactionID)
	require.NoError(t, err)
	assert.False(t, intent.Refunded())
}

// silentRefunds models a provider whose refund is not yet visible on the
// intent: Refund succeeds but GetIntent still reports a clean capture.
type silentRefunds struct {
	*offline.Gateway
	refunds int
}

func (g *silentRefunds) Refund(context.Context, string) error {
	g.refunds++
	return nil
}

func TestPlaceOrder_RefundedIntentCannotBeReused(t *testing.T) {
	tests := []struct {
		name    string
		gateway func() ports.PaymentGateway
	}{
		{"provider reports the refund", func() ports.PaymentGateway { return offline.NewGateway() }},
		{"provider still reports a clean capture", func() ports.PaymentGateway { return &silentRefunds{Gateway: offline.NewGateway()} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 2, WithPaymentGateway(tt.gateway()))
			placement := f.paidPlacement(t, 2)
			f.setStock(t, 1)

			_, err := f.svc.PlaceOrder(context.Background(), placement)
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
			require.NoError(t, f.svc.RefundPayment(context.Background(), placement.TransactionID))

			f.setStock(t, 2)
			_, err = f.svc.PlaceOrder(context.Background(), placement)
			require.ErrorIs(t, err, ports.ErrPaymentRefunded)
			assert.Equal(t, 2, f.stock(t))
			n, err := f.orders.Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestPlaceOrder_RejectsIntentForAnotherPurchase(t *testing.T) {
	f := newFixture(t, 10)
	other, err := f.plants.Create(context.Background(), &plantdomain.Plant{
		Name: "Fern", Price: decimal.RequireFromString("12.50"), Quantity: 10,
		Seller: plantdomain.Seller{Email: "seller@example.com"},
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(p *domain.Placement)
	}{
		{"larger quantity", func(p *domain.Placement) { p.Quantity = 10 }},
		{"different plant", func(p *domain.Placement) { p.PlantID = other.ID }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			placement := f.paidPlacement(t, 1)
			tt.mutate(&placement)

			_, err := f.svc.PlaceOrder(context.Background(), placement)
			require.ErrorIs(t, err, ports.ErrPaymentMismatch)
			assert.Equal(t, 10, f.stock(t))
		})
	}
}

func TestPlaceOrder_RejectsCurrencyMismatch(t *testing.T) {
	f := newFixture(t, 5)
	placement := f.paidPlacement(t, 1)
	eur := NewService(f.orders, catalog.NewPlants(f.plants), memtx.NewTransactor(),
		WithPaymentGateway(f.gateway), WithCurrency("eur"))

	_, err := eur.PlaceOrder(context.Background(), placement)
	require.ErrorIs(t, err, ports.ErrPaymentMismatch)
	assert.Equal(t, 5, f.stock(t))
}

// repricedCatalog reports a new unit price from the stock update, as if the
// seller changed it after the intent was paid.
type repricedCatalog struct {
	ports.Catalog
	price decimal.Decimal
}

func (c repricedCatalog) Adjust(ctx context.Context, plantID string, delta int) (*domain.Listing, error) {
	listing, err := c.Catalog.Adjust(ctx, plantID, delta)
	if err != nil {
		return nil, err
	}
	listing.Price = c.price
	return listing, nil
}

func TestPlaceOrder_AmountCheckedAgainstCurrentPrice(t *testing.T) {
	f := newFixture(t, 5)
	placement := f.paidPlacement(t, 2)
	svc := NewService(f.orders, repricedCatalog{catalog.NewPlants(f.plants), decimal.RequireFromString("15")},
		memtx.NewTransactor(), WithPaymentGateway(f.gateway))

	_, err := svc.PlaceOrder(context.Background(), placement)
	require.ErrorIs(t, err, ports.ErrPaymentMismatch)
	assert.Equal(t, 5, f.stock(t))
	n, err := f.orders.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/domains/orders/ports"
	"github.com/plantnet/plantnet-api/internal/shared/events"
)

const (
	EventOrderPlaced     = "orders.order.placed"
	EventPaymentRefunded = "orders.payment.refunded"

	defaultCurrency = "usd"
)

// Service orchestrates purchase use cases.
type Service struct {
	repo      ports.Repository
	catalog   ports.Catalog
	tx        ports.Transactor
	payments  ports.PaymentGateway
	publisher events.Publisher
	logger    *slog.Logger
	currency  string
	now       func() time.Time
}

type Option func(*Service)

// WithPaymentGateway enables intent creation, payment verification on
// placement, and refunds.
func WithPaymentGateway(gateway ports.PaymentGateway) Option {
	return func(s *Service) {
		s.payments = gateway
	}
}

func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

func WithCurrency(currency string) Option {
	return func(s *Service) {
		if c := strings.ToLower(strings.TrimSpace(currency)); c != "" {
			s.currency = c
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source stamped on new orders.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, catalog ports.Catalog, tx ports.Transactor, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		catalog:   catalog,
		tx:        tx,
		publisher: events.NoopPublisher,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		currency:  defaultCurrency,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tx == nil {
		s.tx = passthrough{}
	}
	return s
}

// CreatePaymentIntent prices the purchase from the stored listing and opens
// an intent with the provider. Stock is checked but not reserved.
func (s *Service) CreatePaymentIntent(ctx context.Context, plantID string, quantity int) (*domain.PaymentIntent, error) {
	plantID = strings.TrimSpace(plantID)
	if plantID == "" {
		return nil, mapError(domain.ErrMissingPlant)
	}
	if quantity <= 0 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	if s.payments == nil {
		return nil, ports.ErrPaymentProvider
	}
	listing, err := s.catalog.Get(ctx, plantID)
	if err != nil {
		return nil, err
	}
	if quantity > listing.Quantity {
		return nil, domain.ErrInsufficientStock
	}
	amount := domain.MinorUnits(domain.Total(listing.Price, quantity))
	if amount <= 0 {
		return nil, mapError(domain.ErrNothingToCharge)
	}
	return s.payments.CreateIntent(ctx, domain.IntentRequest{
		Amount:   amount,
		Currency: s.currency,
		PlantID:  plantID,
		Quantity: quantity,
	})
}

// PlaceOrder verifies the payment, then decrements stock and inserts the
// order inside one transaction. Either both writes commit or neither does.
// The intent must be captured, never refunded, and priced for exactly this
// plant, quantity and current total.
func (s *Service) PlaceOrder(ctx context.Context, placement domain.Placement) (*domain.Order, error) {
	placement = placement.Normalize()
	if err := placement.Validate(); err != nil {
		return nil, mapError(err)
	}
	intent, err := s.verifiedIntent(ctx, placement)
	if err != nil {
		return nil, err
	}

	var placed *domain.Order
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByTransactionID(ctx, placement.TransactionID); err == nil {
			return ports.ErrDuplicateOrder
		} else if !errors.Is(err, ports.ErrNotFound) {
			return err
		}
		refunded, err := s.repo.IsRefunded(ctx, placement.TransactionID)
		if err != nil {
			return err
		}
		if refunded {
			return ports.ErrPaymentRefunded
		}
		listing, err := s.catalog.Adjust(ctx, placement.PlantID, -placement.Quantity)
		if err != nil {
			return err
		}
		if intent != nil {
			if due := domain.MinorUnits(domain.Total(listing.Price, placement.Quantity)); intent.Amount != due {
				return fmt.Errorf("%w: paid %d, order total %d", ports.ErrPaymentMismatch, intent.Amount, due)
			}
		}
		order, err := domain.NewOrder(*listing, placement, s.now())
		if err != nil {
			return err
		}
		placed, err = s.repo.Create(ctx, order)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, events.New(EventOrderPlaced, placed.ID, orderPlaced{
		OrderID:       placed.ID,
		PlantID:       placed.PlantID,
		Quantity:      placed.Quantity,
		Price:         placed.Price.StringFixed(2),
		TransactionID: placed.TransactionID,
		CustomerEmail: placed.Customer.Email,
		SellerEmail:   placed.Seller.Email,
	}))
	return placed, nil
}

// verifiedIntent returns nil without a gateway. The amount is checked later
// against the price read under the stock update.
func (s *Service) verifiedIntent(ctx context.Context, placement domain.Placement) (*domain.PaymentIntent, error) {
	if s.payments == nil {
		return nil, nil
	}
	intent, err := s.payments.GetIntent(ctx, placement.TransactionID)
	if err != nil {
		return nil, err
	}
	switch {
	case !intent.Succeeded():
		return nil, ports.ErrPaymentNotCompleted
	case intent.Refunded():
		return nil, ports.ErrPaymentRefunded
	case intent.AmountReceived < intent.Amount:
		return nil, ports.ErrPaymentNotCompleted
	case !intent.Funds(placement, s.currency):
		return nil, fmt.Errorf("%w: intent was created for plant %q x%d in %s",
			ports.ErrPaymentMismatch, intent.PlantID, intent.Quantity, intent.Currency)
	}
	return intent, nil
}

// RefundPayment returns a captured payment whose order could not be placed.
// The transaction id is marked refunded before the provider call so the
// intent can never fund an order afterwards.
func (s *Service) RefundPayment(ctx context.Context, transactionID string) error {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return mapError(domain.ErrMissingTransaction)
	}
	if s.payments == nil {
		return ports.ErrPaymentProvider
	}
	if _, err := s.repo.GetByTransactionID(ctx, transactionID); err == nil {
		return fmt.Errorf("%w: refusing to refund a placed order", ports.ErrDuplicateOrder)
	} else if !errors.Is(err, ports.ErrNotFound) {
		return err
	}
	if err := s.repo.MarkRefunded(ctx, transactionID, s.now()); err != nil {
		return err
	}
	if err := s.payments.Refund(ctx, transactionID); err != nil {
		return err
	}
	s.publish(ctx, events.New(EventPaymentRefunded, transactionID, map[string]string{"transactionId": transactionID}))
	return nil
}

// UpdateQuantity moves stock by amount in the given direction as one atomic
// increment. A decrease never takes stock below zero.
func (s *Service) UpdateQuantity(ctx context.Context, plantID string, amount int, direction string) (*ports.QuantityUpdate, error) {
	dir, err := domain.ParseDirection(direction)
	if err != nil {
		return nil, mapError(err)
	}
	delta, err := dir.Delta(amount)
	if err != nil {
		return nil, mapError(err)
	}
	listing, err := s.catalog.Adjust(ctx, strings.TrimSpace(plantID), delta)
	if err != nil {
		return nil, err
	}
	return &ports.QuantityUpdate{Matched: 1, Modified: 1, Quantity: listing.Quantity}, nil
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", slog.String("event", evt.Name), slog.String("error", err.Error()))
	}
}

type orderPlaced struct {
	OrderID       string `json:"orderId"`
	PlantID       string `json:"plantId"`
	Quantity      int    `json:"quantity"`
	Price         string `json:"price"`
	TransactionID string `json:"transactionId"`
	CustomerEmail string `json:"customerEmail"`
	SellerEmail   string `json:"sellerEmail"`
}

type passthrough struct{}

func (passthrough) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ ports.Service = (*Service)(nil)

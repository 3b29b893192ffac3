package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/domains/orders/ports"
	platformpostgres "github.com/plantnet/plantnet-api/internal/platform/postgres"
)

// TransactionIDConstraint is the unique index guarding one order per payment.
const TransactionIDConstraint = "idx_orders_transaction_id"

var _ ports.Repository = (*Repository)(nil)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID            string          `gorm:"primaryKey;column:id;type:uuid"`
	PlantID       string          `gorm:"column:plant_id;not null;index"`
	PlantName     string          `gorm:"column:plant_name"`
	PlantCategory string          `gorm:"column:plant_category"`
	PlantImage    string          `gorm:"column:plant_image"`
	SellerName    string          `gorm:"column:seller_name"`
	SellerEmail   string          `gorm:"column:seller_email;index"`
	SellerImage   string          `gorm:"column:seller_image"`
	CustomerName  string          `gorm:"column:customer_name"`
	CustomerEmail string          `gorm:"column:customer_email;index"`
	CustomerPhoto string          `gorm:"column:customer_photo"`
	Quantity      int             `gorm:"column:quantity;not null"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	TransactionID string          `gorm:"column:transaction_id;not null;uniqueIndex:idx_orders_transaction_id"`
	Status        string          `gorm:"column:status;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;not null;index"`
}

func (orderRecord) TableName() string { return "orders" }

type refundedIntentRecord struct {
	TransactionID string    `gorm:"primaryKey;column:transaction_id"`
	RefundedAt    time.Time `gorm:"column:refunded_at;not null"`
}

func (refundedIntentRecord) TableName() string { return "refunded_intents" }

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	record.ID = uuid.NewString()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if err := platformpostgres.Conn(ctx, r.db).Create(&record).Error; err != nil {
		if platformpostgres.IsUniqueViolation(err, TransactionIDConstraint) {
			return nil, ports.ErrDuplicateOrder
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := platformpostgres.Conn(ctx, r.db).First(&record, "transaction_id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := platformpostgres.Conn(ctx, r.db).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var n int64
	err := platformpostgres.Conn(ctx, r.db).Model(&orderRecord{}).Count(&n).Error
	return n, err
}

func (r *Repository) MarkRefunded(ctx context.Context, transactionID string, at time.Time) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	record := refundedIntentRecord{TransactionID: transactionID, RefundedAt: at.UTC()}
	return platformpostgres.Conn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record).Error
}

func (r *Repository) IsRefunded(ctx context.Context, transactionID string) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var n int64
	err := platformpostgres.Conn(ctx, r.db).
		Model(&refundedIntentRecord{}).
		Where("transaction_id = ?", transactionID).
		Count(&n).Error
	return n > 0, err
}

// DailyTotal is one row of the per-day order aggregation.
type DailyTotal struct {
	Day     string
	Orders  int64
	Revenue decimal.Decimal
}

// DailyTotals groups orders by UTC calendar day, oldest first.
func (r *Repository) DailyTotals(ctx context.Context) ([]DailyTotal, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var rows []DailyTotal
	err := platformpostgres.Conn(ctx, r.db).
		Model(&orderRecord{}).
		Select("to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, count(*) AS orders, coalesce(sum(price), 0) AS revenue").
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(o *domain.Order) orderRecord {
	return orderRecord{
		ID:            o.ID,
		PlantID:       o.PlantID,
		PlantName:     o.PlantName,
		PlantCategory: o.PlantCategory,
		PlantImage:    o.PlantImage,
		SellerName:    o.Seller.Name,
		SellerEmail:   o.Seller.Email,
		SellerImage:   o.Seller.Image,
		CustomerName:  o.Customer.Name,
		CustomerEmail: o.Customer.Email,
		CustomerPhoto: o.Customer.Image,
		Quantity:      o.Quantity,
		Price:         o.Price,
		TransactionID: o.TransactionID,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	return &domain.Order{
		ID:            r.ID,
		PlantID:       r.PlantID,
		PlantName:     r.PlantName,
		PlantCategory: r.PlantCategory,
		PlantImage:    r.PlantImage,
		Seller:        domain.Party{Name: r.SellerName, Email: r.SellerEmail, Image: r.SellerImage},
		Customer:      domain.Party{Name: r.CustomerName, Email: r.CustomerEmail, Image: r.CustomerPhoto},
		Quantity:      r.Quantity,
		Price:         r.Price,
		TransactionID: r.TransactionID,
		Status:        domain.Status(r.Status),
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

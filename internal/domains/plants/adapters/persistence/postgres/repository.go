package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plantnet/plantnet-api/internal/domains/plants/domain"
	"github.com/plantnet/plantnet-api/internal/domains/plants/ports"
	platformpostgres "github.com/plantnet/plantnet-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists listings in PostgreSQL using GORM. Statements join the
// transaction carried by ctx when there is one.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type plantRecord struct {
	ID          string          `gorm:"primaryKey;column:id;type:uuid"`
	Name        string          `gorm:"column:name;not null"`
	Category    string          `gorm:"column:category;index"`
	Description string          `gorm:"column:description"`
	Image       string          `gorm:"column:image"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null;check:chk_plants_quantity_non_negative,quantity >= 0"`
	SellerName  string          `gorm:"column:seller_name"`
	SellerEmail string          `gorm:"column:seller_email;index"`
	SellerImage string          `gorm:"column:seller_image"`
	CreatedAt   time.Time       `gorm:"column:created_at;index"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (plantRecord) TableName() string { return "plants" }

func (r *Repository) Create(ctx context.Context, plant *domain.Plant) (*domain.Plant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if plant == nil {
		return nil, errors.New("plant is nil")
	}
	record := toRecord(plant)
	record.ID = uuid.NewString()
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if err := platformpostgres.Conn(ctx, r.db).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Plant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ports.ErrNotFound
	}
	var record plantRecord
	if err := platformpostgres.Conn(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) List(ctx context.Context) ([]*domain.Plant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []plantRecord
	if err := platformpostgres.Conn(ctx, r.db).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	plants := make([]*domain.Plant, 0, len(records))
	for i := range records {
		plants = append(plants, records[i].toDomain())
	}
	return plants, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var n int64
	err := platformpostgres.Conn(ctx, r.db).Model(&plantRecord{}).Count(&n).Error
	return n, err
}

// AdjustQuantity runs a single guarded UPDATE ... RETURNING.
func (r *Repository) AdjustQuantity(ctx context.Context, id string, delta int) (*domain.Plant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ports.ErrNotFound
	}
	var record plantRecord
	result := platformpostgres.Conn(ctx, r.db).
		Model(&record).
		Clauses(clause.Returning{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrInsufficientStock
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres plant repository not configured")
	}
	return nil
}

func toRecord(p *domain.Plant) plantRecord {
	return plantRecord{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Image:       p.Image,
		Price:       p.Price,
		Quantity:    p.Quantity,
		SellerName:  p.Seller.Name,
		SellerEmail: p.Seller.Email,
		SellerImage: p.Seller.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r plantRecord) toDomain() *domain.Plant {
	return &domain.Plant{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		Image:       r.Image,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Seller:      domain.Seller{Name: r.SellerName, Email: r.SellerEmail, Image: r.SellerImage},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

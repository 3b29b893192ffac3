package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plantnet/plantnet-api/internal/domains/users/domain"
	"github.com/plantnet/plantnet-api/internal/domains/users/ports"
	platformpostgres "github.com/plantnet/plantnet-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userRecord struct {
	ID          string    `gorm:"primaryKey;column:id;type:uuid"`
	Email       string    `gorm:"column:email;not null;uniqueIndex"`
	Name        string    `gorm:"column:name"`
	Image       string    `gorm:"column:image"`
	Role        string    `gorm:"column:role;not null;index;check:chk_users_role,role IN ('customer','seller','admin')"`
	Status      string    `gorm:"column:status;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	LastLoginAt time.Time `gorm:"column:last_login_at;not null"`
}

func (userRecord) TableName() string { return "users" }

// upsertRow carries xmax = 0, which is true only for freshly inserted rows.
type upsertRow struct {
	userRecord
	Inserted bool `gorm:"column:inserted"`
}

const upsertSQL = `
INSERT INTO users (id, email, name, image, role, status, created_at, last_login_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (email) DO UPDATE SET last_login_at = EXCLUDED.last_login_at
RETURNING id, email, name, image, role, status, created_at, last_login_at, (xmax = 0) AS inserted`

func (r *Repository) UpsertOnLogin(ctx context.Context, candidate *domain.User, now time.Time) (*ports.UpsertResult, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, errors.New("user is nil")
	}
	var row upsertRow
	err := platformpostgres.Conn(ctx, r.db).Raw(upsertSQL,
		uuid.NewString(), candidate.Email, candidate.Name, candidate.Image,
		string(candidate.Role), string(candidate.Status), candidate.CreatedAt, now,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	res := &ports.UpsertResult{User: row.toDomain(), Inserted: row.Inserted}
	if !row.Inserted {
		res.Matched, res.Modified = 1, 1
	}
	return res, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := platformpostgres.Conn(ctx, r.db).First(&record, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) SetStatus(ctx context.Context, email string, role domain.Role, status domain.Status) (*domain.User, error) {
	return r.update(ctx, map[string]any{"status": string(status)}, "email = ? AND role = ?", email, string(role))
}

func (r *Repository) SetRole(ctx context.Context, email string, role domain.Role, status domain.Status) (*domain.User, error) {
	return r.update(ctx, map[string]any{"role": string(role), "status": string(status)}, "email = ?", email)
}

// update runs one guarded UPDATE ... RETURNING; no matching row is ErrNotFound.
func (r *Repository) update(ctx context.Context, values map[string]any, query string, args ...any) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	result := platformpostgres.Conn(ctx, r.db).
		Model(&record).
		Clauses(clause.Returning{}).
		Where(query, args...).
		Updates(values)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return record.toDomain(), nil
}

func (r *Repository) ListExcluding(ctx context.Context, email string) ([]*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []userRecord
	if err := platformpostgres.Conn(ctx, r.db).Where("email <> ?", email).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(records))
	for i := range records {
		users = append(users, records[i].toDomain())
	}
	return users, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var n int64
	err := platformpostgres.Conn(ctx, r.db).Model(&userRecord{}).Count(&n).Error
	return n, err
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:          r.ID,
		Email:       r.Email,
		Name:        r.Name,
		Image:       r.Image,
		Role:        domain.Role(r.Role),
		Status:      domain.Status(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		LastLoginAt: r.LastLoginAt.UTC(),
	}
}

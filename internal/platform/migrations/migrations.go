package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the relational schema for the bounded contexts.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&plantRecord{},
		&orderRecord{},
		&refundedIntentRecord{},
		&userRecord{},
		&revocationRecord{},
	)
}

// Plant schema mirrors the plants Postgres adapter.
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

// Order schema mirrors the orders Postgres adapter. The unique transaction
// index is what makes order placement idempotent.
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

// Refunded transaction ids can never fund an order.
type refundedIntentRecord struct {
	TransactionID string    `gorm:"primaryKey;column:transaction_id"`
	RefundedAt    time.Time `gorm:"column:refunded_at;not null"`
}

func (refundedIntentRecord) TableName() string { return "refunded_intents" }

// User schema mirrors the users Postgres adapter.
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

// Revocation schema mirrors the token revocation store.
type revocationRecord struct {
	TokenID   string    `gorm:"primaryKey;column:token_id;size:64"`
	Email     string    `gorm:"column:email;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (revocationRecord) TableName() string { return "token_revocations" }

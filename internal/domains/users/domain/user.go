package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the closed set of marketplace roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Status tracks the seller upgrade request.
type Status string

const (
	StatusNone      Status = ""
	StatusRequested Status = "requested"
	StatusVerified  Status = "verified"
)

var (
	ErrEmailRequired     = errors.New("email is required")
	ErrInvalidEmail      = errors.New("email must contain '@'")
	ErrInvalidRole       = errors.New(`role must be one of "customer", "seller", "admin"`)
	ErrInvalidTransition = errors.New("only customers can request a seller upgrade")
)

// ParseRole validates raw input against the closed role set.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleCustomer:
		return RoleCustomer, nil
	case RoleSeller:
		return RoleSeller, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// User is a marketplace account keyed by email.
type User struct {
	ID          string
	Email       string
	Name        string
	Image       string
	Role        Role
	Status      Status
	CreatedAt   time.Time
	LastLoginAt time.Time
}

// NormalizeEmail is the canonical form used for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// NewUser builds a first-login customer.
func NewUser(email, name, image string, now time.Time) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	now = now.UTC()
	return &User{
		Email:       email,
		Name:        strings.TrimSpace(name),
		Image:       strings.TrimSpace(image),
		Role:        RoleCustomer,
		Status:      StatusNone,
		CreatedAt:   now,
		LastLoginAt: now,
	}, nil
}

// RequestSeller marks the upgrade request. Sellers and admins cannot ask.
func (u *User) RequestSeller() error {
	if u.Role != RoleCustomer {
		return ErrInvalidTransition
	}
	u.Status = StatusRequested
	return nil
}

// AssignRole sets the role and marks the account verified.
func (u *User) AssignRole(role Role) {
	u.Role = role
	u.Status = StatusVerified
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

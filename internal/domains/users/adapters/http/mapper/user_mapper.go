package mapper

import (
	"time"

	userdomain "github.com/plantnet/plantnet-api/internal/domains/users/domain"
	userports "github.com/plantnet/plantnet-api/internal/domains/users/ports"
)

// LoginUser is the body of POST /user sent after the identity provider signs the user in.
type LoginUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// TokenRequest is the body of POST /jwt.
type TokenRequest struct {
	Email string `json:"email"`
}

type RoleUpdateRequest struct {
	Role string `json:"role"`
}

type RoleResponse struct {
	Role string `json:"role"`
}

// UpsertResponse keeps the document-store result shape the dashboard reads.
type UpsertResponse struct {
	InsertedID    string `json:"insertedId,omitempty"`
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
}

// UpdateResponse reports a single-document status or role change.
type UpdateResponse struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	User          User  `json:"user"`
}

// User represents the transport-level user payload.
type User struct {
	ID          string    `json:"_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Role        string    `json:"role"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

func FromUpsertResult(res *userports.UpsertResult) UpsertResponse {
	if res == nil {
		return UpsertResponse{}
	}
	out := UpsertResponse{MatchedCount: res.Matched, ModifiedCount: res.Modified}
	if res.Inserted && res.User != nil {
		out.InsertedID = res.User.ID
	}
	return out
}

func FromUpdatedUser(user *userdomain.User) UpdateResponse {
	return UpdateResponse{MatchedCount: 1, ModifiedCount: 1, User: FromDomainUser(user)}
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Image:       user.Image,
		Role:        string(user.Role),
		Status:      string(user.Status),
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}

// FromDomainUsers converts a slice of domain users to transport representation.
func FromDomainUsers(users []*userdomain.User) []User {
	result := make([]User, 0, len(users))
	for _, user := range users {
		result = append(result, FromDomainUser(user))
	}
	return result
}

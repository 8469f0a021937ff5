package profile

import (
	"context"
	"errors"
	"time"
)

// Role of an account in the marketplace.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
	RoleAdmin  Role = "admin"
)

// Profile is the buyer/farmer account record owned by the auth-backed
// store. Only the fields the checkout core reads are modeled.
type Profile struct {
	ID       string `firestore:"id"`
	Role     Role   `firestore:"role"`
	FullName string `firestore:"fullName"`
	Email    string `firestore:"email"`
	Phone    string `firestore:"phone"`
	Commune  string `firestore:"commune"`
	Verified bool   `firestore:"isVerified"`

	CreatedAt time.Time `firestore:"createdAt"`
}

var ErrNotFound = errors.New("profile: not found")

// Repository is the read port used for delivery prefill.
type Repository interface {
	GetByID(ctx context.Context, id string) (Profile, error)
}

package model

import (
	"time"

	"mlm-membership-platform/internal/domain"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Member is the identity record of a platform participant. The numeric ID is
// assigned by the store on insert; Code is the human-readable identifier
// (e.g. "NT1001") and never changes after creation.
type Member struct {
	ID           int64
	Code         string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// NewMember validates and constructs a member record. The password hash must
// already be computed; this constructor never sees a clear-text password.
func NewMember(name, email, phone, passwordHash string) (*Member, error) {
	if name == "" || email == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Member{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		CreatedAt:    time.Now(),
	}, nil
}

package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

// UserID is the unique identifier of a user
type UserID string

func (x UserID) String() string { return string(x) }

// NewUserID generates a new user ID
func NewUserID() UserID {
	return UserID(uuid.New().String())
}

// User is an account of a taxpayer or a staff member
type User struct {
	ID           UserID
	Email        string // Normalized to lower case
	Name         string
	PasswordHash string `masq:"secret"`
	Role         types.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks required fields of the user
func (u *User) Validate() error {
	if _, err := mail.ParseAddress(u.Email); err != nil || u.Email != NormalizeEmail(u.Email) {
		return goerr.Wrap(ErrInvalidInput, "invalid email", goerr.V("email", u.Email))
	}
	if strings.TrimSpace(u.Name) == "" {
		return goerr.Wrap(ErrInvalidInput, "name is required")
	}
	if !u.Role.IsValid() {
		return goerr.Wrap(ErrInvalidInput, "invalid role", goerr.V(RoleKey, u.Role))
	}
	return nil
}

// Actor returns the principal representing the user
func (u *User) Actor() *Actor {
	return &Actor{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
	}
}

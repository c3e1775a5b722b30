package ports

import (
	"context"

	"github.com/pixelmuse/imagevault/internal/core/domain"
)

// CreateUserInput carries the profile fields delivered by the identity
// provider's sign-up event.
type CreateUserInput struct {
	ExternalID    string
	FirstName     string
	LastName      string
	CreditBalance int64
}

// UpdateUserInput is a partial profile edit keyed by external id.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
}

// UserService defines the ledger use-cases.
type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	UpdateUser(ctx context.Context, externalID string, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, externalID string) (*domain.User, error)
	AdjustCredits(ctx context.Context, userID string, delta int64) (*domain.User, error)
}

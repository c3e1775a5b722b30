package ports

import (
	"context"

	"github.com/pixelmuse/imagevault/internal/core/domain"
)

// UserPatch carries a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	FirstName *string
	LastName  *string
}

// UserRepository defines persistence operations for the user ledger.
type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrUserExists when the
	// external id is already taken (backed by a unique index).
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	// UpdateByExternalID applies patch and returns the post-update record.
	UpdateByExternalID(ctx context.Context, externalID string, patch UserPatch) (*domain.User, error)
	// DeleteByExternalID removes the user and returns the deleted record.
	// Owned images are intentionally not cascaded.
	DeleteByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	// AdjustCredits applies delta to the balance of the user with the given
	// internal id as a single atomic increment. Delta may be negative.
	AdjustCredits(ctx context.Context, userID string, delta int64) (*domain.User, error)
}

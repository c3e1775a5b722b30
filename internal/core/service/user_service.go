package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pixelmuse/imagevault/internal/core/domain"
	"github.com/pixelmuse/imagevault/internal/core/ports"
)

// UserService implements the ledger use-cases on top of a UserRepository.
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// CreateUser records a user synced from the identity provider's sign-up
// event. Duplicate external ids surface as domain.ErrUserExists.
func (s *UserService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	now := time.Now().UTC()
	user := &domain.User{
		ExternalID:    input.ExternalID,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		CreditBalance: input.CreditBalance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("external_id", created.ExternalID).Str("user_id", created.ID).Msg("user created")
	return created, nil
}

func (s *UserService) GetUserByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return s.repo.FindByExternalID(ctx, externalID)
}

// UpdateUser applies a partial profile edit and returns the updated record.
func (s *UserService) UpdateUser(ctx context.Context, externalID string, input ports.UpdateUserInput) (*domain.User, error) {
	updated, err := s.repo.UpdateByExternalID(ctx, externalID, ports.UserPatch{
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// DeleteUser removes the user record. Images owned by the user are kept so
// that historical transformation records survive account removal.
func (s *UserService) DeleteUser(ctx context.Context, externalID string) (*domain.User, error) {
	deleted, err := s.repo.DeleteByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}

	s.log.Info().Str("external_id", externalID).Msg("user deleted")
	return deleted, nil
}

// AdjustCredits applies delta to the user's balance as a single atomic
// increment against the internal id, so concurrent debits from parallel
// requests never lose an update. There is no balance floor.
func (s *UserService) AdjustCredits(ctx context.Context, userID string, delta int64) (*domain.User, error) {
	updated, err := s.repo.AdjustCredits(ctx, userID, delta)
	if err != nil {
		return nil, fmt.Errorf("adjust credits: %w", err)
	}

	s.log.Info().
		Str("user_id", userID).
		Int64("delta", delta).
		Int64("balance", updated.CreditBalance).
		Msg("credit balance adjusted")

	return updated, nil
}

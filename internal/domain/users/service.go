package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// ResolveOrCreate maps an external identity to its internal User, creating
// the User on first sight. Two first-time logins for the same subject can
// race the insert; the unique constraint on subject decides the winner and
// the loser resolves the conflict by re-querying.
func (s *Service) ResolveOrCreate(ctx context.Context, identity Identity) (*User, error) {
	if identity.Subject == "" {
		return nil, fmt.Errorf("resolve user: %w", ErrNotFound)
	}

	existing, err := s.repo.FindBySubject(ctx, identity.Subject)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	created, err := s.repo.Insert(ctx, &User{
		Subject:  identity.Subject,
		Username: identity.Username,
		Email:    identity.Email,
	})
	if err == nil {
		s.logger.Info().Str("subject", identity.Subject).Msg("created user on first sight")
		return created, nil
	}
	if !errors.Is(err, ErrConflict) {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Lost the first-login race; the row exists now.
	existing, err = s.repo.FindBySubject(ctx, identity.Subject)
	if err != nil {
		return nil, fmt.Errorf("resolve user after conflict: %w", err)
	}
	return existing, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

package events

import (
	"context"
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
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// Register creates the event with the caller as its sole Owner member.
// The event row and the Owner membership commit together.
func (s *Service) Register(ctx context.Context, input NewEventInput, ownerID int64) (*CodingEvent, error) {
	event := &CodingEvent{
		Title:       input.Title,
		Description: input.Description,
		Date:        *input.Date,
	}

	created, err := s.repo.Create(ctx, event, ownerID)
	if err != nil {
		return nil, fmt.Errorf("register event: %w", err)
	}

	s.logger.Info().Int64("event_id", created.ID).Int64("owner_id", ownerID).Msg("event registered")
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]CodingEvent, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*CodingEvent, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// Cancel deletes the event. Memberships and tag associations cascade at the
// storage layer, so no orphans remain queryable afterwards.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("event_id", id).Msg("event cancelled")
	return nil
}

func (s *Service) ListByTag(ctx context.Context, tagID int64) ([]CodingEvent, error) {
	return s.repo.ListByTag(ctx, tagID)
}

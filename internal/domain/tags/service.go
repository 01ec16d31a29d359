package tags

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	events EventChecker
	logger zerolog.Logger
}

func NewService(repo Repository, events EventChecker, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: events,
		logger: logger.With().Str("component", "tags").Logger(),
	}
}

// Create persists a new tag. A duplicate name is rejected, never resolved
// to the existing tag. The unique index on name backstops the pre-check.
func (s *Service) Create(ctx context.Context, input NewTagInput) (*Tag, error) {
	taken, err := s.repo.ExistsByName(ctx, input.Name)
	if err != nil {
		return nil, fmt.Errorf("check tag name: %w", err)
	}
	if taken {
		return nil, ErrDuplicateName
	}

	tag, err := s.repo.Insert(ctx, input.Name)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.logger.Info().Int64("tag_id", tag.ID).Str("name", tag.Name).Msg("tag created")
	return tag, nil
}

func (s *Service) List(ctx context.Context) ([]Tag, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Tag, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service) ListByEvent(ctx context.Context, eventID int64) ([]Tag, error) {
	return s.repo.ListByEvent(ctx, eventID)
}

func (s *Service) bothExist(ctx context.Context, eventID, tagID int64) (bool, error) {
	eventExists, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	if !eventExists {
		return false, nil
	}
	tagExists, err := s.repo.Exists(ctx, tagID)
	if err != nil {
		return false, fmt.Errorf("check tag: %w", err)
	}
	return tagExists, nil
}

// CanAttach reports whether the association may be created: both resources
// exist and no association is present for the pair.
func (s *Service) CanAttach(ctx context.Context, eventID, tagID int64) (bool, error) {
	both, err := s.bothExist(ctx, eventID, tagID)
	if err != nil || !both {
		return false, err
	}
	tagged, err := s.repo.HasAssociation(ctx, eventID, tagID)
	if err != nil {
		return false, fmt.Errorf("check association: %w", err)
	}
	return !tagged, nil
}

// CanDetach reports whether the association may be removed: both resources
// exist and the association is present.
func (s *Service) CanDetach(ctx context.Context, eventID, tagID int64) (bool, error) {
	both, err := s.bothExist(ctx, eventID, tagID)
	if err != nil || !both {
		return false, err
	}
	return s.repo.HasAssociation(ctx, eventID, tagID)
}

// Attach links the tag to the event. The pre-checks produce the fast
// client-facing rejection; the composite primary key catches the
// duplicate-attach race at commit and maps to the same outcome.
func (s *Service) Attach(ctx context.Context, eventID, tagID int64) error {
	both, err := s.bothExist(ctx, eventID, tagID)
	if err != nil {
		return err
	}
	if !both {
		return ErrNotFound
	}
	tagged, err := s.repo.HasAssociation(ctx, eventID, tagID)
	if err != nil {
		return fmt.Errorf("check association: %w", err)
	}
	if tagged {
		return ErrAlreadyTagged
	}

	if err := s.repo.Attach(ctx, eventID, tagID); err != nil {
		if errors.Is(err, ErrConflict) {
			return ErrAlreadyTagged
		}
		return fmt.Errorf("attach tag: %w", err)
	}

	s.logger.Info().Int64("event_id", eventID).Int64("tag_id", tagID).Msg("tag attached")
	return nil
}

// Detach unlinks the tag from the event.
func (s *Service) Detach(ctx context.Context, eventID, tagID int64) error {
	both, err := s.bothExist(ctx, eventID, tagID)
	if err != nil {
		return err
	}
	if !both {
		return ErrNotFound
	}
	tagged, err := s.repo.HasAssociation(ctx, eventID, tagID)
	if err != nil {
		return fmt.Errorf("check association: %w", err)
	}
	if !tagged {
		return ErrNotTagged
	}

	if err := s.repo.Detach(ctx, eventID, tagID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotTagged
		}
		return fmt.Errorf("detach tag: %w", err)
	}

	s.logger.Info().Int64("event_id", eventID).Int64("tag_id", tagID).Msg("tag detached")
	return nil
}

package members

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
		logger: logger.With().Str("component", "members").Logger(),
	}
}

// Resolve returns the caller's membership in the event, or ErrNotFound.
func (s *Service) Resolve(ctx context.Context, eventID, userID int64) (*Member, error) {
	return s.repo.FindByEventAndUser(ctx, eventID, userID)
}

// IsMember reports whether the user holds any membership in the event.
// False when the event does not exist. Always re-queries: membership state
// must never be stale for an authorization decision.
func (s *Service) IsMember(ctx context.Context, eventID, userID int64) (bool, error) {
	exists, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	if !exists {
		return false, nil
	}

	_, err = s.repo.FindByEventAndUser(ctx, eventID, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return true, nil
}

// IsOwner reports whether the user is the event's Owner. Membership is
// checked first; a user cannot be Owner without being a member.
func (s *Service) IsOwner(ctx context.Context, eventID, userID int64) (bool, error) {
	isMember, err := s.IsMember(ctx, eventID, userID)
	if err != nil || !isMember {
		return false, err
	}

	member, err := s.repo.FindByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return member.Role == RoleOwner, nil
}

// CanRegister reports whether the user may join: true iff not already a
// member or owner of the event.
func (s *Service) CanRegister(ctx context.Context, eventID, userID int64) (bool, error) {
	isMember, err := s.IsMember(ctx, eventID, userID)
	if err != nil {
		return false, err
	}
	return !isMember, nil
}

// Join registers the user as a plain Member. The pre-check gives a fast
// rejection; the unique (user, event) constraint is the backstop when two
// joins race, surfaced as ErrAlreadyMember either way.
func (s *Service) Join(ctx context.Context, eventID, userID int64) error {
	canRegister, err := s.CanRegister(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if !canRegister {
		return ErrAlreadyMember
	}

	if _, err := s.repo.Insert(ctx, eventID, userID, RoleMember); err != nil {
		if errors.Is(err, ErrConflict) {
			return ErrAlreadyMember
		}
		return fmt.Errorf("join event: %w", err)
	}

	s.logger.Info().Int64("event_id", eventID).Int64("user_id", userID).Msg("user joined event")
	return nil
}

// Leave removes the caller's own membership. Owners must cancel the event
// instead of leaving it.
func (s *Service) Leave(ctx context.Context, eventID, userID int64) error {
	member, err := s.repo.FindByEventAndUser(ctx, eventID, userID)
	if errors.Is(err, ErrNotFound) {
		return ErrNotMember
	}
	if err != nil {
		return fmt.Errorf("leave event: %w", err)
	}
	if member.Role == RoleOwner {
		return ErrOwnerCannotLeave
	}

	if err := s.repo.DeleteByID(ctx, member.ID); err != nil {
		return fmt.Errorf("leave event: %w", err)
	}

	s.logger.Info().Int64("event_id", eventID).Int64("member_id", member.ID).Msg("member left event")
	return nil
}

// Remove deletes a member by id on behalf of the event owner. The owner
// check happens at the gate; this only verifies the member exists.
func (s *Service) Remove(ctx context.Context, memberID int64) error {
	exists, err := s.repo.Exists(ctx, memberID)
	if err != nil {
		return fmt.Errorf("check member: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return s.repo.DeleteByID(ctx, memberID)
}

// List returns the event's roster with user data joined in.
func (s *Service) List(ctx context.Context, eventID int64) ([]Member, error) {
	return s.repo.ListByEvent(ctx, eventID)
}

// Package relations maintains the relatedness index between members.
// The index is kept transitively closed on insert: relating two members
// also relates both of their existing families with each other, so the
// fee engine can read a member's whole family with a single lookup.
package relations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clubkasse/membership-tally/internal/lib/sl"
)

// Repository stores undirected relation edges. Implementations must
// treat (a, b) and (b, a) as the same edge.
type Repository interface {
	// RelativeIDs returns the ids of all members directly related to
	// the given one.
	RelativeIDs(ctx context.Context, memberID int64) ([]int64, error)
	// AddRelation inserts one edge. Inserting an existing edge is a
	// no-op.
	AddRelation(ctx context.Context, firstID, secondID int64) error
	// RemoveRelation deletes one edge if it exists.
	RemoveRelation(ctx context.Context, firstID, secondID int64) error
	// ClearRelations deletes every edge touching the member.
	ClearRelations(ctx context.Context, memberID int64) error
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Relatives returns the ids of all members related to the given one.
func (s *Service) Relatives(ctx context.Context, memberID int64) ([]int64, error) {
	const op = "relations.Relatives"

	ids, err := s.repo.RelativeIDs(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

// AreRelated reports whether the two members are related.
func (s *Service) AreRelated(ctx context.Context, firstID, secondID int64) (bool, error) {
	const op = "relations.AreRelated"

	if firstID == secondID {
		return false, nil
	}
	ids, err := s.repo.RelativeIDs(ctx, firstID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	for _, id := range ids {
		if id == secondID {
			return true, nil
		}
	}
	return false, nil
}

// MakeRelation relates two members and merges their families: every
// member of one family becomes related to every member of the other.
func (s *Service) MakeRelation(ctx context.Context, firstID, secondID int64) error {
	const op = "relations.MakeRelation"

	if firstID == secondID {
		return fmt.Errorf("%s: cannot relate member %d to itself", op, firstID)
	}

	firstFamily, err := s.family(ctx, firstID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	secondFamily, err := s.family(ctx, secondID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, a := range firstFamily {
		for _, b := range secondFamily {
			if a == b {
				continue
			}
			if err := s.repo.AddRelation(ctx, a, b); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	s.log.Info("related members",
		slog.Int64("first_id", firstID),
		slog.Int64("second_id", secondID),
		slog.Int("edges", len(firstFamily)*len(secondFamily)))
	return nil
}

// DropRelation removes the direct edge between two members. The rest of
// the index is left untouched: former in-laws that became related
// through this edge stay related until dropped explicitly.
func (s *Service) DropRelation(ctx context.Context, firstID, secondID int64) error {
	const op = "relations.DropRelation"

	if err := s.repo.RemoveRelation(ctx, firstID, secondID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetRelatives replaces the member's relations with the given set,
// merging families for each new relative as MakeRelation does.
func (s *Service) SetRelatives(ctx context.Context, memberID int64, relativeIDs []int64) error {
	const op = "relations.SetRelatives"

	if err := s.repo.ClearRelations(ctx, memberID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, id := range relativeIDs {
		if id == memberID {
			continue
		}
		if err := s.MakeRelation(ctx, memberID, id); err != nil {
			s.log.Error("failed to rebuild relation",
				slog.Int64("member_id", memberID),
				slog.Int64("relative_id", id),
				sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// family is the member itself plus all its current relatives.
func (s *Service) family(ctx context.Context, memberID int64) ([]int64, error) {
	ids, err := s.repo.RelativeIDs(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return append([]int64{memberID}, ids...), nil
}

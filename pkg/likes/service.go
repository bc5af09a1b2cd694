// Package likes manages the user↔tweet like relation with toggle
// semantics: one call likes, the next unlikes, and repeats are never an
// error.
package likes

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/warblr-app/warblr/pkg/metrics"
)

// Store is the persistence contract for like rows.
type Store interface {
	// Insert adds the like pair unless it already exists. Returns
	// whether a row was actually created.
	Insert(ctx context.Context, tweetID, userID int64) (bool, error)
	// Delete removes the like pair if present. Returns whether a row
	// was actually removed.
	Delete(ctx context.Context, tweetID, userID int64) (bool, error)
}

// Service implements the like toggle on top of a Store, keeping the
// tweet's like_count metric in step.
type Service struct {
	store   Store
	metrics metrics.Aggregator
	log     *logrus.Logger
}

func NewService(store Store, agg metrics.Aggregator, log *logrus.Logger) *Service {
	return &Service{store: store, metrics: agg, log: log}
}

// Toggle flips the like state of (tweetID, userID) and reports the new
// state. Calling it twice returns to where you started; under concurrent
// toggles the unique pair index guarantees at most one like row and the
// last commit decides the final state.
func (s *Service) Toggle(ctx context.Context, tweetID, userID int64) (bool, error) {
	removed, err := s.store.Delete(ctx, tweetID, userID)
	if err != nil {
		return false, err
	}
	if removed {
		s.bump(ctx, tweetID, -1)
		s.log.WithFields(logrus.Fields{
			"tweet_id": tweetID,
			"user_id":  userID,
			"liked":    false,
		}).Debug("Like toggled off")
		return false, nil
	}

	created, err := s.store.Insert(ctx, tweetID, userID)
	if err != nil {
		return false, err
	}
	if created {
		s.bump(ctx, tweetID, 1)
	}
	s.log.WithFields(logrus.Fields{
		"tweet_id": tweetID,
		"user_id":  userID,
		"liked":    true,
	}).Debug("Like toggled on")
	return true, nil
}

// Remove is the explicit unlike. Removing a like that does not exist is
// a no-op, not an error: the caller's intent (no like present) already
// holds, and the toggle endpoint is just as idempotent.
func (s *Service) Remove(ctx context.Context, tweetID, userID int64) error {
	removed, err := s.store.Delete(ctx, tweetID, userID)
	if err != nil {
		return err
	}
	if removed {
		s.bump(ctx, tweetID, -1)
	}
	return nil
}

// bump keeps like_count in step. Counter drift is preferable to failing
// the like itself, so errors are logged and swallowed.
func (s *Service) bump(ctx context.Context, tweetID, delta int64) {
	if err := s.metrics.Increment(ctx, tweetID, metrics.FieldLikeCount, delta); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"tweet_id": tweetID,
			"delta":    delta,
		}).Warn("Failed to update like count")
	}
}

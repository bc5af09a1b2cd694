package tweets

import (
	"context"
	"fmt"
	"time"

	"github.com/warblr-app/warblr/pkg/db/models"
	"github.com/warblr-app/warblr/pkg/users"
)

// Derived tweet attributes are computed on demand from current state plus
// store lookups. They are never written back to the entity; request-scope
// DTOs carry them to the caller.

// IsEditable reports whether the tweet can still be edited at the given
// instant: edit controls present, budget left, and inside the window.
// Missing or exhausted controls make the tweet read-only, not an error.
func IsEditable(t *models.Tweet, now time.Time) bool {
	return t.EditControls != nil &&
		t.EditControls.EditsRemaining > 0 &&
		now.Before(t.EditControls.EditableUntil)
}

// ResolveEditHistory fetches the superseded predecessor versions of the
// tweet, oldest edit first. Tweets without history resolve to an empty
// slice without touching the store.
func ResolveEditHistory(ctx context.Context, store Store, t *models.Tweet) ([]models.Tweet, error) {
	if len(t.EditHistoryTweetIDs) == 0 {
		return []models.Tweet{}, nil
	}

	history, err := store.FindByIDs(ctx, t.EditHistoryTweetIDs, true)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve edit history of tweet %d: %w", t.ID, err)
	}
	return history, nil
}

// ResolveReplyTargets fetches minimal summaries of the users this tweet
// replies to. Empty when the tweet mentions nobody.
func ResolveReplyTargets(ctx context.Context, userStore users.Store, t *models.Tweet) ([]users.Summary, error) {
	if len(t.ReplyingToIDs) == 0 {
		return []users.Summary{}, nil
	}

	targets, err := userStore.Summaries(ctx, t.ReplyingToIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reply targets of tweet %d: %w", t.ID, err)
	}
	return targets, nil
}

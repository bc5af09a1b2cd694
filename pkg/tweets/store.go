package tweets

import (
	"context"

	"github.com/warblr-app/warblr/pkg/db/models"
)

// Page selects a slice of an ordered listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	n := p.Number
	if n < 1 {
		n = 1
	}
	return (n - 1) * p.Limit()
}

// Limit returns the page size, defaulting to 20 and capping at 100.
func (p Page) Limit() int {
	switch {
	case p.Size < 1:
		return 20
	case p.Size > 100:
		return 100
	}
	return p.Size
}

// Store is the persistence contract for tweet rows. Queries exclude
// Superseded (soft-deleted) rows unless a method says otherwise.
type Store interface {
	// Get fetches the Active tweet with the given id. Returns a
	// NOT_FOUND Error when the row is absent or superseded.
	Get(ctx context.Context, id int64) (*models.Tweet, error)

	// Create persists a new Active tweet.
	Create(ctx context.Context, tweet *models.Tweet) error

	// CreateRevision atomically supersedes the tweet oldID and creates
	// replacement in its place. Returns a CONFLICT Error if oldID is no
	// longer Active, so two concurrent edits cannot both succeed.
	CreateRevision(ctx context.Context, oldID int64, replacement *models.Tweet) error

	// FindByIDs batch-fetches tweets by id. With includeSuperseded the
	// lookup targets soft-deleted rows only, ordered by deletion time
	// ascending, which is the edit-history order. Live rows never
	// qualify as prior versions.
	FindByIDs(ctx context.Context, ids []int64, includeSuperseded bool) ([]models.Tweet, error)

	// RepliesFor lists Active tweets replying to the given tweet,
	// oldest first. Replies with broken conversation linkage
	// (conversation_id IS NULL) are excluded, not errored.
	RepliesFor(ctx context.Context, tweetID int64, page Page) ([]models.Tweet, error)

	// TweetsByAuthor lists an author's Active tweets, newest first.
	TweetsByAuthor(ctx context.Context, authorID int64, page Page) ([]models.Tweet, error)
}

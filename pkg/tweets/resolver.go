package tweets

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/warblr-app/warblr/pkg/db/models"
)

// LikeIndex is the slice of the like store the resolver needs for
// listings. The likes package provides the GORM implementation.
type LikeIndex interface {
	// UsersWhoLiked lists users that like the tweet, ordered by like
	// creation time ascending.
	UsersWhoLiked(ctx context.Context, tweetID int64, page Page) ([]models.User, error)
	// TweetsLikedBy lists Active tweets the user likes, ordered by like
	// creation time ascending.
	TweetsLikedBy(ctx context.Context, userID int64, page Page) ([]models.Tweet, error)
}

// Resolver answers the relationship queries of the tweet graph with
// explicit batched lookups; no per-row lazy loading anywhere.
type Resolver struct {
	store Store
	likes LikeIndex
	log   *logrus.Logger
}

func NewResolver(store Store, likes LikeIndex, log *logrus.Logger) *Resolver {
	return &Resolver{store: store, likes: likes, log: log}
}

// RepliesForTweet lists the replies to a tweet, oldest first. Rows whose
// conversation linkage is broken (null conversation_id) are excluded by
// the store query rather than reported as errors.
func (r *Resolver) RepliesForTweet(ctx context.Context, tweetID int64, page Page) ([]models.Tweet, error) {
	replies, err := r.store.RepliesFor(ctx, tweetID, page)
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"tweet_id": tweetID,
		"page":     page.Number,
		"replies":  len(replies),
	}).Debug("Resolved replies for tweet")

	return replies, nil
}

// LikesForTweet lists the users that like a tweet in the order the likes
// arrived, paginated.
func (r *Resolver) LikesForTweet(ctx context.Context, tweetID int64, page Page) ([]models.User, error) {
	liked, err := r.likes.UsersWhoLiked(ctx, tweetID, page)
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"tweet_id": tweetID,
		"page":     page.Number,
		"users":    len(liked),
	}).Debug("Resolved likes for tweet")

	return liked, nil
}

// TweetsForUser lists a user's own tweets, newest first.
func (r *Resolver) TweetsForUser(ctx context.Context, userID int64, page Page) ([]models.Tweet, error) {
	return r.store.TweetsByAuthor(ctx, userID, page)
}

// LikedTweetsForUser lists the tweets a user likes, oldest like first.
func (r *Resolver) LikedTweetsForUser(ctx context.Context, userID int64, page Page) ([]models.Tweet, error) {
	return r.likes.TweetsLikedBy(ctx, userID, page)
}

// Package notify is the outbound event surface of the tweet domain.
// Downstream consumers (fan-out, feed indexing) subscribe behind the
// Notifier interface; the core fires after commit and never waits on
// delivery.
package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/warblr-app/warblr/pkg/db/models"
)

// Notifier receives domain events. Implementations must not block the
// caller; delivery failures are theirs to handle.
type Notifier interface {
	TweetCreated(ctx context.Context, tweet *models.Tweet)
}

// LogNotifier emits events to the structured log. It stands in for the
// real fan-out pipeline in development and tests.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) TweetCreated(ctx context.Context, tweet *models.Tweet) {
	n.log.WithFields(logrus.Fields{
		"event":           "tweet_created",
		"tweet_id":        tweet.ID,
		"author_id":       tweet.AuthorID,
		"conversation_id": tweet.ConversationID,
		"lang":            tweet.Lang,
	}).Info("Tweet created")
}

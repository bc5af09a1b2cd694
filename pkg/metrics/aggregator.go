// Package metrics maintains the per-tweet engagement counters.
package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/warblr-app/warblr/pkg/db/models"
)

// Field names one counter on the metrics row.
type Field string

const (
	FieldImpressionCount   Field = "impression_count"
	FieldReplyCount        Field = "reply_count"
	FieldLikeCount         Field = "like_count"
	FieldRetweetCount      Field = "retweet_count"
	FieldQuoteCount        Field = "quote_count"
	FieldVideoViewsCount   Field = "video_views_count"
	FieldURLLinkClicks     Field = "url_link_clicks"
	FieldUserProfileClicks Field = "user_profile_clicks"
)

// column whitelists counter names so a Field can never smuggle SQL.
var columns = map[Field]bool{
	FieldImpressionCount:   true,
	FieldReplyCount:        true,
	FieldLikeCount:         true,
	FieldRetweetCount:      true,
	FieldQuoteCount:        true,
	FieldVideoViewsCount:   true,
	FieldURLLinkClicks:     true,
	FieldUserProfileClicks: true,
}

// Aggregator reads and bumps tweet engagement counters.
type Aggregator interface {
	// Snapshot returns the persisted counters for a tweet, or an
	// all-zero snapshot when no row exists yet. Absence is not an error.
	Snapshot(ctx context.Context, tweetID int64) (models.TweetMetrics, error)
	// Increment atomically adds delta to one counter, creating the row
	// on first touch. Concurrent increments never lose updates.
	Increment(ctx context.Context, tweetID int64, field Field, delta int64) error
}

// GormAggregator implements Aggregator on the tweet_metrics table.
type GormAggregator struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewGormAggregator(db *gorm.DB, log *logrus.Logger) *GormAggregator {
	return &GormAggregator{db: db, log: log}
}

func (a *GormAggregator) Snapshot(ctx context.Context, tweetID int64) (models.TweetMetrics, error) {
	var m models.TweetMetrics
	err := a.db.WithContext(ctx).
		Where("tweet_id = ?", tweetID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Virtual zero-record: callers never null-check metrics.
		return models.TweetMetrics{TweetID: tweetID}, nil
	}
	if err != nil {
		return models.TweetMetrics{}, fmt.Errorf("failed to load metrics for tweet %d: %w", tweetID, err)
	}
	return m, nil
}

func (a *GormAggregator) Increment(ctx context.Context, tweetID int64, field Field, delta int64) error {
	if !columns[field] {
		return fmt.Errorf("unknown metrics field %q", field)
	}

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lazy row creation; a racing create loses quietly.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tweet_id"}},
			DoNothing: true,
		}).Create(&models.TweetMetrics{TweetID: tweetID}).Error; err != nil {
			return err
		}

		// The add happens inside the database, so concurrent bumps of
		// the same counter serialize instead of overwriting each other.
		return tx.Model(&models.TweetMetrics{}).
			Where("tweet_id = ?", tweetID).
			UpdateColumn(string(field), gorm.Expr(string(field)+" + ?", delta)).Error
	})
	if err != nil {
		return fmt.Errorf("failed to increment %s for tweet %d: %w", field, tweetID, err)
	}

	a.log.WithFields(logrus.Fields{
		"tweet_id": tweetID,
		"field":    field,
		"delta":    delta,
	}).Debug("Metrics counter updated")

	return nil
}

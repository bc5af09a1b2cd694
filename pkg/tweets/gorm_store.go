package tweets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/warblr-app/warblr/pkg/db/models"
)

// GormStore implements Store on top of GORM/postgres.
type GormStore struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewGormStore(db *gorm.DB, log *logrus.Logger) *GormStore {
	return &GormStore{db: db, log: log}
}

func (s *GormStore) Get(ctx context.Context, id int64) (*models.Tweet, error) {
	var tweet models.Tweet
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.TweetStatusActive).
		First(&tweet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrCodeNotFound, fmt.Sprintf("tweet %d not found", id), err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tweet %d: %w", id, err)
	}
	return &tweet, nil
}

func (s *GormStore) Create(ctx context.Context, tweet *models.Tweet) error {
	if err := s.db.WithContext(ctx).Create(tweet).Error; err != nil {
		return fmt.Errorf("failed to create tweet: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"tweet_id":        tweet.ID,
		"author_id":       tweet.AuthorID,
		"conversation_id": tweet.ConversationID,
	}).Debug("Tweet row created")

	return nil
}

// CreateRevision runs the supersede-old + create-new transition in one
// transaction. The supersede is conditioned on the old row still being
// Active: whichever concurrent edit commits second sees zero rows updated
// and fails with CONFLICT instead of double-superseding.
func (s *GormStore) CreateRevision(ctx context.Context, oldID int64, replacement *models.Tweet) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		res := tx.Model(&models.Tweet{}).
			Where("id = ? AND status = ?", oldID, models.TweetStatusActive).
			Updates(map[string]interface{}{
				"status":     models.TweetStatusSuperseded,
				"deleted_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to supersede tweet %d: %w", oldID, res.Error)
		}
		if res.RowsAffected == 0 {
			return NewError(ErrCodeConflict,
				fmt.Sprintf("tweet %d was superseded by a concurrent edit", oldID), nil)
		}

		if err := tx.Create(replacement).Error; err != nil {
			return fmt.Errorf("failed to create revision of tweet %d: %w", oldID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"tweet_id":     replacement.ID,
		"supersedes":   oldID,
		"history_size": len(replacement.EditHistoryTweetIDs),
	}).Info("Tweet revision created")

	return nil
}

func (s *GormStore) FindByIDs(ctx context.Context, ids []int64, includeSuperseded bool) ([]models.Tweet, error) {
	if len(ids) == 0 {
		return []models.Tweet{}, nil
	}

	q := s.db.WithContext(ctx)
	if includeSuperseded {
		// Restricted to soft-deleted rows: a corrupt history list must
		// not surface a live tweet as a prior version.
		q = q.Unscoped().Where("deleted_at IS NOT NULL").Order("deleted_at ASC")
	} else {
		q = q.Where("status = ?", models.TweetStatusActive).Order("created_at ASC")
	}

	var found []models.Tweet
	if err := q.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to batch-load tweets: %w", err)
	}
	return found, nil
}

func (s *GormStore) RepliesFor(ctx context.Context, tweetID int64, page Page) ([]models.Tweet, error) {
	var replies []models.Tweet
	err := s.db.WithContext(ctx).
		Where("in_reply_to_tweet_id = ? AND conversation_id IS NOT NULL AND status = ?",
			tweetID, models.TweetStatusActive).
		Order("created_at ASC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&replies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load replies for tweet %d: %w", tweetID, err)
	}
	return replies, nil
}

func (s *GormStore) TweetsByAuthor(ctx context.Context, authorID int64, page Page) ([]models.Tweet, error) {
	var ts []models.Tweet
	err := s.db.WithContext(ctx).
		Where("author_id = ? AND status = ?", authorID, models.TweetStatusActive).
		Order("created_at DESC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&ts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load tweets for author %d: %w", authorID, err)
	}
	return ts, nil
}

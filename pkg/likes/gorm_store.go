package likes

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/warblr-app/warblr/pkg/db/models"
	"github.com/warblr-app/warblr/pkg/tweets"
)

// GormStore implements Store and tweets.LikeIndex on the
// user_tweet_likes table.
type GormStore struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewGormStore(db *gorm.DB, log *logrus.Logger) *GormStore {
	return &GormStore{db: db, log: log}
}

func (s *GormStore) Insert(ctx context.Context, tweetID, userID int64) (bool, error) {
	like := models.UserTweetLike{
		TweetID:   tweetID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	// The unique pair index plus DO NOTHING makes concurrent likes from
	// the same user collapse into a single row.
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tweet_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&like)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert like: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) Delete(ctx context.Context, tweetID, userID int64) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("tweet_id = ? AND user_id = ?", tweetID, userID).
		Delete(&models.UserTweetLike{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete like: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UsersWhoLiked lists the users liking a tweet ordered by when the like
// arrived, in one join per page.
func (s *GormStore) UsersWhoLiked(ctx context.Context, tweetID int64, page tweets.Page) ([]models.User, error) {
	var liked []models.User
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN user_tweet_likes ON user_tweet_likes.user_id = users.id").
		Where("user_tweet_likes.tweet_id = ?", tweetID).
		Order("user_tweet_likes.created_at ASC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&liked).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load likes for tweet %d: %w", tweetID, err)
	}
	return liked, nil
}

// TweetsLikedBy lists the Active tweets a user likes, oldest like first.
func (s *GormStore) TweetsLikedBy(ctx context.Context, userID int64, page tweets.Page) ([]models.Tweet, error) {
	var liked []models.Tweet
	err := s.db.WithContext(ctx).
		Model(&models.Tweet{}).
		Joins("JOIN user_tweet_likes ON user_tweet_likes.tweet_id = tweets.id").
		Where("user_tweet_likes.user_id = ? AND tweets.status = ?", userID, models.TweetStatusActive).
		Order("user_tweet_likes.created_at ASC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&liked).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load liked tweets for user %d: %w", userID, err)
	}
	return liked, nil
}

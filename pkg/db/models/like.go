package models

import "time"

// UserTweetLike is the many-to-many join row between users and the tweets
// they like. The (tweet_id, user_id) pair is unique; presence means
// "liked" and the row is removed on unlike.
type UserTweetLike struct {
	ID      int64 `gorm:"primaryKey;autoIncrement;column:id"`
	TweetID int64 `gorm:"column:tweet_id;not null;uniqueIndex:idx_tweet_user_like"`
	UserID  int64 `gorm:"column:user_id;not null;uniqueIndex:idx_tweet_user_like"`

	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
}

// TableName specifies the table name for the UserTweetLike model
func (UserTweetLike) TableName() string {
	return "user_tweet_likes"
}

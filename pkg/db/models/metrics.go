package models

import "time"

// TweetMetrics holds the engagement counters for one tweet. The row is
// created lazily on the first increment; readers that find no row get a
// zero-valued snapshot instead of an error.
type TweetMetrics struct {
	TweetID int64 `gorm:"primaryKey;column:tweet_id"`

	ImpressionCount   int64 `gorm:"column:impression_count;not null;default:0"`
	ReplyCount        int64 `gorm:"column:reply_count;not null;default:0"`
	LikeCount         int64 `gorm:"column:like_count;not null;default:0"`
	RetweetCount      int64 `gorm:"column:retweet_count;not null;default:0"`
	QuoteCount        int64 `gorm:"column:quote_count;not null;default:0"`
	VideoViewsCount   int64 `gorm:"column:video_views_count;not null;default:0"`
	URLLinkClicks     int64 `gorm:"column:url_link_clicks;not null;default:0"`
	UserProfileClicks int64 `gorm:"column:user_profile_clicks;not null;default:0"`

	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for the TweetMetrics model
func (TweetMetrics) TableName() string {
	return "tweet_metrics"
}

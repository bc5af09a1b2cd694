package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ReplySetting controls who may reply to a tweet.
type ReplySetting string

const (
	ReplyEveryone       ReplySetting = "everyone"
	ReplyFollowing      ReplySetting = "following"
	ReplyMentionedUsers ReplySetting = "mentionedUsers"
)

// Valid reports whether the value is one of the known reply settings.
func (r ReplySetting) Valid() bool {
	switch r {
	case ReplyEveryone, ReplyFollowing, ReplyMentionedUsers:
		return true
	}
	return false
}

// TweetStatus tracks the versioning state of a tweet row. A tweet is
// Active while it is the live version and Superseded once an edit has
// replaced it. Superseded rows are soft-deleted and kept forever.
type TweetStatus string

const (
	TweetStatusActive     TweetStatus = "active"
	TweetStatusSuperseded TweetStatus = "superseded"
)

// EditControls is the per-tweet edit budget, stored as jsonb.
// EditableUntil is fixed at first posting and never moves on edit.
type EditControls struct {
	EditsRemaining int       `json:"edits_remaining"`
	EditableUntil  time.Time `json:"editable_until"`
}

func (e *EditControls) Value() (driver.Value, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

func (e *EditControls) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	}
	return fmt.Errorf("cannot scan %T into EditControls", src)
}

// Withheld carries takedown metadata for region-restricted tweets.
type Withheld struct {
	Copyright    bool     `json:"copyright,omitempty"`
	CountryCodes []string `json:"country_codes,omitempty"`
	Scope        string   `json:"scope,omitempty"`
}

func (w *Withheld) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	return json.Marshal(w)
}

func (w *Withheld) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	}
	return fmt.Errorf("cannot scan %T into Withheld", src)
}

// Tweet is the database model for a single tweet version. Edits never
// mutate a row: they supersede it and create a fresh Active row that
// carries the old id in EditHistoryTweetIDs.
type Tweet struct {
	ID       int64 `gorm:"primaryKey;column:id"`
	AuthorID int64 `gorm:"column:author_id;not null;index"`

	Text string `gorm:"column:text;size:140;not null"`
	Lang string `gorm:"column:lang;size:8;index"`

	ReplySettings     ReplySetting `gorm:"column:reply_settings;type:reply_setting;default:everyone"`
	PossiblySensitive bool         `gorm:"column:possibly_sensitive;default:false"`
	Source            string       `gorm:"column:source"`

	// VisibleFor is nil for public tweets, otherwise the audience user ids.
	VisibleFor pq.Int64Array `gorm:"column:visible_for;type:bigint[]"`
	Withheld   *Withheld     `gorm:"column:withheld;type:jsonb"`

	// Conversation graph. ConversationID always points at the thread
	// root, never at an intermediate reply.
	ConversationID     *int64 `gorm:"column:conversation_id;index"`
	InReplyToTweetID   *int64 `gorm:"column:in_reply_to_tweet_id;index"`
	RetweetFromTweetID *int64 `gorm:"column:retweet_from_tweet_id"`

	// ReplyingToIDs are the users this tweet is directed at.
	ReplyingToIDs pq.Int64Array `gorm:"column:replying_to_ids;type:bigint[]"`

	// EditHistoryTweetIDs lists superseded predecessor versions,
	// oldest first.
	EditHistoryTweetIDs pq.Int64Array `gorm:"column:edit_history_tweet_ids;type:bigint[]"`
	EditControls        *EditControls `gorm:"column:edit_controls;type:jsonb"`

	Status TweetStatus `gorm:"column:status;type:tweet_status;default:active;index"`

	CreatedAt time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// TableName specifies the table name for the Tweet model
func (Tweet) TableName() string {
	return "tweets"
}

// IsReply reports whether the tweet sits below another tweet in a thread.
func (t *Tweet) IsReply() bool {
	return t.InReplyToTweetID != nil
}

// IsRetweet reports whether the tweet is a plain retweet pointer.
func (t *Tweet) IsRetweet() bool {
	return t.RetweetFromTweetID != nil
}

package tweets

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/warblr-app/warblr/pkg/db/models"
	"github.com/warblr-app/warblr/pkg/notify"
	"github.com/warblr-app/warblr/pkg/snowflake"
	"github.com/warblr-app/warblr/pkg/users"
)

// DefaultSource labels tweets posted without an explicit client name.
const DefaultSource = "Warblr Web App"

// EditPolicy is the edit budget granted to every fresh tweet. The window
// starts at first posting and does not reset on edit.
type EditPolicy struct {
	MaxEdits int
	Window   time.Duration
}

// DefaultEditPolicy mirrors the product rule: five edits within thirty
// minutes of the original post.
func DefaultEditPolicy() EditPolicy {
	return EditPolicy{
		MaxEdits: 5,
		Window:   30 * time.Minute,
	}
}

func (p EditPolicy) validate() error {
	if p.MaxEdits < 1 {
		return fmt.Errorf("edit policy max edits must be positive, got %d", p.MaxEdits)
	}
	if p.Window <= 0 {
		return fmt.Errorf("edit policy window must be positive, got %s", p.Window)
	}
	return nil
}

// Engine implements edit-as-new-version semantics: creating tweets and
// editing them by superseding the old row with a linked replacement.
type Engine struct {
	store    Store
	users    users.Store
	ids      *snowflake.Generator
	notifier notify.Notifier
	policy   EditPolicy
	log      *logrus.Logger

	// now is swapped out in tests to pin the clock.
	now func() time.Time
}

// EngineConfig wires the engine's collaborators.
type EngineConfig struct {
	Store    Store
	Users    users.Store
	IDs      *snowflake.Generator
	Notifier notify.Notifier
	Policy   EditPolicy
	Logger   *logrus.Logger
}

func NewEngine(config EngineConfig) (*Engine, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("engine requires a tweet store")
	}
	if config.Users == nil {
		return nil, fmt.Errorf("engine requires a user store")
	}
	if config.IDs == nil {
		return nil, fmt.Errorf("engine requires an id generator")
	}
	if config.Notifier == nil {
		return nil, fmt.Errorf("engine requires a notifier")
	}
	if err := config.Policy.validate(); err != nil {
		return nil, err
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	return &Engine{
		store:    config.Store,
		users:    config.Users,
		ids:      config.IDs,
		notifier: config.Notifier,
		policy:   config.Policy,
		log:      config.Logger,
		now:      time.Now,
	}, nil
}

// ProcessTweet creates a tweet when in.ID is zero, otherwise edits the
// tweet in.ID by superseding it and creating a new Active version that
// carries the edit history forward.
func (e *Engine) ProcessTweet(ctx context.Context, in Input, authorID int64) (*models.Tweet, error) {
	if in.ID == 0 {
		return e.create(ctx, in, authorID)
	}
	return e.edit(ctx, in, authorID)
}

func (e *Engine) create(ctx context.Context, in Input, authorID int64) (*models.Tweet, error) {
	if err := e.validate(ctx, in); err != nil {
		return nil, err
	}

	now := e.now()
	tweet := e.buildTweet(in, authorID, now)
	tweet.EditHistoryTweetIDs = pq.Int64Array{}
	tweet.EditControls = &models.EditControls{
		EditsRemaining: e.policy.MaxEdits,
		EditableUntil:  now.Add(e.policy.Window),
	}

	if err := e.linkConversation(ctx, in, tweet); err != nil {
		return nil, err
	}

	if err := e.store.Create(ctx, tweet); err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"tweet_id":        tweet.ID,
		"author_id":       authorID,
		"conversation_id": tweet.ConversationID,
		"edits_remaining": tweet.EditControls.EditsRemaining,
	}).Info("Tweet created")

	// Fire-and-forget: downstream delivery never blocks or fails the create.
	e.notifier.TweetCreated(ctx, tweet)

	return tweet, nil
}

func (e *Engine) edit(ctx context.Context, in Input, authorID int64) (*models.Tweet, error) {
	current, err := e.store.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if current.AuthorID != authorID {
		// Editing someone else's tweet reveals nothing about it.
		return nil, NewError(ErrCodeNotFound, fmt.Sprintf("tweet %d not found", in.ID), nil)
	}

	now := e.now()
	if !IsEditable(current, now) {
		return nil, NewError(ErrCodeNotEditable,
			fmt.Sprintf("tweet %d is outside its edit window or budget", in.ID), nil)
	}

	if err := e.validate(ctx, in); err != nil {
		return nil, err
	}

	// The replacement keeps the immutable context of the original:
	// author, conversation linkage, and the original edit window.
	replacement := e.buildTweet(in, current.AuthorID, now)
	replacement.ConversationID = current.ConversationID
	replacement.InReplyToTweetID = current.InReplyToTweetID
	replacement.RetweetFromTweetID = current.RetweetFromTweetID
	replacement.EditHistoryTweetIDs = append(append(pq.Int64Array{}, current.EditHistoryTweetIDs...), current.ID)
	replacement.EditControls = &models.EditControls{
		EditsRemaining: current.EditControls.EditsRemaining - 1,
		EditableUntil:  current.EditControls.EditableUntil,
	}

	if err := e.store.CreateRevision(ctx, current.ID, replacement); err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"tweet_id":        replacement.ID,
		"supersedes":      current.ID,
		"author_id":       authorID,
		"edits_remaining": replacement.EditControls.EditsRemaining,
	}).Info("Tweet edited")

	return replacement, nil
}

// buildTweet assembles a fresh Active row from the input fields.
func (e *Engine) buildTweet(in Input, authorID int64, now time.Time) *models.Tweet {
	source := in.Source
	if source == "" {
		source = DefaultSource
	}
	replySettings := in.ReplySettings
	if replySettings == "" {
		replySettings = models.ReplyEveryone
	}

	tweet := &models.Tweet{
		ID:                e.ids.Next(),
		AuthorID:          authorID,
		Text:              in.Text,
		Lang:              in.Lang,
		ReplySettings:     replySettings,
		PossiblySensitive: in.PossiblySensitive,
		Source:            source,
		Status:            models.TweetStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if len(in.VisibleFor) > 0 {
		tweet.VisibleFor = pq.Int64Array(in.VisibleFor)
	}
	if len(in.ReplyingToIDs) > 0 {
		tweet.ReplyingToIDs = pq.Int64Array(in.ReplyingToIDs)
	}
	return tweet
}

// linkConversation wires reply and retweet pointers for a fresh tweet.
// A reply joins the parent's conversation, pointing at the root rather
// than chaining root pointers. A retweet carries no thread linkage.
func (e *Engine) linkConversation(ctx context.Context, in Input, tweet *models.Tweet) error {
	if in.RetweetFromTweetID != 0 {
		source, err := e.store.Get(ctx, in.RetweetFromTweetID)
		if err != nil {
			if IsCode(err, ErrCodeNotFound) {
				return NewValidationError(map[string]string{
					"retweet_from_tweet_id": "The selected retweet from tweet id is invalid.",
				})
			}
			return err
		}
		tweet.RetweetFromTweetID = &source.ID
		return nil
	}

	if in.InReplyToTweetID != 0 {
		parent, err := e.store.Get(ctx, in.InReplyToTweetID)
		if err != nil {
			if IsCode(err, ErrCodeNotFound) {
				return NewValidationError(map[string]string{
					"in_reply_to_tweet_id": "The selected in reply to tweet id is invalid.",
				})
			}
			return err
		}

		tweet.InReplyToTweetID = &parent.ID
		root := parent.ID
		if parent.ConversationID != nil {
			root = *parent.ConversationID
		}
		tweet.ConversationID = &root
	}

	return nil
}

// validate runs field checks plus reference resolution for audience and
// mention lists. All failures surface together as one VALIDATION error.
func (e *Engine) validate(ctx context.Context, in Input) error {
	details := validateInput(in)

	if len(in.VisibleFor) > 0 {
		missing, err := e.users.Missing(ctx, in.VisibleFor)
		if err != nil {
			return fmt.Errorf("failed to resolve visibility audience: %w", err)
		}
		for k, v := range invalidUserDetails("visible_for", in.VisibleFor, missing) {
			details[k] = v
		}
	}

	if len(in.ReplyingToIDs) > 0 {
		missing, err := e.users.Missing(ctx, in.ReplyingToIDs)
		if err != nil {
			return fmt.Errorf("failed to resolve reply targets: %w", err)
		}
		for k, v := range invalidUserDetails("replying_to", in.ReplyingToIDs, missing) {
			details[k] = v
		}
	}

	if len(details) > 0 {
		e.log.WithFields(logrus.Fields{
			"fields": len(details),
		}).Debug("Tweet input rejected")
		return NewValidationError(details)
	}
	return nil
}

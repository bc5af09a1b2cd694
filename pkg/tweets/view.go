package tweets

import (
	"context"
	"strconv"
	"time"

	"github.com/warblr-app/warblr/pkg/db/models"
	"github.com/warblr-app/warblr/pkg/users"
)

// View is the serialized form of a tweet, including the derived fields
// the stored entity never carries. Ids are strings on the wire so 64-bit
// values survive JavaScript clients.
type View struct {
	ID                  string              `json:"id"`
	AuthorID            string              `json:"author_id"`
	Text                string              `json:"text"`
	Lang                string              `json:"lang"`
	ReplySettings       models.ReplySetting `json:"reply_settings"`
	PossiblySensitive   bool                `json:"possibly_sensitive"`
	Source              string              `json:"source"`
	VisibleFor          []string            `json:"visible_for,omitempty"`
	ConversationID      string              `json:"conversation_id,omitempty"`
	InReplyToTweetID    string              `json:"in_reply_to_tweet_id,omitempty"`
	RetweetFromTweetID  string              `json:"retweet_from_tweet_id,omitempty"`
	EditHistoryTweetIDs []string            `json:"edit_history_tweet_ids"`
	EditControls        *EditControlsView   `json:"edit_controls,omitempty"`
	IsEditable          bool                `json:"is_editable"`
	Retweeted           bool                `json:"retweeted"`
	ReplyingTo          []users.Summary     `json:"replying_to"`
	CreatedAt           time.Time           `json:"created_at"`
}

type EditControlsView struct {
	EditsRemaining int       `json:"edits_remaining"`
	EditableUntil  time.Time `json:"editable_until"`
}

// Presenter builds Views, resolving reply-target summaries on demand.
type Presenter struct {
	users users.Store
	now   func() time.Time
}

func NewPresenter(userStore users.Store) *Presenter {
	return &Presenter{users: userStore, now: time.Now}
}

// Present serializes one tweet with its computed attributes.
func (p *Presenter) Present(ctx context.Context, t *models.Tweet) (*View, error) {
	replyingTo, err := ResolveReplyTargets(ctx, p.users, t)
	if err != nil {
		return nil, err
	}
	v := p.build(t, replyingTo)
	return &v, nil
}

// PresentList serializes a page of tweets, resolving every reply-target
// list through one batched summary lookup instead of one query per row.
func (p *Presenter) PresentList(ctx context.Context, ts []models.Tweet) ([]View, error) {
	idSet := make(map[int64]struct{})
	for i := range ts {
		for _, id := range ts[i].ReplyingToIDs {
			idSet[id] = struct{}{}
		}
	}

	byID := make(map[int64]users.Summary)
	if len(idSet) > 0 {
		ids := make([]int64, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}
		summaries, err := p.users.Summaries(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, s := range summaries {
			byID[s.ID] = s
		}
	}

	views := make([]View, 0, len(ts))
	for i := range ts {
		t := &ts[i]
		replyingTo := make([]users.Summary, 0, len(t.ReplyingToIDs))
		for _, id := range t.ReplyingToIDs {
			if s, ok := byID[id]; ok {
				replyingTo = append(replyingTo, s)
			}
		}
		views = append(views, p.build(t, replyingTo))
	}
	return views, nil
}

func (p *Presenter) build(t *models.Tweet, replyingTo []users.Summary) View {
	v := View{
		ID:                  formatID(t.ID),
		AuthorID:            formatID(t.AuthorID),
		Text:                t.Text,
		Lang:                t.Lang,
		ReplySettings:       t.ReplySettings,
		PossiblySensitive:   t.PossiblySensitive,
		Source:              t.Source,
		VisibleFor:          formatIDs(t.VisibleFor),
		EditHistoryTweetIDs: formatIDs(t.EditHistoryTweetIDs),
		IsEditable:          IsEditable(t, p.now()),
		Retweeted:           t.IsRetweet(),
		ReplyingTo:          replyingTo,
		CreatedAt:           t.CreatedAt,
	}
	if v.EditHistoryTweetIDs == nil {
		v.EditHistoryTweetIDs = []string{}
	}
	if t.ConversationID != nil {
		v.ConversationID = formatID(*t.ConversationID)
	}
	if t.InReplyToTweetID != nil {
		v.InReplyToTweetID = formatID(*t.InReplyToTweetID)
	}
	if t.RetweetFromTweetID != nil {
		v.RetweetFromTweetID = formatID(*t.RetweetFromTweetID)
	}
	if t.EditControls != nil {
		v.EditControls = &EditControlsView{
			EditsRemaining: t.EditControls.EditsRemaining,
			EditableUntil:  t.EditControls.EditableUntil,
		}
	}
	return v
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatIDs(ids []int64) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = formatID(id)
	}
	return out
}

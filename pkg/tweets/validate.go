package tweets

import (
	"fmt"
	"regexp"

	"github.com/warblr-app/warblr/pkg/db/models"
)

// MaxTextLength is the hard cap on tweet body length, in characters.
const MaxTextLength = 140

// langPattern accepts BCP-47-ish tags like "en", "pt-BR", "zh-Hant".
var langPattern = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z0-9]{2,8})?$`)

// Input is the create/edit payload for ProcessTweet. A zero ID means
// create; a non-zero ID edits that tweet by superseding it.
type Input struct {
	ID                 int64               `json:"id,string,omitempty"`
	Text               string              `json:"text"`
	Lang               string              `json:"lang"`
	ReplySettings      models.ReplySetting `json:"reply_settings"`
	PossiblySensitive  bool                `json:"possibly_sensitive"`
	Source             string              `json:"source"`
	VisibleFor         []int64             `json:"visible_for"`
	ReplyingToIDs      []int64             `json:"replying_to"`
	InReplyToTweetID   int64               `json:"in_reply_to_tweet_id,string,omitempty"`
	RetweetFromTweetID int64               `json:"retweet_from_tweet_id,string,omitempty"`
}

// validateInput checks the field-level constraints that need no store
// lookups. It returns a detail map keyed by field, empty when the input
// is clean. Reference resolution (audience, mentions, parent tweets)
// happens in the engine where the collaborators live.
func validateInput(in Input) map[string]string {
	details := make(map[string]string)

	runes := []rune(in.Text)
	if len(runes) == 0 {
		details["text"] = "The text field is required."
	} else if len(runes) > MaxTextLength {
		details["text"] = fmt.Sprintf("The text must not be greater than %d characters.", MaxTextLength)
	}

	if in.Lang != "" && !langPattern.MatchString(in.Lang) {
		details["lang"] = "The lang must be a valid language tag."
	}

	if in.ReplySettings != "" && !in.ReplySettings.Valid() {
		details["reply_settings"] = "The selected reply settings is invalid."
	}

	if in.RetweetFromTweetID != 0 && in.InReplyToTweetID != 0 {
		details["retweet_from_tweet_id"] = "A retweet cannot also be a reply."
	}

	return details
}

// invalidUserDetails formats unresolvable user references the way the
// API reports them: one entry per offending array position.
func invalidUserDetails(field string, ids []int64, missing []int64) map[string]string {
	gone := make(map[int64]bool, len(missing))
	for _, id := range missing {
		gone[id] = true
	}

	details := make(map[string]string)
	for i, id := range ids {
		if gone[id] {
			details[fmt.Sprintf("%s.%d", field, i)] = fmt.Sprintf("The selected %s.%d is invalid.", field, i)
		}
	}
	return details
}

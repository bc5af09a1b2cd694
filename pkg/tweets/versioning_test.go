package tweets

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/warblr-app/warblr/pkg/db/models"
)

var _ = Describe("Engine", func() {
	var (
		ctx      context.Context
		store    *memoryStore
		accounts *memoryUsers
		notifier *recordingNotifier
		clock    *testClock
		engine   *Engine

		author int64 = 100
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newMemoryStore()
		accounts = newMemoryUsers(100, 200, 300)
		notifier = &recordingNotifier{}
		clock = newTestClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
		engine = newTestEngine(store, accounts, notifier, clock)
	})

	Context("creating a tweet", func() {
		It("persists an active tweet with a fresh edit budget", func() {
			tweet, err := engine.ProcessTweet(ctx, Input{Text: "hello world", Lang: "en"}, author)
			Expect(err).NotTo(HaveOccurred())

			Expect(tweet.ID).NotTo(BeZero())
			Expect(tweet.AuthorID).To(Equal(author))
			Expect(tweet.Status).To(Equal(models.TweetStatusActive))
			Expect(tweet.Source).To(Equal(DefaultSource))
			Expect(tweet.ReplySettings).To(Equal(models.ReplyEveryone))
			Expect(tweet.EditHistoryTweetIDs).To(BeEmpty())
			Expect(tweet.EditControls).NotTo(BeNil())
			Expect(tweet.EditControls.EditsRemaining).To(Equal(5))
			Expect(tweet.EditControls.EditableUntil).To(Equal(clock.Now().Add(30 * time.Minute)))

			stored, err := store.Get(ctx, tweet.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Text).To(Equal("hello world"))
		})

		It("notifies downstream consumers exactly once", func() {
			tweet, err := engine.ProcessTweet(ctx, Input{Text: "ping"}, author)
			Expect(err).NotTo(HaveOccurred())
			Expect(notifier.createdIDs()).To(Equal([]int64{tweet.ID}))
		})

		It("keeps an explicit source and reply setting when given", func() {
			tweet, err := engine.ProcessTweet(ctx, Input{
				Text:          "restricted",
				Source:        "Warblr for iPhone",
				ReplySettings: models.ReplyFollowing,
			}, author)
			Expect(err).NotTo(HaveOccurred())
			Expect(tweet.Source).To(Equal("Warblr for iPhone"))
			Expect(tweet.ReplySettings).To(Equal(models.ReplyFollowing))
		})

		It("rejects an empty body", func() {
			_, err := engine.ProcessTweet(ctx, Input{Text: ""}, author)
			Expect(IsCode(err, ErrCodeValidation)).To(BeTrue())

			var domainErr *Error
			Expect(errors.As(err, &domainErr)).To(BeTrue())
			Expect(domainErr.Details).To(HaveKeyWithValue("text", "The text field is required."))
		})

		It("rejects a body over 140 characters, counting runes", func() {
			_, err := engine.ProcessTweet(ctx, Input{Text: strings.Repeat("ü", 141)}, author)
			Expect(IsCode(err, ErrCodeValidation)).To(BeTrue())

			var domainErr *Error
			Expect(errors.As(err, &domainErr)).To(BeTrue())
			Expect(domainErr.Details).To(HaveKeyWithValue("text", "The text must not be greater than 140 characters."))

			_, err = engine.ProcessTweet(ctx, Input{Text: strings.Repeat("ü", 140)}, author)
			Expect(err).NotTo(HaveOccurred())
		})

		It("collects every field failure in one validation error", func() {
			_, err := engine.ProcessTweet(ctx, Input{
				Text:          "",
				Lang:          "Not A Tag",
				ReplySettings: "nobody",
			}, author)
			Expect(IsCode(err, ErrCodeValidation)).To(BeTrue())

			var domainErr *Error
			Expect(errors.As(err, &domainErr)).To(BeTrue())
			Expect(domainErr.Details).To(HaveKey("text"))
			Expect(domainErr.Details).To(HaveKey("lang"))
			Expect(domainErr.Details).To(HaveKeyWithValue("reply_settings", "The selected reply settings is invalid."))
		})

		It("rejects unknown users in the visibility audience by position", func() {
			_, err := engine.ProcessTweet(ctx, Input{
				Text:       "secret",
				VisibleFor: []int64{200, 999, 300, 888},
			}, author)
			Expect(IsCode(err, ErrCodeValidation)).To(BeTrue())

			var domainErr *Error
			Expect(errors.As(err, &domainErr)).To(BeTrue())
			Expect(domainErr.Details).To(HaveKeyWithValue("visible_for.1", "The selected visible_for.1 is invalid."))
			Expect(domainErr.Details).To(HaveKeyWithValue("visible_for.3", "The selected visible_for.3 is invalid."))
			Expect(domainErr.Details).NotTo(HaveKey("visible_for.0"))
			Expect(domainErr.Details).NotTo(HaveKey("visible_for.2"))
		})

		It("rejects unknown reply targets", func() {
			_, err := engine.ProcessTweet(ctx, Input{
				Text:          "@ghost hi",
				ReplyingToIDs: []int64{999},
			}, author)
			Expect(IsCode(err, ErrCodeValidation)).To(BeTrue())

			var domainErr *Error
			Expect(errors.As(err, &domainErr)).To(BeTrue())
			Expect(domainErr.Details).To(HaveKeyWithValue("replying_to.0", "The selected replying_to.0 is invalid."))
		})
	})

	Context("conversation linkage", func() {
		It("points a first-level reply at its parent as the root", func() {
			root, err := engine.ProcessTweet(ctx, Input{Text: "root"}, author)
			Expect(err).NotTo(HaveOccurred())

			reply, err := engine.ProcessTweet(ctx, Input{
				Text:             "first reply",
				InReplyToTweetID: root.ID,
			}, 200)
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.InReplyToTweetID).To(HaveValue(Equal(root.ID)))
			Expect(reply.ConversationID).To(HaveValue(Equal(root.ID)))
		})

		It("points a nested reply at the thread root, not its parent", func() {
			root, _ := engine.ProcessTweet(ctx, Input{Text: "root"}, author)
			mid, _ := engine.ProcessTweet(ctx, Input{Text: "mid", InReplyToTweetID: root.ID}, 200)

			leaf, err := engine.ProcessTweet(ctx, Input{
				Text:             "leaf",
				InReplyToTweetID: mid.ID,
			}, 300)
			Expect(err).NotTo(HaveOccurred())
			Expect(leaf.InReplyToTweetID).To(HaveValue(Equal(mid.ID)))
			Expect(leaf.ConversationID).To(HaveValue(Equal(root.ID)))
		})

		It("gives a retweet no thread linkage", func() {
			source, _ := engine.ProcessTweet(ctx, Input{Text: "original"}, author)

			retweet, err := engine.ProcessTweet(ctx, Input{
				Text:               "look at this",
				RetweetFromTweetID: source.ID,
			}, 200)
			Expect(err).NotTo(HaveOccurred())
			Expect(retweet.RetweetFromTweetID).To(HaveValue(Equal(source.ID)))
			Expect(retweet.ConversationID).To(BeNil())
			Expect(retweet.InReplyToTweetID).To(BeNil())
			Expect(retweet.IsRetweet()).To(BeTrue())
			Expect(retweet.IsReply()).To(BeFalse())
		})

		It("refuses a tweet that is both a retweet and a reply", func() {
			source, _ := engine.ProcessTweet(ctx, Input{Text: "original"}, author)

			_, err := engine.ProcessTweet(ctx, Input{
				Text:               "both",
				RetweetFromTweetID: source.ID,
				InReplyToTweetID:   source.ID,
			}, 200)
			Expect(IsCode(err, ErrCodeValidation)).To(BeTrue())

			var domainErr *Error
			Expect(errors.As(err, &domainErr)).To(BeTrue())
			Expect(domainErr.Details).To(HaveKeyWithValue("retweet_from_tweet_id", "A retweet cannot also be a reply."))
		})

		It("rejects replying to a tweet that does not exist", func() {
			_, err := engine.ProcessTweet(ctx, Input{
				Text:             "into the void",
				InReplyToTweetID: 424242,
			}, author)
			Expect(IsCode(err, ErrCodeValidation)).To(BeTrue())

			var domainErr *Error
			Expect(errors.As(err, &domainErr)).To(BeTrue())
			Expect(domainErr.Details).To(HaveKey("in_reply_to_tweet_id"))
		})

		It("rejects retweeting a tweet that does not exist", func() {
			_, err := engine.ProcessTweet(ctx, Input{
				Text:               "amplifying nothing",
				RetweetFromTweetID: 424242,
			}, author)
			Expect(IsCode(err, ErrCodeValidation)).To(BeTrue())
		})
	})

	Context("editing a tweet", func() {
		var original *models.Tweet

		BeforeEach(func() {
			var err error
			original, err = engine.ProcessTweet(ctx, Input{Text: "first draft"}, author)
			Expect(err).NotTo(HaveOccurred())
		})

		It("supersedes the old version and links the history", func() {
			edited, err := engine.ProcessTweet(ctx, Input{ID: original.ID, Text: "second draft"}, author)
			Expect(err).NotTo(HaveOccurred())

			Expect(edited.ID).NotTo(Equal(original.ID))
			Expect(edited.Text).To(Equal("second draft"))
			Expect([]int64(edited.EditHistoryTweetIDs)).To(Equal([]int64{original.ID}))
			Expect(edited.EditControls.EditsRemaining).To(Equal(4))
			Expect(edited.EditControls.EditableUntil).To(Equal(original.EditControls.EditableUntil))

			_, err = store.Get(ctx, original.ID)
			Expect(IsCode(err, ErrCodeNotFound)).To(BeTrue())

			_, err = store.Get(ctx, edited.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("does not notify on edit", func() {
			before := len(notifier.createdIDs())
			_, err := engine.ProcessTweet(ctx, Input{ID: original.ID, Text: "quiet edit"}, author)
			Expect(err).NotTo(HaveOccurred())
			Expect(notifier.createdIDs()).To(HaveLen(before))
		})

		It("extends the history chain edit after edit", func() {
			current := original
			wantHistory := []int64{}
			for i := 0; i < 3; i++ {
				wantHistory = append(wantHistory, current.ID)
				next, err := engine.ProcessTweet(ctx, Input{ID: current.ID, Text: "draft again"}, author)
				Expect(err).NotTo(HaveOccurred())
				Expect([]int64(next.EditHistoryTweetIDs)).To(Equal(wantHistory))
				current = next
			}
			Expect(current.EditControls.EditsRemaining).To(Equal(2))
		})

		It("exhausts the edit budget after five edits", func() {
			current := original
			for i := 0; i < 5; i++ {
				next, err := engine.ProcessTweet(ctx, Input{ID: current.ID, Text: "draft"}, author)
				Expect(err).NotTo(HaveOccurred())
				current = next
			}
			Expect(current.EditControls.EditsRemaining).To(Equal(0))

			_, err := engine.ProcessTweet(ctx, Input{ID: current.ID, Text: "one too many"}, author)
			Expect(IsCode(err, ErrCodeNotEditable)).To(BeTrue())
		})

		It("closes the window thirty minutes after first posting", func() {
			clock.Advance(29 * time.Minute)
			mid, err := engine.ProcessTweet(ctx, Input{ID: original.ID, Text: "just in time"}, author)
			Expect(err).NotTo(HaveOccurred())

			// The window is anchored to the original post; edits do not
			// extend it.
			clock.Advance(2 * time.Minute)
			_, err = engine.ProcessTweet(ctx, Input{ID: mid.ID, Text: "too late"}, author)
			Expect(IsCode(err, ErrCodeNotEditable)).To(BeTrue())
		})

		It("reports someone else's tweet as not found", func() {
			_, err := engine.ProcessTweet(ctx, Input{ID: original.ID, Text: "hijack"}, 200)
			Expect(IsCode(err, ErrCodeNotFound)).To(BeTrue())
		})

		It("fails with a conflict when a concurrent edit wins the race", func() {
			racing := &racingStore{memoryStore: store, rivalID: 999001}
			racingEngine := newTestEngine(racing, accounts, notifier, clock)

			_, err := racingEngine.ProcessTweet(ctx, Input{ID: original.ID, Text: "my edit"}, author)
			Expect(IsCode(err, ErrCodeConflict)).To(BeTrue())

			// The rival's version is the live one; the loser changed
			// nothing.
			current, err := store.Get(ctx, racing.rivalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(current.Text).To(Equal("the rival edit"))
		})

		It("reports a superseded id as not found", func() {
			_, err := engine.ProcessTweet(ctx, Input{ID: original.ID, Text: "v2"}, author)
			Expect(err).NotTo(HaveOccurred())

			_, err = engine.ProcessTweet(ctx, Input{ID: original.ID, Text: "stale edit"}, author)
			Expect(IsCode(err, ErrCodeNotFound)).To(BeTrue())
		})

		It("validates the replacement text like a fresh tweet", func() {
			_, err := engine.ProcessTweet(ctx, Input{ID: original.ID, Text: strings.Repeat("x", 141)}, author)
			Expect(IsCode(err, ErrCodeValidation)).To(BeTrue())

			// The failed edit consumed nothing.
			current, err := store.Get(ctx, original.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(current.EditControls.EditsRemaining).To(Equal(5))
		})

		It("keeps reply linkage across edits", func() {
			reply, err := engine.ProcessTweet(ctx, Input{
				Text:             "reply draft",
				InReplyToTweetID: original.ID,
			}, 200)
			Expect(err).NotTo(HaveOccurred())

			edited, err := engine.ProcessTweet(ctx, Input{ID: reply.ID, Text: "reply final"}, 200)
			Expect(err).NotTo(HaveOccurred())
			Expect(edited.InReplyToTweetID).To(HaveValue(Equal(original.ID)))
			Expect(edited.ConversationID).To(HaveValue(Equal(original.ID)))

			replies, err := store.RepliesFor(ctx, original.ID, Page{})
			Expect(err).NotTo(HaveOccurred())
			Expect(replies).To(HaveLen(1))
			Expect(replies[0].ID).To(Equal(edited.ID))
		})

		It("reconstructs the full history, oldest first", func() {
			second, err := engine.ProcessTweet(ctx, Input{ID: original.ID, Text: "second"}, author)
			Expect(err).NotTo(HaveOccurred())
			third, err := engine.ProcessTweet(ctx, Input{ID: second.ID, Text: "third"}, author)
			Expect(err).NotTo(HaveOccurred())

			history, err := ResolveEditHistory(ctx, store, third)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(2))
			Expect(history[0].ID).To(Equal(original.ID))
			Expect(history[0].Text).To(Equal("first draft"))
			Expect(history[1].ID).To(Equal(second.ID))
			Expect(history[1].Status).To(Equal(models.TweetStatusSuperseded))
		})
	})
})

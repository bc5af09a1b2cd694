package tweets

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/warblr-app/warblr/pkg/db/models"
)

var _ = Describe("IsEditable", func() {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tweet := func(remaining int, until time.Time) *models.Tweet {
		return &models.Tweet{
			EditControls: &models.EditControls{
				EditsRemaining: remaining,
				EditableUntil:  until,
			},
		}
	}

	It("is true with budget left inside the window", func() {
		Expect(IsEditable(tweet(1, now.Add(time.Minute)), now)).To(BeTrue())
	})

	It("is false once the budget hits zero", func() {
		Expect(IsEditable(tweet(0, now.Add(time.Hour)), now)).To(BeFalse())
	})

	It("is false at and after the window boundary", func() {
		Expect(IsEditable(tweet(5, now), now)).To(BeFalse())
		Expect(IsEditable(tweet(5, now.Add(-time.Second)), now)).To(BeFalse())
	})

	It("is false without edit controls", func() {
		Expect(IsEditable(&models.Tweet{}, now)).To(BeFalse())
	})
})

var _ = Describe("ResolveReplyTargets", func() {
	It("resolves mentioned users to summaries", func() {
		accounts := newMemoryUsers(200, 300)
		t := &models.Tweet{ReplyingToIDs: []int64{300, 200}}

		targets, err := ResolveReplyTargets(context.Background(), accounts, t)
		Expect(err).NotTo(HaveOccurred())
		Expect(targets).To(HaveLen(2))
		Expect(targets[0].Username).To(Equal("user200"))
		Expect(targets[1].Username).To(Equal("user300"))
	})

	It("returns empty without a lookup when nobody is mentioned", func() {
		targets, err := ResolveReplyTargets(context.Background(), newMemoryUsers(), &models.Tweet{})
		Expect(err).NotTo(HaveOccurred())
		Expect(targets).To(BeEmpty())
	})
})

var _ = Describe("ResolveEditHistory", func() {
	It("returns empty for an unedited tweet without touching the store", func() {
		history, err := ResolveEditHistory(context.Background(), nil, &models.Tweet{})
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(BeEmpty())
	})

	It("never surfaces a live tweet from a corrupt history list", func() {
		ctx := context.Background()
		store := newMemoryStore()

		first := &models.Tweet{ID: 1, AuthorID: 100, Text: "v1", Status: models.TweetStatusActive}
		Expect(store.Create(ctx, first)).To(Succeed())
		second := &models.Tweet{ID: 2, AuthorID: 100, Text: "v2", Status: models.TweetStatusActive}
		Expect(store.CreateRevision(ctx, first.ID, second)).To(Succeed())

		bystander := &models.Tweet{ID: 5, AuthorID: 200, Text: "unrelated", Status: models.TweetStatusActive}
		Expect(store.Create(ctx, bystander)).To(Succeed())

		// History wrongly lists a live tweet alongside the real
		// predecessor.
		second.EditHistoryTweetIDs = []int64{first.ID, bystander.ID}

		history, err := ResolveEditHistory(ctx, store, second)
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(HaveLen(1))
		Expect(history[0].ID).To(Equal(first.ID))
	})
})

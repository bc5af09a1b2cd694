package tweets

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lib/pq"
	"github.com/warblr-app/warblr/pkg/db/models"
)

var _ = Describe("Presenter", func() {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	newPresenter := func() *Presenter {
		p := NewPresenter(newMemoryUsers(200, 300))
		p.now = func() time.Time { return now }
		return p
	}

	It("serializes ids as strings and computes editability", func() {
		root := int64(9007199254740993) // loses precision as a JSON number
		t := &models.Tweet{
			ID:             root + 1,
			AuthorID:       100,
			Text:           "hi",
			Status:         models.TweetStatusActive,
			ConversationID: &root,
			ReplyingToIDs:  pq.Int64Array{300},
			EditControls: &models.EditControls{
				EditsRemaining: 2,
				EditableUntil:  now.Add(time.Minute),
			},
		}

		v, err := newPresenter().Present(context.Background(), t)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.ID).To(Equal("9007199254740994"))
		Expect(v.ConversationID).To(Equal("9007199254740993"))
		Expect(v.IsEditable).To(BeTrue())
		Expect(v.ReplyingTo).To(HaveLen(1))
		Expect(v.ReplyingTo[0].Username).To(Equal("user300"))
		Expect(v.EditHistoryTweetIDs).NotTo(BeNil())
		Expect(v.EditHistoryTweetIDs).To(BeEmpty())
	})

	It("marks expired tweets read-only", func() {
		t := &models.Tweet{
			ID:       1,
			AuthorID: 100,
			EditControls: &models.EditControls{
				EditsRemaining: 5,
				EditableUntil:  now.Add(-time.Minute),
			},
		}

		v, err := newPresenter().Present(context.Background(), t)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.IsEditable).To(BeFalse())
	})

	It("resolves reply targets for a whole page with one lookup", func() {
		ts := []models.Tweet{
			{ID: 1, ReplyingToIDs: pq.Int64Array{200}},
			{ID: 2, ReplyingToIDs: pq.Int64Array{200, 300}},
			{ID: 3},
		}

		views, err := newPresenter().PresentList(context.Background(), ts)
		Expect(err).NotTo(HaveOccurred())
		Expect(views).To(HaveLen(3))
		Expect(views[0].ReplyingTo).To(HaveLen(1))
		Expect(views[1].ReplyingTo).To(HaveLen(2))
		Expect(views[2].ReplyingTo).To(BeEmpty())
	})
})

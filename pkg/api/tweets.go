// Package api exposes the tweet domain over HTTP. Handlers stay thin:
// parse, delegate to the domain services, serialize.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/warblr-app/warblr/pkg/likes"
	"github.com/warblr-app/warblr/pkg/metrics"
	"github.com/warblr-app/warblr/pkg/tweets"
)

// TweetHandler serves the /tweets routes.
type TweetHandler struct {
	engine    *tweets.Engine
	resolver  *tweets.Resolver
	presenter *tweets.Presenter
	store     tweets.Store
	likes     *likes.Service
	metrics   metrics.Aggregator
	log       *logrus.Logger
}

func NewTweetHandler(
	engine *tweets.Engine,
	resolver *tweets.Resolver,
	presenter *tweets.Presenter,
	store tweets.Store,
	likeService *likes.Service,
	agg metrics.Aggregator,
	log *logrus.Logger,
) *TweetHandler {
	return &TweetHandler{
		engine:    engine,
		resolver:  resolver,
		presenter: presenter,
		store:     store,
		likes:     likeService,
		metrics:   agg,
		log:       log,
	}
}

// POST /tweets/process
// Creates when the payload has no id, edits (supersede + new version)
// when it does.
func (h *TweetHandler) ProcessTweet(c *gin.Context) {
	var in tweets.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}

	tweet, err := h.engine.ProcessTweet(c.Request.Context(), in, authedUserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	view, err := h.presenter.Present(c.Request.Context(), tweet)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

// POST /tweets
func (h *TweetHandler) Create(c *gin.Context) {
	var in tweets.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	in.ID = 0

	tweet, err := h.engine.ProcessTweet(c.Request.Context(), in, authedUserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	view, err := h.presenter.Present(c.Request.Context(), tweet)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

// PUT /tweets
func (h *TweetHandler) Update(c *gin.Context) {
	var in tweets.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if in.ID == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "tweet input failed validation",
			"code":    tweets.ErrCodeValidation,
			"details": gin.H{"id": "The id field is required."},
		})
		return
	}

	tweet, err := h.engine.ProcessTweet(c.Request.Context(), in, authedUserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	view, err := h.presenter.Present(c.Request.Context(), tweet)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

// GET /tweets/:id
func (h *TweetHandler) Get(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}

	tweet, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	view, err := h.presenter.Present(c.Request.Context(), tweet)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

// GET /tweets/:id/replies
func (h *TweetHandler) RepliesForTweet(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}

	page := pageFromQuery(c)
	replies, err := h.resolver.RepliesForTweet(c.Request.Context(), id, page)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	views, err := h.presenter.PresentList(c.Request.Context(), replies)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": views, "page": page.Number})
}

// likeUserView is the projection returned for users in like listings.
type likeUserView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Username   string     `json:"username"`
	VerifiedAt *time.Time `json:"verified_at"`
}

// GET /tweets/:id/likes
func (h *TweetHandler) LikesForTweet(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}

	page := pageFromQuery(c)
	liked, err := h.resolver.LikesForTweet(c.Request.Context(), id, page)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	views := make([]likeUserView, 0, len(liked))
	for _, u := range liked {
		views = append(views, likeUserView{
			ID:         strconv.FormatInt(u.ID, 10),
			Name:       u.Name,
			Username:   u.Username,
			VerifiedAt: u.VerifiedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": views, "page": page.Number})
}

// PUT /tweets/:id/like
func (h *TweetHandler) ToggleLike(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}

	// The toggle targets a live tweet; liking a superseded version 404s.
	if _, err := h.store.Get(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}

	liked, err := h.likes.Toggle(c.Request.Context(), id, authedUserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// DELETE /tweets/:id/like
func (h *TweetHandler) RemoveLike(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}

	if err := h.likes.Remove(c.Request.Context(), id, authedUserID(c)); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// metricsView serializes a metrics snapshot with a string tweet id.
type metricsView struct {
	TweetID           string `json:"tweet_id"`
	ImpressionCount   int64  `json:"impression_count"`
	ReplyCount        int64  `json:"reply_count"`
	LikeCount         int64  `json:"like_count"`
	RetweetCount      int64  `json:"retweet_count"`
	QuoteCount        int64  `json:"quote_count"`
	VideoViewsCount   int64  `json:"video_views_count"`
	URLLinkClicks     int64  `json:"url_link_clicks"`
	UserProfileClicks int64  `json:"user_profile_clicks"`
}

// GET /tweets/:id/metrics
func (h *TweetHandler) Metrics(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}

	snapshot, err := h.metrics.Snapshot(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": metricsView{
		TweetID:           strconv.FormatInt(snapshot.TweetID, 10),
		ImpressionCount:   snapshot.ImpressionCount,
		ReplyCount:        snapshot.ReplyCount,
		LikeCount:         snapshot.LikeCount,
		RetweetCount:      snapshot.RetweetCount,
		QuoteCount:        snapshot.QuoteCount,
		VideoViewsCount:   snapshot.VideoViewsCount,
		URLLinkClicks:     snapshot.URLLinkClicks,
		UserProfileClicks: snapshot.UserProfileClicks,
	}})
}

// tweetID parses the :id path parameter, answering 400 itself on junk.
func tweetID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tweet id"})
		return 0, false
	}
	return id, true
}

func pageFromQuery(c *gin.Context) tweets.Page {
	page := tweets.Page{Number: 1, Size: 20}
	if n, err := strconv.Atoi(c.Query("page")); err == nil {
		page.Number = n
	}
	if size, err := strconv.Atoi(c.Query("per_page")); err == nil {
		page.Size = size
	}
	return page
}

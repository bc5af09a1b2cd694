package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/warblr-app/warblr/pkg/tweets"
)

// UserHandler serves the authenticated user's tweet listings.
type UserHandler struct {
	resolver  *tweets.Resolver
	presenter *tweets.Presenter
	log       *logrus.Logger
}

func NewUserHandler(resolver *tweets.Resolver, presenter *tweets.Presenter, log *logrus.Logger) *UserHandler {
	return &UserHandler{resolver: resolver, presenter: presenter, log: log}
}

// GET /users/tweets
func (h *UserHandler) Tweets(c *gin.Context) {
	page := pageFromQuery(c)
	ts, err := h.resolver.TweetsForUser(c.Request.Context(), authedUserID(c), page)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	views, err := h.presenter.PresentList(c.Request.Context(), ts)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": views, "page": page.Number})
}

// GET /users/likes
func (h *UserHandler) LikedTweets(c *gin.Context) {
	page := pageFromQuery(c)
	ts, err := h.resolver.LikedTweetsForUser(c.Request.Context(), authedUserID(c), page)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	views, err := h.presenter.PresentList(c.Request.Context(), ts)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": views, "page": page.Number})
}

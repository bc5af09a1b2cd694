package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RouterConfig carries everything the route table needs.
type RouterConfig struct {
	Tweets     *TweetHandler
	Users      *UserHandler
	JWTSecret  string
	WriteLimit int           // write operations allowed per user per window
	Window     time.Duration // rate limit window
	Logger     *logrus.Logger
}

// NewRouter builds the gin engine with the full /api route table.
func NewRouter(config RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(config.Logger))

	writes := NewRateLimit(config.WriteLimit, config.Window)

	apiGroup := router.Group("/api", JWTAuth(config.JWTSecret, config.Logger))

	tweetsGroup := apiGroup.Group("/tweets")
	{
		tweetsGroup.GET("/:id", config.Tweets.Get)
		tweetsGroup.GET("/:id/likes", config.Tweets.LikesForTweet)
		tweetsGroup.GET("/:id/replies", config.Tweets.RepliesForTweet)
		tweetsGroup.GET("/:id/metrics", config.Tweets.Metrics)

		limited := tweetsGroup.Group("", writes.Middleware())
		limited.POST("/process", config.Tweets.ProcessTweet)
		limited.POST("", config.Tweets.Create)
		limited.PUT("", config.Tweets.Update)
		limited.PUT("/:id/like", config.Tweets.ToggleLike)
		limited.DELETE("/:id/like", config.Tweets.RemoveLike)
	}

	usersGroup := apiGroup.Group("/users")
	{
		usersGroup.GET("/tweets", config.Users.Tweets)
		usersGroup.GET("/likes", config.Users.LikedTweets)
	}

	return router
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warblr-app/warblr/internal/appconfig"
	"github.com/warblr-app/warblr/pkg/api"
	"github.com/warblr-app/warblr/pkg/db"
	"github.com/warblr-app/warblr/pkg/likes"
	"github.com/warblr-app/warblr/pkg/logging"
	"github.com/warblr-app/warblr/pkg/metrics"
	"github.com/warblr-app/warblr/pkg/notify"
	"github.com/warblr-app/warblr/pkg/snowflake"
	"github.com/warblr-app/warblr/pkg/tweets"
	"github.com/warblr-app/warblr/pkg/users"
)

func main() {
	// Initialize logger
	log := logrus.New()
	log.SetFormatter(logging.NewColoredJSONFormatter())

	// Get log level from environment
	logLevel := os.Getenv("LOG_LEVEL")
	if level, err := logrus.ParseLevel(logLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		if logLevel != "" {
			log.WithFields(logrus.Fields{
				"attempted_level": logLevel,
				"default_level":   "INFO",
			}).Warn("Invalid log level specified, defaulting to INFO")
		}
	}

	config, err := appconfig.New(log)
	if err != nil {
		log.WithError(err).Fatal("Failed to load app config")
	}

	gormDB, err := db.SetupDatabase(log)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up database")
	}

	ids, err := snowflake.New(config.SnowflakeNode)
	if err != nil {
		log.WithError(err).Fatal("Failed to create ID generator")
	}

	tweetStore := tweets.NewGormStore(gormDB, log)
	userStore := users.NewGormStore(gormDB, log)
	likeStore := likes.NewGormStore(gormDB, log)
	aggregator := metrics.NewGormAggregator(gormDB, log)

	engine, err := tweets.NewEngine(tweets.EngineConfig{
		Store:    tweetStore,
		Users:    userStore,
		IDs:      ids,
		Notifier: notify.NewLogNotifier(log),
		Policy: tweets.EditPolicy{
			MaxEdits: config.MaxEdits,
			Window:   config.EditWindow,
		},
		Logger: log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create tweet engine")
	}

	resolver := tweets.NewResolver(tweetStore, likeStore, log)
	presenter := tweets.NewPresenter(userStore)
	likeService := likes.NewService(likeStore, aggregator, log)

	tweetHandler := api.NewTweetHandler(engine, resolver, presenter, tweetStore, likeService, aggregator, log)
	userHandler := api.NewUserHandler(resolver, presenter, log)

	router := api.NewRouter(api.RouterConfig{
		Tweets:     tweetHandler,
		Users:      userHandler,
		JWTSecret:  config.JWTSecret,
		WriteLimit: config.WriteLimit,
		Window:     config.WriteWindow,
		Logger:     log,
	})

	server := &http.Server{
		Addr:    ":" + config.Port,
		Handler: router,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithFields(logrus.Fields{
			"addr": server.Addr,
		}).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	sig := <-sigChan
	log.WithFields(logrus.Fields{
		"signal": sig.String(),
	}).Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	log.Info("Server stopped")
}

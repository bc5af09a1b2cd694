package appconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// HTTP
	Port      string
	JWTSecret string

	// Write rate limiting
	WriteLimit  int
	WriteWindow time.Duration

	// Edit policy
	MaxEdits   int
	EditWindow time.Duration

	// ID generation
	SnowflakeNode int64

	// General Config
	Logger *logrus.Logger
}

func New(log *logrus.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	writeLimit, _ := strconv.Atoi(getEnvOrDefault("WRITE_RATE_LIMIT", "60"))
	writeWindow, _ := strconv.Atoi(getEnvOrDefault("WRITE_RATE_WINDOW_MINUTES", "15"))
	maxEdits, _ := strconv.Atoi(getEnvOrDefault("TWEET_MAX_EDITS", "5"))
	editWindow, _ := strconv.Atoi(getEnvOrDefault("TWEET_EDIT_WINDOW_MINUTES", "30"))
	nodeID, _ := strconv.ParseInt(getEnvOrDefault("SNOWFLAKE_NODE_ID", "0"), 10, 64)

	config := &Config{
		Port:          getEnvOrDefault("PORT", "8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		WriteLimit:    writeLimit,
		WriteWindow:   time.Duration(writeWindow) * time.Minute,
		MaxEdits:      maxEdits,
		EditWindow:    time.Duration(editWindow) * time.Minute,
		SnowflakeNode: nodeID,
		Logger:        log,
	}

	config.Logger.WithFields(logrus.Fields{
		"port":              config.Port,
		"jwt_secret_exists": config.JWTSecret != "",
		"write_limit":       config.WriteLimit,
		"write_window":      config.WriteWindow,
		"max_edits":         config.MaxEdits,
		"edit_window":       config.EditWindow,
		"snowflake_node":    config.SnowflakeNode,
	}).Debug("App config initialized")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be provided")
	}
	if c.WriteLimit < 1 {
		return fmt.Errorf("write rate limit must be positive")
	}
	if c.WriteWindow < time.Second {
		return fmt.Errorf("write rate window must be at least one second")
	}
	if c.MaxEdits < 0 {
		return fmt.Errorf("max edits cannot be negative")
	}
	if c.EditWindow < time.Minute {
		return fmt.Errorf("edit window must be at least one minute")
	}
	if c.SnowflakeNode < 0 || c.SnowflakeNode > 1023 {
		return fmt.Errorf("snowflake node id must be between 0 and 1023")
	}
	return nil
}

// Helper function to get environment variable with default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

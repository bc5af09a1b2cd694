// Package users exposes the minimal account surface the tweet domain
// needs: batch summaries for reply-target resolution and existence checks
// for visibility validation.
package users

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/warblr-app/warblr/pkg/db/models"
)

// Summary is the projection returned for mentioned or audience users.
type Summary struct {
	ID         int64      `json:"id,string"`
	Username   string     `json:"username"`
	VerifiedAt *time.Time `json:"verified_at"`
}

// Store looks up users for the tweet domain.
type Store interface {
	// Summaries batch-fetches minimal projections for the given ids.
	// Unknown ids are silently absent from the result.
	Summaries(ctx context.Context, ids []int64) ([]Summary, error)
	// Missing returns the subset of ids that do not resolve to a user.
	Missing(ctx context.Context, ids []int64) ([]int64, error)
}

// GormStore implements Store against the users table.
type GormStore struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewGormStore(db *gorm.DB, log *logrus.Logger) *GormStore {
	return &GormStore{db: db, log: log}
}

func (s *GormStore) Summaries(ctx context.Context, ids []int64) ([]Summary, error) {
	if len(ids) == 0 {
		return []Summary{}, nil
	}

	var summaries []Summary
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "username", "verified_at").
		Where("id IN ?", ids).
		Order("id").
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user summaries: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"requested": len(ids),
		"found":     len(summaries),
	}).Debug("Resolved user summaries")

	return summaries, nil
}

func (s *GormStore) Missing(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check user ids: %w", err)
	}

	exists := make(map[int64]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}

	var missing []int64
	for _, id := range ids {
		if !exists[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

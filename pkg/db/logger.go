package db

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogrusLogger routes GORM's query log through logrus so database
// traffic lands in the same structured stream as everything else.
type gormLogrusLogger struct {
	logger        *logrus.Logger
	slowThreshold time.Duration
}

// NewGormLogrusLogger adapts a logrus logger to GORM's logger.Interface.
func NewGormLogrusLogger(baseLogger *logrus.Logger) logger.Interface {
	return &gormLogrusLogger{
		logger:        baseLogger,
		slowThreshold: 200 * time.Millisecond,
	}
}

// LogMode implements logger.Interface. Level filtering is logrus's job,
// so the GORM-side level is ignored.
func (l *gormLogrusLogger) LogMode(logger.LogLevel) logger.Interface {
	return l
}

func (l *gormLogrusLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.logger.WithContext(ctx).WithField("source", "gorm").Debugf(msg, args...)
}

func (l *gormLogrusLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.logger.WithContext(ctx).WithField("source", "gorm").Warnf(msg, args...)
}

func (l *gormLogrusLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.logger.WithContext(ctx).WithField("source", "gorm").Errorf(msg, args...)
}

// Trace implements logger.Interface
func (l *gormLogrusLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := logrus.Fields{
		"source":   "gorm",
		"rows":     rows,
		"sql":      sql,
		"duration": elapsed.String(),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		// Not-found is an expected domain outcome, not a query failure.
		l.logger.WithContext(ctx).WithFields(fields).WithError(err).Error("database query failed")
	case elapsed > l.slowThreshold:
		l.logger.WithContext(ctx).WithFields(fields).Warn("slow query detected")
	default:
		l.logger.WithContext(ctx).WithFields(fields).Debug("database query executed")
	}
}

package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SlowQueryThreshold is the duration above which queries are logged as slow.
const SlowQueryThreshold = 200 * time.Millisecond

// GormLogger routes gorm's logging through slog. SQL is logged at debug
// level, slow queries at warn and failures at error.
type GormLogger struct {
	log   *slog.Logger
	level logger.LogLevel
}

// NewGormLogger returns a GormLogger writing to l at level.
func NewGormLogger(l *slog.Logger, level logger.LogLevel) *GormLogger {
	return &GormLogger{log: l, level: level}
}

func (g *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	g.printf(ctx, logger.Info, slog.LevelInfo, msg, args)
}

func (g *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	g.printf(ctx, logger.Warn, slog.LevelWarn, msg, args)
}

func (g *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	g.printf(ctx, logger.Error, slog.LevelError, msg, args)
}

func (g *GormLogger) printf(ctx context.Context, min logger.LogLevel, level slog.Level, msg string, args []interface{}) {
	if g.level >= min {
		g.log.Log(ctx, level, fmt.Sprintf(msg, args...))
	}
}

// Trace reports one executed statement. A missing record is an expected
// outcome and is never logged as an error.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var (
		level slog.Level
		msg   string
	)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= logger.Error:
		level, msg = slog.LevelError, "query failed"
	case elapsed > SlowQueryThreshold && g.level >= logger.Warn:
		level, msg = slog.LevelWarn, "slow query"
	case g.level >= logger.Info:
		level, msg = slog.LevelDebug, "query"
	default:
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if level == slog.LevelError {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	g.log.LogAttrs(ctx, level, msg, attrs...)
}

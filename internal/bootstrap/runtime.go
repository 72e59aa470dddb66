// Package bootstrap wires process-level dependencies shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ChakCage/Borlas/internal/auth"
	"github.com/ChakCage/Borlas/internal/cache"
	"github.com/ChakCage/Borlas/internal/config"
	"github.com/ChakCage/Borlas/internal/database"
	"github.com/ChakCage/Borlas/internal/models"
	"github.com/ChakCage/Borlas/internal/observability"
	"github.com/ChakCage/Borlas/internal/seed"
	"github.com/ChakCage/Borlas/internal/validation"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty database with demo content.
	SeedDemo bool
}

// InitRuntime connects to the database and Redis and bootstraps the
// development admin. The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb := cache.InitRedis(cfg.RedisURL)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	if err := ensureDevAdmin(ctx, cfg, db, hasher); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	if opts.SeedDemo {
		if err := seedIfEmpty(ctx, db, hasher); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, rdb, nil
}

// ensureDevAdmin creates the configured admin account in development, or
// grants the admin role to an existing account with that username.
func ensureDevAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB, hasher auth.PasswordHasher) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapAdmin {
		return nil
	}

	username := strings.TrimSpace(cfg.DevAdminUsername)
	if username == "" {
		username = "admin"
	}
	email := strings.ToLower(strings.TrimSpace(cfg.DevAdminEmail))
	if email == "" {
		email = "admin@borlas.local"
	}
	if cfg.DevAdminPassword == "" {
		return errors.New("DEV_ADMIN_PASSWORD must be set when DEV_BOOTSTRAP_ADMIN is enabled")
	}
	if err := validation.ValidateSignup(username, email, cfg.DevAdminPassword); err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin models.User
		err := tx.Where("username = ?", username).First(&admin).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hashed, err := hasher.Hash(cfg.DevAdminPassword)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
			admin = models.User{
				Username: username,
				Email:    email,
				Password: hashed,
				Role:     models.RoleAdmin,
			}
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		case !admin.IsAdmin():
			if err := tx.Model(&admin).Update("role", models.RoleAdmin).Error; err != nil {
				return err
			}
		}

		observability.Logger.InfoContext(ctx, "development admin ensured",
			slog.String("username", username),
			slog.Uint64("user_id", uint64(admin.ID)),
		)
		return nil
	})
}

func seedIfEmpty(ctx context.Context, db *gorm.DB, hasher auth.PasswordHasher) error {
	var posts int64
	if err := db.WithContext(ctx).Unscoped().Model(&models.Post{}).Count(&posts).Error; err != nil {
		return err
	}
	if posts > 0 {
		return nil
	}
	_, err := seed.NewSeeder(db, hasher, seed.DefaultOptions()).Run(ctx)
	return err
}

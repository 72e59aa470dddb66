// Command seed fills the database with demo users, posts and comments.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/ChakCage/Borlas/internal/auth"
	"github.com/ChakCage/Borlas/internal/config"
	"github.com/ChakCage/Borlas/internal/database"
	"github.com/ChakCage/Borlas/internal/observability"
	"github.com/ChakCage/Borlas/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.Users, "Number of users to create")
	postsPerUser := flag.Int("posts", defaults.PostsPerUser, "Posts per user")
	commentsPerPost := flag.Int("comments", defaults.CommentsPerPost, "Comments per post")
	deletedRatio := flag.Float64("deleted", defaults.DeletedRatio, "Share of posts and comments seeded as deleted")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible content")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.SetupLogger(cfg.Env, cfg.LogLevel)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, auth.NewBcryptHasher(cfg.BcryptCost), seed.Options{
		Users:           *numUsers,
		PostsPerUser:    *postsPerUser,
		CommentsPerPost: *commentsPerPost,
		DeletedRatio:    *deletedRatio,
		Seed:            *randSeed,
		MaxDays:         defaults.MaxDays,
	})

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts (%d deleted), %d comments (%d deleted)",
		sum.Users, sum.Posts, sum.DeletedPosts, sum.Comments, sum.DeletedComments)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}

// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ChakCage/Borlas/internal/auth"
	"github.com/ChakCage/Borlas/internal/cache"
	"github.com/ChakCage/Borlas/internal/config"
	"github.com/ChakCage/Borlas/internal/events"
	"github.com/ChakCage/Borlas/internal/lifecycle"
	"github.com/ChakCage/Borlas/internal/middleware"
	"github.com/ChakCage/Borlas/internal/notifications"
	"github.com/ChakCage/Borlas/internal/observability"
	"github.com/ChakCage/Borlas/internal/repository"
	"github.com/ChakCage/Borlas/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	now            func() time.Time

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository

	hasher   auth.PasswordHasher
	tokens   *auth.TokenService
	sessions *auth.SessionFlow

	publisher events.Publisher
	kafka     *events.KafkaPublisher

	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService

	loginLimiter  *middleware.RateLimiter
	signupLimiter *middleware.RateLimiter
}

// Option customizes a Server.
type Option func(*Server)

// WithClock replaces the time source shared by tokens and lifecycle
// transitions.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPublisher replaces the lifecycle event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Server) {
		s.publisher = p
	}
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, notifications and rate limiting are then
// disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts ...Option) (*Server, error) {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("borlas-api"),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}, auth.WithClock(s.now))
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}
	s.tokens = tokens
	// One hasher instance serves registration, login and the admin bootstrap.
	s.hasher = auth.NewBcryptHasher(cfg.BcryptCost)

	store := cache.New(redisClient)
	s.userRepo = repository.NewUserRepository(db, store)
	s.postRepo = repository.NewPostRepository(db, store)
	s.commentRepo = repository.NewCommentRepository(db)

	if s.publisher == nil {
		s.publisher = s.buildPublisher()
	}

	machine := lifecycle.NewMachine(auth.NewOwnershipGuard(), s.now)
	s.sessions = auth.NewSessionFlow(s.userRepo, s.hasher, s.tokens)
	s.userService = service.NewUserService(s.userRepo, s.hasher, s.now)
	s.postService = service.NewPostService(s.postRepo, machine, s.publisher, s.now)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, machine, s.publisher, s.now)

	s.loginLimiter = middleware.NewRateLimiter(redisClient, 10, 5*time.Minute, middleware.FailOpen)
	s.signupLimiter = middleware.NewRateLimiter(redisClient, 3, 10*time.Minute, middleware.FailOpen)

	return s, nil
}

func (s *Server) buildPublisher() events.Publisher {
	var publishers events.Multi
	if s.redis != nil {
		publishers = append(publishers, notifications.NewNotifier(s.redis))
	}
	if brokers := s.config.Brokers(); len(brokers) > 0 {
		s.kafka = events.NewKafkaPublisher(brokers, s.config.KafkaTopic)
		publishers = append(publishers, s.kafka)
	}
	if len(publishers) == 0 {
		return events.Nop{}
	}
	return publishers
}

// Sessions exposes the login/refresh/authenticate flow.
func (s *Server) Sessions() *auth.SessionFlow {
	return s.sessions
}

// Hasher exposes the shared password hasher.
func (s *Server) Hasher() auth.PasswordHasher {
	return s.hasher
}

// NewApp builds the Fiber application with middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Borlas API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(ErrorResponse{Error: fe.Message})
			}
			return RespondWithError(c, err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses
	// still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       86400,
	}))

	if s.config.IsProduction() {
		// Global in-memory ceiling per IP; per-route limits use Redis.
		app.Use(limiter.New(limiter.Config{
			Max:        100,
			Expiration: 1 * time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
					Error: "Too many requests, please try again later.",
					Code:  CodeRateLimited,
				})
			},
		}))
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	authRequired := middleware.AuthRequired(s.sessions)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", s.signupLimiter.Handler("signup"), s.Signup)
	authGroup.Post("/login", s.loginLimiter.Handler("login"), s.Login)
	authGroup.Post("/refresh", s.Refresh)

	users := api.Group("/users")
	// Specific routes before generic /:id
	users.Get("/me", authRequired, s.GetMyProfile)
	users.Patch("/me", authRequired, s.UpdateMyProfile)
	users.Get("/", s.GetAllUsers)
	users.Get("/:id", s.GetUserProfile)

	posts := api.Group("/posts")
	posts.Get("/active", s.ListActivePosts)
	posts.Get("/deleted", authRequired, s.ListDeletedPosts)
	posts.Post("/", authRequired, s.CreatePost)
	posts.Get("/:id/comments", s.GetPostComments)
	posts.Post("/:id/comments", authRequired, s.CreateComment)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", authRequired, s.UpdatePost)
	posts.Delete("/:id", authRequired, s.DeletePost)

	comments := api.Group("/comments")
	comments.Get("/active", s.ListActiveComments)
	comments.Get("/deleted", authRequired, s.ListDeletedComments)
	comments.Get("/:id", s.GetComment)
	comments.Put("/:id", authRequired, s.UpdateComment)
	comments.Delete("/:id", authRequired, s.DeleteComment)
}

// Start builds the app and serves on the configured port until shut down.
func (s *Server) Start() error {
	app := s.NewApp()
	observability.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP server and releases resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.kafka != nil {
		if err := s.kafka.Close(); err != nil {
			observability.Logger.Error("error closing kafka writer", slog.String("error", err.Error()))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			observability.Logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			observability.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	return nil
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   s.now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional: without it the API runs uncached.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": s.now(),
	})
}

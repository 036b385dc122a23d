// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/huzidev/dev-forum-api/internal/bootstrap"
	"github.com/huzidev/dev-forum-api/internal/config"
	"github.com/huzidev/dev-forum-api/internal/database"
	_ "github.com/huzidev/dev-forum-api/internal/docs" // swagger docs
	"github.com/huzidev/dev-forum-api/internal/featureflags"
	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/notifications"
	"github.com/huzidev/dev-forum-api/internal/repository"
	"github.com/huzidev/dev-forum-api/internal/service"
	"github.com/huzidev/dev-forum-api/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          storage.ObjectStore
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	verifier       *middleware.TokenVerifier
	repos          *repository.Repositories
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager

	users         *service.UserService
	identity      *service.IdentityService
	friends       *service.FriendService
	notifications *service.NotificationService
	plans         *service.PlanService
	points        *service.PointService
	posts         *service.PostService
	comments      *service.CommentService
	engagement    *service.EngagementService
	images        *service.ImageService
	questions     *service.QuestionService
	bugs          *service.BugService
	moderation    *service.ModerationService
}

// NewServer creates a new server instance with all dependencies. Redis is
// optional; without it realtime delivery stays on this instance.
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{SeedCatalog: true})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Store)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and the
// object store.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.ObjectStore) (*Server, error) {
	verifier, err := middleware.NewTokenVerifier(cfg)
	if err != nil {
		return nil, fmt.Errorf("token verifier: %w", err)
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		store:          store,
		promMiddleware: middleware.InitMetrics("dev-forum-api"),
		verifier:       verifier,
		repos:          repository.New(db),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		hub:            notifications.NewHub(),
		notifier:       notifications.NewNotifier(redisClient),
	}
	if redisClient == nil {
		server.notifier.SetLocalSink(server.hub.Broadcast)
	}

	deps := service.Deps{
		Repos:     server.repos,
		Tx:        repository.NewTransactor(db),
		Publisher: server.notifier,
		Store:     store,
	}
	server.users = service.NewUserService(deps)
	server.identity = service.NewIdentityService(deps, server.users, cfg)
	server.friends = service.NewFriendService(deps)
	server.notifications = service.NewNotificationService(deps)
	server.plans = service.NewPlanService(deps)
	server.points = service.NewPointService(deps)
	server.posts = service.NewPostService(deps)
	server.comments = service.NewCommentService(deps)
	server.engagement = service.NewEngagementService(deps)
	server.images = service.NewImageService(deps)
	server.questions = service.NewQuestionService(deps)
	server.bugs = service.NewBugService(deps)
	server.moderation = service.NewModerationService(deps)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// uploaded media is embedded by the frontends
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://localhost:3001"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, " +
			"Sec-WebSocket-Key, Sec-WebSocket-Version, " + headerWebhookSignature + ", " + headerWebhookOrigin,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	globalMax := s.config.RateLimitGlobalPerMinute
	if globalMax <= 0 {
		globalMax = 100
	}
	app.Use(limiter.New(limiter.Config{
		Max:        globalMax,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	if local, ok := s.store.(*storage.LocalStore); ok {
		app.Static(s.mediaPrefix(), local.Root())
	}

	api := app.Group("/api")
	api.Get("/health", s.HealthCheck)
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := middleware.Authenticate(s.verifier, s.repos.Users)
	admin := middleware.AdminRequired()
	writes := s.writeLimit()

	api.Get("/metrics/dashboard", auth, admin, monitor.New(monitor.Config{
		Title: "Dev Forum API Metrics",
	}))
	api.Get("/feature-flags", auth, s.GetFeatureFlags)

	// Identity provider webhooks carry a signature instead of a token.
	api.Post("/auth/create-user", s.IdentityWebhook)

	users := api.Group("/users")
	users.Post("/create", s.CreateUserIfNotExists)
	users.Get("/", auth, admin, s.ListUsers)
	users.Get("/enrolled", auth, s.ListEnrolledUsers)
	users.Get("/clerk/:userId", auth, s.GetUserByExternalID)
	users.Get("/:id/points", auth, s.GetUserPoints)
	users.Get("/:id/friends", auth, s.GetUserFriends)
	users.Put("/:id/enrollment", auth, admin, s.ToggleEnrollment)
	users.Put("/:id/ban", auth, admin, s.ToggleBan)
	users.Get("/:id", auth, s.GetUserProfile)
	users.Put("/:userId", auth, s.UpdateUser)
	users.Delete("/:userId", auth, s.DeleteUser)

	friends := api.Group("/friends", auth)
	friends.Get("/sent/:userId", s.GetSentRequests)
	friends.Get("/received/:userId", s.GetReceivedRequests)
	friends.Post("/is-friend", s.GetRelationship)
	friends.Post("/sent-request", middleware.RateLimit(s.redis, 10, 5*time.Minute, "friend_request"), s.SendFriendRequest)
	friends.Post("/accept-request", s.AcceptFriendRequest)
	friends.Delete("/cancel-request", s.CancelFriendRequest)
	friends.Delete("/request/:id", s.DeleteFriendRequest)
	friends.Get("/:userId", s.GetFriends)

	notes := api.Group("/notifications", auth)
	notes.Post("/", admin, s.CreateNotification)
	notes.Delete("/", s.DeleteNotifications)
	notes.Put("/:id/mark-as-read", s.MarkNotificationRead)
	notes.Get("/:userId", s.GetNotifications)

	api.Get("/ws/notifications", middleware.WebSocketAuthenticate(s.verifier, s.repos.Users),
		s.requireFlag(featureflags.RealtimeNotifications), s.WebsocketHandler())

	plans := api.Group("/plans")
	plans.Get("/", s.ListPlans)
	plans.Post("/buy", auth, s.BuyPlan)
	plans.Post("/create-plan", auth, admin, s.CreatePlan)
	plans.Get("/:id", s.GetPlan)
	plans.Put("/:id", auth, admin, s.UpdatePlan)
	plans.Delete("/:id", auth, admin, s.DeletePlan)

	points := api.Group("/points", auth)
	points.Post("/update-points", admin, s.AppendPoints)
	points.Get("/:userId", s.GetPointsTotal)

	// Static segments are registered before /:id so they are not captured by it.
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/create-post", auth, writes, s.CreatePost)
	posts.Post("/upload-image", auth, s.uploadLimit(), s.UploadImage)
	posts.Put("/comments/:commentId/status", auth, admin, s.UpdateCommentStatus)
	posts.Put("/comments/:commentId", auth, s.UpdateComment)
	posts.Delete("/comments/:commentId", auth, s.DeleteComment)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", auth, writes, s.CreateComment)
	posts.Get("/:id/likes", s.GetLikes)
	posts.Post("/:id/like", auth, s.LikePost)
	posts.Delete("/:id/like", auth, s.UnlikePost)
	posts.Get("/:id/poll", s.GetPoll)
	posts.Post("/:id/poll/vote", auth, s.VotePoll)
	posts.Post("/:id/image", auth, s.AttachPostImage)
	posts.Patch("/:id/image", auth, s.uploadLimit(), s.ReplacePostImage)
	posts.Put("/:id/status", auth, admin, s.UpdatePostStatus)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", auth, s.UpdatePost)
	posts.Delete("/:id", auth, s.DeletePost)

	questions := api.Group("/questions")
	questions.Get("/", s.GetQuestions)
	questions.Get("/user/:userId", auth, s.GetUserQuestions)
	questions.Post("/ask", auth, writes, s.AskQuestion)
	questions.Get("/threads/:id", s.GetThread)
	questions.Post("/threads/:id/solve", auth, s.MarkThreadSolved)
	questions.Put("/edit-thread/:id", auth, s.EditThread)
	questions.Delete("/delete-thread/:id", auth, s.DeleteThread)
	questions.Post("/:id/post-thread", auth, writes, s.PostThread)
	questions.Put("/:id/status", auth, admin, s.UpdateQuestionStatus)
	questions.Get("/:id", s.GetQuestion)
	questions.Put("/:id", auth, s.EditQuestion)
	questions.Delete("/:id", auth, s.DeleteQuestion)

	bugs := api.Group("/bugs", auth)
	bugs.Post("/report", writes, s.ReportBug)
	bugs.Get("/get-reported-bugs", admin, s.ListBugs)
	bugs.Put("/update-status", admin, s.UpdateBugStatus)
	bugs.Get("/user/:userId", s.GetUserBugs)
	bugs.Get("/:id", s.GetBug)
}

func (s *Server) writeLimit() fiber.Handler {
	limit := s.config.RateLimitWritePerMinute
	if limit <= 0 {
		limit = 30
	}
	return middleware.RateLimit(s.redis, limit, time.Minute, "write")
}

func (s *Server) uploadLimit() fiber.Handler {
	limit := s.config.RateLimitUploadPerMinute
	if limit <= 0 {
		limit = 10
	}
	return middleware.RateLimit(s.redis, limit, time.Minute, "upload")
}

func (s *Server) mediaPrefix() string {
	if s.config.MediaBaseURL != "" && s.config.MediaBaseURL[0] == '/' {
		return s.config.MediaBaseURL
	}
	return "/media"
}

// HealthCheck handles GET /api/health
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis only fans out realtime events, so an instance without it still serves.
	redisStatus := "unavailable"
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
		"version": s.config.ServiceVersion,
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// requireFlag answers 404 when flag is off for the authenticated caller.
func (s *Server) requireFlag(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var userID uint
		if user := middleware.CurrentUser(c); user != nil {
			userID = user.ID
		}
		if !s.featureFlags.Enabled(flag, userID) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Feature", flag))
		}
		return c.Next()
	}
}

// GetFeatureFlags handles GET /api/feature-flags
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	resp := fiber.Map{"flags": s.featureFlags.Snapshot(user.ID)}
	if user.IsAdmin() {
		resp["raw"] = s.featureFlags.Raw()
	}
	return c.JSON(resp)
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Dev Forum API",
		BodyLimit: service.MaxImageUploadBytes + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err, "path", c.Path())
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.redis != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start notification wiring", "error", err)
			}
		}()
	}

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down notification hub", "error", err)
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}

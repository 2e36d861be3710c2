package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "workstation/docs" // swagger docs
	"workstation/internal/aiworker"
	"workstation/internal/bootstrap"
	"workstation/internal/config"
	"workstation/internal/featureflags"
	"workstation/internal/middleware"
	"workstation/internal/models"
	"workstation/internal/notifications"
	"workstation/internal/repository"
	"workstation/internal/service"

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

const defaultAllowedOrigins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	notificationService *service.NotificationService
	messagingService    *service.MessagingService
	membershipService   *service.MembershipService
	projectService      *service.ProjectService
	commentService      *service.CommentService
	thoughtService      *service.ThoughtService
	profileService      *service.ProfileService
	dashboardService    *service.DashboardService
	aiService           *service.AIWorkerService
}

// NewServer connects to the database and Redis and builds the server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{SyncCatalog: true})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; realtime delivery and ws tickets are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	catalog, err := aiworker.Default()
	if err != nil {
		return nil, fmt.Errorf("load AI worker catalog: %w", err)
	}
	middleware.InitMiddleware(cfg)

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	chatRepo := repository.NewChatRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	thoughtRepo := repository.NewThoughtRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("workstation-api"),
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	s.notificationService = service.NewNotificationService(notificationRepo, chatRepo, s.notifier, cfg.NotifyTimeout())
	s.messagingService = service.NewMessagingService(chatRepo, userRepo, s.notificationService, s.notifier)
	s.membershipService = service.NewMembershipService(projectRepo, membershipRepo, userRepo, s.notificationService)
	s.projectService = service.NewProjectService(projectRepo, membershipRepo, commentRepo, s.notificationService)
	s.commentService = service.NewCommentService(commentRepo, projectRepo, userRepo, s.notificationService)
	s.thoughtService = service.NewThoughtService(thoughtRepo, userRepo, s.notificationService)
	s.profileService = service.NewProfileService(userRepo)
	s.dashboardService = service.NewDashboardService(userRepo, projectRepo, thoughtRepo, s.notificationService)
	s.aiService = service.NewAIWorkerService(repository.NewAIWorkerRepository(db), catalog)

	return s, nil
}

// Notifications exposes the fan-out service so background jobs can deliver retries.
func (s *Server) Notifications() *service.NotificationService {
	return s.notificationService
}

// DB returns the primary database handle.
func (s *Server) DB() *gorm.DB {
	return s.db
}

// SetRetryEnqueuer wires the background retry queue into notification fan-out.
func (s *Server) SetRetryEnqueuer(r service.RetryEnqueuer) {
	s.notificationService.SetRetryEnqueuer(r)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so browser clients still receive CORS
	// headers on 429 responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultAllowedOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || middleware.RateLimitBypass()
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

// SetupRoutes configures all routes for the application. Public routes are
// registered before the protected group so they never pass through auth.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Workstation Hub Metrics",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Public reads
	api.Get("/stats", s.GetStats)
	api.Get("/profiles/:username", s.GetProfileByUsername)
	api.Get("/thoughts", s.ListThoughts)

	publicProjects := api.Group("/projects")
	publicProjects.Get("/", s.ListProjects)
	publicProjects.Get("/:id/comments", s.ListComments)
	publicProjects.Get("/:id/updates", s.ListProjectUpdates)
	publicProjects.Get("/:id/members", s.ListMembers)
	publicProjects.Get("/:slug", s.ViewProject)

	protected := api.Group("", s.AuthRequired())

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)

	protected.Get("/dashboard", s.GetDashboard)

	projects := protected.Group("/projects")
	projects.Post("/", middleware.RateLimit(s.redis, 5, time.Hour, "create_project"), s.CreateProject)
	projects.Put("/:id", s.UpdateProject)
	projects.Post("/:id/updates", s.PostProjectUpdate)
	projects.Post("/:id/support", s.ToggleSupport)
	projects.Post("/:id/join", middleware.RateLimit(s.redis, 10, 10*time.Minute, "join_request"), s.RequestToJoin)
	projects.Get("/:id/join-requests", s.ListJoinRequests)
	projects.Post("/:id/members", s.AddMember)
	projects.Post("/:id/comments", middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.AddComment)

	joinRequests := protected.Group("/join-requests")
	joinRequests.Get("/me", s.MyJoinRequests)
	joinRequests.Post("/:id/respond", s.RespondToJoinRequest)

	protected.Delete("/comments/:id", s.DeleteComment)

	thoughts := protected.Group("/thoughts")
	thoughts.Post("/", middleware.RateLimit(s.redis, 5, time.Minute, "create_thought"), s.CreateThought)
	thoughts.Post("/:id/like", s.ToggleThoughtLike)

	conversations := protected.Group("/conversations")
	conversations.Get("/", s.ListConversations)
	conversations.Post("/", s.StartConversation)
	conversations.Get("/:id", s.OpenConversation)
	conversations.Delete("/:id", s.DeleteConversation)

	messages := protected.Group("/messages")
	messages.Post("/", middleware.RateLimit(s.redis, 15, time.Minute, "send_message"), s.SendMessage)
	messages.Get("/inbox", s.Inbox)
	messages.Get("/sent", s.SentMessages)
	messages.Post("/:id/read", s.MarkMessageRead)

	notes := protected.Group("/notifications")
	notes.Get("/", s.ListNotifications)
	notes.Get("/unread-counts", s.GetUnreadCounts)
	notes.Post("/read-all", s.MarkAllNotificationsRead)
	notes.Post("/:id/read", s.MarkNotificationRead)

	ai := protected.Group("/ai", s.FeatureRequired(featureflags.AIWorkers))
	ai.Get("/workers", s.ListAIWorkers)
	ai.Get("/tools", s.ListAITools)
	ai.Get("/conversations", s.ListAIConversations)
	ai.Post("/conversations", s.StartAIConversation)
	ai.Get("/conversations/:id", s.GetAIConversation)
	ai.Delete("/conversations/:id", s.DeleteAIConversation)
	ai.Post("/conversations/:id/messages", middleware.RateLimit(s.redis, 30, time.Minute, "ai_message"), s.SendAIMessage)

	protected.Get("/feature-flags", s.GetFeatureFlags)
	protected.Post("/ws/ticket", s.IssueWSTicket)
	protected.Get("/ws", s.WebsocketUpgradeRequired, s.WebsocketHandler())

	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/feature-flags", s.GetAdminFeatureFlags)
}

// App builds a Fiber app with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Workstation Hub API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start wires the websocket hub to Redis and serves HTTP until the app stops.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel
	s.app = s.App()

	if s.notifier.Enabled() {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start hub wiring",
					slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
			}
		}()
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down hub", slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}

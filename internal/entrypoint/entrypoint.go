package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/bookverse/bookverse/internal/audit"
	"github.com/bookverse/bookverse/internal/auth"
	"github.com/bookverse/bookverse/internal/config"
	"github.com/bookverse/bookverse/internal/covers"
	"github.com/bookverse/bookverse/internal/database"
	audit_repo "github.com/bookverse/bookverse/internal/database/audit"
	books_repo "github.com/bookverse/bookverse/internal/database/books"
	quotes_repo "github.com/bookverse/bookverse/internal/database/quotes"
	users_repo "github.com/bookverse/bookverse/internal/database/users"
	"github.com/bookverse/bookverse/internal/demo"
	"github.com/bookverse/bookverse/internal/feed"
	http_controllers "github.com/bookverse/bookverse/internal/http"
	"github.com/bookverse/bookverse/internal/metadata"
	"github.com/bookverse/bookverse/internal/reviews"
	"github.com/bookverse/bookverse/internal/scheduler"
	"github.com/bookverse/bookverse/internal/shelves"
	"github.com/bookverse/bookverse/internal/social"
	"github.com/bookverse/bookverse/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown, before the HTTP server
// stops accepting connections.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until interrupted, then shuts down gracefully.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the database, services, background workers and HTTP layer
// together and serves until interrupted.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting BookVerse v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	shelfService := shelves.NewService(db.DB)
	feedService := feed.NewService(db.DB, cfg.Feed)
	reviewService := reviews.NewService(db.DB)
	socialService := social.NewService(db.DB)
	booksRepo := books_repo.NewRepository(db.DB)
	quotesRepo := quotes_repo.NewRepository(db.DB)
	usersRepo := users_repo.NewRepository(db.DB)

	coverCache, err := covers.NewCache(cfg.Covers.CacheDir)
	if err != nil {
		log.Fatalf("Failed to initialize cover cache: %v", err)
	}

	// Audit trail
	var auditService *audit.Service
	var auditPurger *scheduler.AuditPurgeScheduler
	if cfg.Audit.Enabled {
		auditRepo := audit_repo.NewRepository(db.DB)
		auditService = audit.NewService(auditRepo)

		auditPurger = scheduler.NewAuditPurgeScheduler(auditRepo, cfg.Audit)
		if err := auditPurger.Start(); err != nil {
			log.Fatalf("Failed to start audit purge scheduler: %v", err)
		}
	}

	var (
		taskClient *tasks.Client
		taskCancel context.CancelFunc
		reconciler *scheduler.RatingReconcileScheduler
	)
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		queues := []backlite.Queue{
			tasks.NewRecountRatingsQueue(reviewService),
		}

		if cfg.Enrichment.Enabled {
			enricher := metadata.NewEnricher(metadata.NewOpenLibraryClient(), booksRepo)
			enricher.SetCoverInvalidator(coverCache)
			queues = append(queues,
				tasks.NewEnrichBookQueue(enricher),
				tasks.NewEnrichAllBooksQueue(enricher),
			)
		}

		taskClient.Register(queues...)

		var taskCtx context.Context
		taskCtx, taskCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		reconciler = scheduler.NewRatingReconcileScheduler(taskClient, cfg.Reconcile)
		if err := reconciler.Start(taskCtx); err != nil {
			log.Fatalf("Failed to start reconcile scheduler: %v", err)
		}
	}

	var (
		authService    *auth.Service
		authMiddleware *auth.Middleware
		sessionManager *auth.SessionManager
		csrfSecret     []byte
	)
	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(db.DB, cfg.Auth)

		sqlDB, err := db.SQLDB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex-encoded, use as-is
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated ephemeral session secret; set AUTH_SESSION_SECRET to persist sessions across restarts")
		}
	} else {
		log.Printf("Authentication mode: none (all requests run as the default user)")
	}

	booksController := http_controllers.NewBooksController(booksRepo)
	booksController.SetCoverCache(coverCache)
	if taskClient != nil && cfg.Enrichment.Enabled {
		booksController.SetTaskEnqueuer(taskClient)
	}

	routerCfg := http_controllers.RouterConfig{
		DB:             db.DB,
		Version:        version,
		AuthConfig:     cfg.Auth,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,

		Books:   booksController,
		Shelves: http_controllers.NewShelvesController(shelfService),
		Feed:    http_controllers.NewFeedController(feedService),
		Quotes:  http_controllers.NewQuotesController(quotesRepo),
		Reviews: http_controllers.NewReviewsController(reviewService),
		Users:   http_controllers.NewUsersController(socialService, usersRepo),
	}
	if auditService != nil {
		routerCfg.AuthAuditor = auditService
		routerCfg.DeleteAuditor = auditService
	}
	if cfg.Demo.Enabled {
		log.Printf("Demo mode enabled: write operations are blocked")
		routerCfg.Demo = demo.NewMiddleware(true)
	}

	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, func(ctx context.Context) {
		if auditPurger != nil {
			auditPurger.Stop()
		}
		if reconciler != nil {
			reconciler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		if taskCancel != nil {
			taskCancel()
		}
	})
}

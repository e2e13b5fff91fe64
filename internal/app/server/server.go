package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"talentflow/internal/domain/auth"
	"talentflow/internal/domain/directory"
	"talentflow/internal/domain/notifications"
	"talentflow/internal/domain/subjects"
	"talentflow/internal/domain/workflow"
	"talentflow/internal/platform/config"
	"talentflow/internal/platform/db"
	"talentflow/internal/platform/email"
	"talentflow/internal/platform/outbox"
	authhandler "talentflow/internal/transport/http/handlers/auth"
	directoryhandler "talentflow/internal/transport/http/handlers/directory"
	notificationshandler "talentflow/internal/transport/http/handlers/notifications"
	workflowhandler "talentflow/internal/transport/http/handlers/workflow"
	"talentflow/internal/transport/http/middleware"
)

type App struct {
	Config   config.Config
	DB       *pgxpool.Pool
	Router   http.Handler
	Outbox   *outbox.Dispatcher
	Workflow *workflow.Service
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	directoryStore := directory.NewStore(pool)
	workflowService := workflow.NewService(workflow.NewStore(pool), directoryStore)
	workflowService.MaxSlots = cfg.MaxApprovalLevels

	notifier := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom, cfg.EmailEnabled)
	dispatcher := outbox.New(pool, notifier, subjects.DefaultRegistry(pool), cfg)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL)
		r.Post("/auth/login", authHandler.HandleLogin)

		workflowHandler := workflowhandler.NewHandler(workflowService)
		workflowHandler.RegisterRoutes(r)

		notificationsHandler := notificationshandler.NewHandler(notifier)
		notificationsHandler.RegisterRoutes(r)

		directoryHandler := directoryhandler.NewHandler(directoryStore)
		directoryHandler.RegisterRoutes(r)
	})

	return &App{
		Config:   cfg,
		DB:       pool,
		Router:   router,
		Outbox:   dispatcher,
		Workflow: workflowService,
	}, nil
}

func (a *App) Close() {
	a.DB.Close()
}

func Run() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	app.Outbox.Start(ctx)

	log.Printf("approval service listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

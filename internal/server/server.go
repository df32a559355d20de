package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/migrations"
	"taskboard/internal/mytasks"
	"taskboard/internal/repository"
	"taskboard/internal/store"
	"taskboard/internal/store/docstore"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Store  *docstore.Store
	Config *config.Config
	logger *slog.Logger
}

// OpenStore connects to the configured database and wraps it in a document
// store. Postgres is migrated first; SQLite migrates itself on open.
func OpenStore(cfg *config.Config, logger *slog.Logger) (*gorm.DB, *docstore.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []docstore.Option{docstore.WithLogger(logger)}

	var db *gorm.DB
	var err error
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err = docstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
	default:
		if err := migrations.Up(cfg.MigrateURL()); err != nil {
			return nil, nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
		}
		db, err = docstore.OpenPostgres(cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		if cfg.NotifyChannel != "" {
			opts = append(opts, docstore.WithNotifyChannel(cfg.NotifyChannel))
		}
	}
	return db, docstore.New(db, opts...), nil
}

func Init(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, st, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Connected to database (%s)", cfg.DBDriver)

	return &Server{
		Engine: NewRouter(st, cfg, logger),
		DB:     db,
		Store:  st,
		Config: cfg,
		logger: logger,
	}, nil
}

// NewRouter wires repositories and handlers onto a gin engine.
func NewRouter(st store.Store, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	r := gin.Default()

	// Initialize repositories
	projectRepo := repository.NewProjectRepository(st)
	sectionRepo := repository.NewSectionRepository(st)
	taskRepo := repository.NewTaskRepository(st)
	indexRepo := repository.NewTaskIndexMaintainer(st)
	attachmentRepo := repository.NewAttachmentRepository(st)

	// Initialize handlers
	projectHandler := handler.NewProjectHandler(projectRepo, sectionRepo)
	sectionHandler := handler.NewSectionHandler(sectionRepo, projectRepo)
	taskHandler := handler.NewTaskHandler(taskRepo, indexRepo, sectionRepo, projectRepo, attachmentRepo)
	myTasksHandler := handler.NewMyTasksHandler(mytasks.NewAggregator(st, logger))
	boardHandler := handler.NewBoardHandler(st, projectRepo, cfg.DragThreshold, logger)

	// Public routes
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Project routes
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects", projectHandler.List)
		authorized.GET("/projects/:id", projectHandler.GetByID)
		authorized.POST("/projects/:id/members", projectHandler.AddMember)
		authorized.GET("/projects/:id/board/ws", boardHandler.Serve)

		// Section routes
		authorized.POST("/projects/:id/sections", sectionHandler.Create)
		authorized.POST("/projects/:id/sections/reorder", sectionHandler.Reorder)

		// Task routes
		authorized.POST("/projects/:id/tasks", taskHandler.Create)
		authorized.POST("/tasks/:id/move", taskHandler.MoveTask)
		authorized.PATCH("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/like", taskHandler.Like)
		authorized.DELETE("/tasks/:id/like", taskHandler.Unlike)
		authorized.POST("/tasks/:id/attachments", taskHandler.AddAttachment)
		authorized.GET("/my-tasks", myTasksHandler.List)
	}
	return r
}

// Issuer returns a token issuer for the configured secret.
func (s *Server) Issuer() *auth.Issuer {
	return auth.NewIssuer(s.Config.JWTSecret, s.Config.JWTExpiry)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully. On
// Postgres with a notify channel it also relays the change feed.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("❌ Failed to listen: %w", err)
		}
		return nil
	})
	if s.Config.DBDriver == config.DriverPostgres && s.Config.NotifyChannel != "" {
		g.Go(func() error {
			log.Printf("📡 Listening for document changes on %q", s.Config.NotifyChannel)
			return docstore.Listen(ctx, s.Config.PostgresDSN(), s.Config.NotifyChannel, s.Store.Hub(), s.logger)
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()
		log.Println("🛑 Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("❌ Server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("✅ Server exited properly")
	return nil
}

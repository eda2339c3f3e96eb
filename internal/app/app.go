// Package app wires the repositories, services and HTTP handlers into a
// runnable fiber application
package app

import (
	"context"
	"errors"
	"sync"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/celestiaorg/quill/internal/agent"
	"github.com/celestiaorg/quill/internal/auth"
	"github.com/celestiaorg/quill/internal/config"
	"github.com/celestiaorg/quill/internal/db/repos"
	"github.com/celestiaorg/quill/internal/logger"
	"github.com/celestiaorg/quill/internal/metrics"
	"github.com/celestiaorg/quill/internal/services"
	"github.com/celestiaorg/quill/pkg/api/v1/handlers"
	"github.com/celestiaorg/quill/pkg/api/v1/routes"
)

// App is the assembled service
type App struct {
	Fiber      *fiber.App
	Metrics    *metrics.Metrics
	Dispatcher *services.Dispatcher
	Scanner    *services.Scanner
	Reconciler *services.Reconciler
	Status     *services.StatusReader
	Users      *services.User

	cfg    *config.Config
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New builds the service on top of an open database. runner is the agent
// the dispatcher calls; when nil an HTTP client for cfg.AgentURL is used.
// reg may be nil, in which case a fresh registry is created.
func New(cfg *config.Config, database *gorm.DB, runner services.AgentRunner, reg *prometheus.Registry) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if database == nil {
		return nil, errors.New("database is required")
	}
	if runner == nil {
		runner = agent.NewClient(cfg.AgentURL, cfg.AgentTimeout)
	}

	userRepo := repos.NewUserRepository(database)
	websiteRepo := repos.NewWebsiteRepository(database)
	contentRepo := repos.NewContentRepository(database)
	jobRepo := repos.NewJobRepository(database)

	m := metrics.NewMetrics(reg)
	dispatcher := services.NewDispatcher(contentRepo, jobRepo, runner, m, services.DispatcherOptionsFromConfig(cfg))
	scanner := services.NewScanner(contentRepo, dispatcher, m)
	status := services.NewStatusReader(jobRepo, cfg.StatusLogLimit)
	reconciler := services.NewReconciler(jobRepo, cfg.ReconcileStaleAfter, m)
	userService := services.NewUserService(userRepo)

	fiberApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
		ErrorHandler:          handlers.ErrorHandler,
	})
	fiberApp.Use(logger.APILogger())

	var metricsHandler fiber.Handler
	if cfg.MetricsEnabled {
		metricsHandler = m.Handler()
	}

	routes.RegisterRoutes(fiberApp, auth.NewAuthenticator(cfg.JWTSecret, cfg.CronSecret), metricsHandler, routes.Handlers{
		Agent:   handlers.NewAgentHandler(dispatcher, status),
		Cron:    handlers.NewCronHandler(scanner),
		Demo:    handlers.NewDemoHandler(dispatcher, status),
		Content: handlers.NewContentHandler(services.NewContentService(contentRepo, websiteRepo, jobRepo)),
		Website: handlers.NewWebsiteHandler(services.NewWebsiteService(websiteRepo)),
		User:    handlers.NewUserHandler(userService),
	})

	return &App{
		Fiber:      fiberApp,
		Metrics:    m,
		Dispatcher: dispatcher,
		Scanner:    scanner,
		Reconciler: reconciler,
		Status:     status,
		Users:      userService,
		cfg:        cfg,
	}, nil
}

// StartScheduler launches the in-process cron scheduler when it is enabled
// in the configuration
func (a *App) StartScheduler(ctx context.Context) error {
	if !a.cfg.SchedulerEnabled {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	scheduler, err := services.NewScheduler(ctx, services.SchedulerOptions{
		ScanSchedule:      a.cfg.ScanSchedule,
		ReconcileEnabled:  a.cfg.ReconcileEnabled,
		ReconcileSchedule: a.cfg.ReconcileSchedule,
	}, a.Scanner, a.Reconciler)
	if err != nil {
		cancel()
		return err
	}

	a.cancel = cancel
	a.wg.Add(1)
	go services.LaunchScheduler(ctx, &a.wg, scheduler)
	return nil
}

// Listen serves the API on addr until Shutdown is called
func (a *App) Listen(addr string) error {
	return a.Fiber.Listen(addr)
}

// Shutdown stops accepting requests, stops the scheduler and waits for every
// in-flight agent run to complete
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Fiber.ShutdownWithContext(ctx)

	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	logger.Info("Waiting for in-flight agent jobs to complete")
	a.Dispatcher.Wait()
	return err
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workorders/cmd"
	httpin "workorders/internal/adapters/in/http"
	"workorders/internal/adapters/out/metrics"
	"workorders/internal/adapters/out/postgres/auditrepo"
	"workorders/internal/adapters/out/postgres/employeerepo"
	"workorders/internal/adapters/out/postgres/workorderrepo"
	"workorders/internal/generated/servers"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger := cmd.NewLogger(configs)

	gormDB := mustGormOpen(configs)
	mustAutoMigrate(gormDB)

	app := cmd.NewCompositionRoot(configs, gormDB, logger, prometheus.DefaultRegisterer)

	jobManager, err := app.CreateJobManager()
	if err != nil {
		log.Fatalf("Failed to build background jobs: %v", err)
	}
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}
	defer jobManager.StopAll()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := startWebServer(ctx, app, configs.HTTPPort); err != nil {
		logger.Error("Web server stopped", "error", err)
	}
}

func mustGormOpen(configs cmd.Config) *gorm.DB {
	gormDB, err := gorm.Open(postgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return gormDB
}

func mustAutoMigrate(gormDB *gorm.DB) {
	if err := gormDB.AutoMigrate(
		&employeerepo.EmployeeDTO{},
		&workorderrepo.WorkOrderDTO{},
		&auditrepo.AuditEntryDTO{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, port string) error {
	server, err := app.CreateServer()
	if err != nil {
		return err
	}
	swagger, err := servers.GetSwagger()
	if err != nil {
		return fmt.Errorf("load openapi document: %w", err)
	}
	validator, err := httpin.NewRequestValidator(swagger)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(app.ServerMetrics().Middleware())
	e.Use(validator)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	servers.RegisterHandlers(e, server)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(fmt.Sprintf("0.0.0.0:%s", port))
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

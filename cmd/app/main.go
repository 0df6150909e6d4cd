package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"syscall"
	"time"

	"warehouse/cmd"
	httpin "warehouse/internal/adapters/in/http"
	"warehouse/internal/adapters/out/postgres/orderrepo"
	"warehouse/internal/jobs"
	"warehouse/internal/pkg/drain"
	"warehouse/internal/pkg/lease"
	"warehouse/internal/pkg/shutdown"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	forceShutdownTimeout = 30 * time.Second
	drainTimeout         = 15 * time.Second
	listenerCloseTimeout = 5 * time.Second
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	port, err := strconv.Atoi(configs.HTTPPort)
	if err != nil {
		log.Fatalf("invalid HTTP_PORT %q: %v", configs.HTTPPort, err)
	}

	// One station process per port. A crashed predecessor leaves a stale
	// lease behind; Acquire reclaims it once the holder pid is gone.
	leaseManager := lease.NewManager(configs.LeaseDir, port, configs.ServiceName, configs.StationHost)
	if err = leaseManager.Acquire(); err != nil {
		var conflict *lease.ConflictError
		if errors.As(err, &conflict) {
			log.Fatalf("station already running: %v", conflict)
		}
		log.Fatalf("failed to acquire station lease: %v", err)
	}
	defer leaseManager.Release()

	gormDB := mustConnectDB(configs)

	root := cmd.NewCompositionRoot(configs, gormDB, logger)

	tracker := drain.NewTracker()
	orchestrator := shutdown.NewOrchestrator(logger, forceShutdownTimeout)

	jobManager := root.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("failed to start jobs: %v", err)
	}

	e := echo.New()
	e.HideBanner = true

	server := httpin.NewServer(
		root.CreateCreateOrderCommandHandler(),
		root.CreateClaimOrderCommandHandler(),
		root.CreateRecordPickCommandHandler(),
		root.CreateCompletePickCommandHandler(),
		root.CreateSkipPickCommandHandler(),
		root.CreateCancelOrderCommandHandler(),
		root.CreateGetActiveOrdersQueryHandler(),
		root.CreateGetZoneSummaryQueryHandler(),
		root.Hub(),
		func() bool { return !orchestrator.ShuttingDown() },
	)
	server.RegisterRoutes(e, httpin.DrainMiddleware(tracker))

	registerShutdownActions(orchestrator, tracker, jobManager, root, e, gormDB, leaseManager, logger)
	orchestrator.HandleSignals(syscall.SIGINT, syscall.SIGTERM)

	if code := serve(e, fmt.Sprintf("0.0.0.0:%d", port), orchestrator, logger); code != 0 {
		os.Exit(code)
	}
}

// serve blocks until the listener stops. A listener failure other than a
// deliberate close starts the shutdown sequence itself, so the process
// releases its resources (including the station lease) and exits non-zero
// instead of hanging with the lease held.
func serve(e *echo.Echo, addr string, orchestrator *shutdown.Orchestrator, logger *slog.Logger) int {
	err := e.Start(addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server stopped", "error", err)
		orchestrator.Shutdown(context.Background())
		<-orchestrator.Done()
		return 1
	}

	<-orchestrator.Done()
	return 0
}

// registerShutdownActions wires the termination sequence. Actions run in
// registration order: readiness flips first (ShuttingDown() drives /readyz),
// then background jobs stop, in-flight requests drain, subscriber
// connections close, the listener closes, and finally the DB pool and the
// station lease are released.
func registerShutdownActions(
	orchestrator *shutdown.Orchestrator,
	tracker *drain.Tracker,
	jobManager *jobs.JobManager,
	root cmd.CompositionRoot,
	e *echo.Echo,
	gormDB *gorm.DB,
	leaseManager *lease.Manager,
	logger *slog.Logger,
) {
	orchestrator.Register("stop_jobs", func(context.Context) error {
		jobManager.StopAll()
		return nil
	})

	orchestrator.Register("drain_requests", func(context.Context) error {
		if !tracker.WaitForDrain(drainTimeout) {
			logger.Warn("drain timed out, closing remaining requests",
				"in_flight", tracker.InFlight())
		}
		return nil
	})

	orchestrator.Register("close_subscribers", func(ctx context.Context) error {
		return root.Hub().Close(ctx)
	})

	orchestrator.Register("close_listener", func(ctx context.Context) error {
		closeCtx, cancel := context.WithTimeout(ctx, listenerCloseTimeout)
		defer cancel()
		return e.Shutdown(closeCtx)
	})

	orchestrator.Register("close_db", func(context.Context) error {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	orchestrator.Register("release_lease", func(context.Context) error {
		return leaseManager.Release()
	})
}

func mustConnectDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost,
		configs.DBPort,
		configs.DBUser,
		configs.DBPassword,
		configs.DBName,
		configs.DBSslMode,
	)

	gormDB, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err = gormDB.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.PickTaskDTO{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	return gormDB
}

func getConfigs() cmd.Config {
	return cmd.Config{
		HTTPPort:    goDotEnvVariable("HTTP_PORT"),
		DBHost:      goDotEnvVariable("DB_HOST"),
		DBPort:      goDotEnvVariable("DB_PORT"),
		DBUser:      goDotEnvVariable("DB_USER"),
		DBPassword:  goDotEnvVariable("DB_PASSWORD"),
		DBName:      goDotEnvVariable("DB_NAME"),
		DBSslMode:   goDotEnvVariable("DB_SSLMODE"),
		LeaseDir:    goDotEnvVariable("LEASE_DIR"),
		ServiceName: goDotEnvVariable("SERVICE_NAME"),
		StationHost: goDotEnvVariable("STATION_HOST"),
	}
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hospital-management/api"
	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/appointment"
	appointmentPostgres "github.com/frahmantamala/hospital-management/internal/appointment/postgres"
	"github.com/frahmantamala/hospital-management/internal/auth"
	authPostgres "github.com/frahmantamala/hospital-management/internal/auth/postgres"
	"github.com/frahmantamala/hospital-management/internal/core/events"
	"github.com/frahmantamala/hospital-management/internal/faq"
	faqPostgres "github.com/frahmantamala/hospital-management/internal/faq/postgres"
	"github.com/frahmantamala/hospital-management/internal/job"
	jobPostgres "github.com/frahmantamala/hospital-management/internal/job/postgres"
	"github.com/frahmantamala/hospital-management/internal/mail"
	"github.com/frahmantamala/hospital-management/internal/permission"
	permissionPostgres "github.com/frahmantamala/hospital-management/internal/permission/postgres"
	"github.com/frahmantamala/hospital-management/internal/profile"
	profilePostgres "github.com/frahmantamala/hospital-management/internal/profile/postgres"
	"github.com/frahmantamala/hospital-management/internal/ratelimit"
	"github.com/frahmantamala/hospital-management/internal/role"
	rolePostgres "github.com/frahmantamala/hospital-management/internal/role/postgres"
	"github.com/frahmantamala/hospital-management/internal/stats"
	statsPostgres "github.com/frahmantamala/hospital-management/internal/stats/postgres"
	"github.com/frahmantamala/hospital-management/internal/transport"
	"github.com/frahmantamala/hospital-management/internal/transport/rest"
	"github.com/frahmantamala/hospital-management/internal/transport/swagger"
	"github.com/frahmantamala/hospital-management/internal/user"
	userPostgres "github.com/frahmantamala/hospital-management/internal/user/postgres"
	"github.com/frahmantamala/hospital-management/internal/website"
	websitePostgres "github.com/frahmantamala/hospital-management/internal/website/postgres"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Redis  *redis.Client
	Mailer mail.Mailer
	Logger *slog.Logger

	// Limiter is nil when rate limiting is disabled.
	Limiter ratelimit.Limiter
}

func startHTTPServer() {
	deps, cleanup, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	router, bus, err := buildRouter(deps)
	if err != nil {
		deps.Logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		// let queued registration mails finish
		if err := bus.Wait(ctx); err != nil {
			deps.Logger.Warn("event handlers still running at shutdown", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

// buildRouter wires repositories, services and handlers onto a fresh router.
// The returned bus must be drained with Wait before the process exits.
func buildRouter(deps *Dependencies) (*chi.Mux, *events.EventBus, error) {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	if _, err := swagger.Load(context.Background(), api.Spec); err != nil {
		return nil, nil, err
	}

	bus := events.NewEventBus(lg)
	notifier := mail.NewNotifier(deps.Mailer, cfg.Server.BaseURL, lg)
	notifier.Register(bus)

	authService := auth.NewService(
		authPostgres.NewRepository(deps.Gorm),
		auth.NewJWTTokenGenerator(cfg.Security),
		auth.NewOTPIssuer(cfg.Security.OTPSecret, cfg.Security.OTPTTL),
		notifier,
		bus,
		cfg.Security.BCryptCost,
		lg,
	)

	permissionRepo := permissionPostgres.NewPermissionRepository(deps.Gorm)

	handlers := rest.Handlers{
		Auth:        auth.NewHandler(base, authService),
		User:        user.NewHandler(base, user.NewService(userPostgres.NewUserRepository(deps.Gorm), cfg.Security.BCryptCost, lg)),
		Role:        role.NewHandler(base, role.NewService(rolePostgres.NewRoleRepository(deps.Gorm), permissionRepo, lg)),
		Permission:  permission.NewHandler(base, permission.NewService(permissionRepo, lg)),
		Profile:     profile.NewHandler(base, profile.NewBinder(profilePostgres.NewProfileRepository(deps.Gorm), lg)),
		Appointment: appointment.NewHandler(base, appointment.NewService(appointmentPostgres.NewAppointmentRepository(deps.Gorm), lg)),
		Stats:       stats.NewHandler(base, stats.NewService(statsPostgres.NewStatsRepository(deps.DB), lg)),
		FAQ:         faq.NewHandler(base, faq.NewService(faqPostgres.NewFAQRepository(deps.Gorm), lg)),
		Job:         job.NewHandler(base, job.NewService(jobPostgres.NewJobRepository(deps.Gorm), lg)),
		Website:     website.NewHandler(base, website.NewService(websitePostgres.NewWebsiteRepository(deps.Gorm), lg)),
	}

	health := map[string]rest.Pinger{"database": deps.DB}
	if deps.Redis != nil {
		health["redis"] = rest.PingFunc(func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		})
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, handlers, rest.Options{
		Health:      health,
		OpenAPISpec: api.Spec,
		Limiter:     deps.Limiter,
		AuthPolicy: ratelimit.Policy{
			Name:   "auth",
			Limit:  cfg.RateLimit.AuthMaxRequests,
			Window: cfg.RateLimit.Window,
		},
		APIPolicy: ratelimit.Policy{
			Name:   "api",
			Limit:  cfg.RateLimit.MaxRequests,
			Window: cfg.RateLimit.Window,
		},
		TrustProxy:     cfg.RateLimit.TrustProxy,
		MetricsEnabled: cfg.Observability.Metrics.Enabled,
		MetricsPath:    cfg.Observability.Metrics.Path,
	}, lg)

	return router, bus, nil
}

// initializeDependencies opens every outside connection. The returned
// cleanup closes them in reverse order.
func initializeDependencies() (*Dependencies, func(), error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := initLogger(config)

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	closers = append(closers, func() {
		if err := db.Close(); err != nil {
			lg.Error("Database close error", "error", err)
		}
	})

	gormDB, err := initGorm(db)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	deps := &Dependencies{
		Config: config,
		DB:     db,
		Gorm:   gormDB,
		Mailer: mail.New(config.Mail, lg),
		Logger: lg,
	}

	if config.RateLimit.Enabled {
		switch config.RateLimit.Backend {
		case "redis":
			deps.Redis = redis.NewClient(&redis.Options{
				Addr:     config.Redis.Addr,
				Password: config.Redis.Password,
				DB:       config.Redis.DB,
			})
			closers = append(closers, func() { _ = deps.Redis.Close() })
			deps.Limiter = ratelimit.NewRedisLimiter(deps.Redis)
		default:
			memory := ratelimit.NewMemoryLimiter(lg)
			if err := memory.StartSweeper(config.RateLimit.SweepSchedule); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("invalid rate limit sweep schedule: %w", err)
			}
			closers = append(closers, memory.Stop)
			deps.Limiter = memory
		}
		lg.Info("rate limiting enabled", "backend", config.RateLimit.Backend)
	}

	return deps, cleanup, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Open(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx connection pool with gorm. Unique violations come
// back as gorm.ErrDuplicatedKey.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
}

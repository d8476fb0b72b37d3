package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"taxpro/internal/app"
	"taxpro/internal/common"
	"taxpro/internal/config"
	"taxpro/internal/database"
	"taxpro/internal/domain/application"
	"taxpro/internal/domain/bench"
	"taxpro/internal/domain/connection"
	"taxpro/internal/domain/job"
	"taxpro/internal/domain/profile"
	apphttp "taxpro/internal/http"
	"taxpro/internal/http/handlers"
	"taxpro/internal/http/metrics"
	httpmw "taxpro/internal/http/middleware"
	"taxpro/internal/notify"
	"taxpro/internal/observability"
	"taxpro/internal/repository/memory"
	"taxpro/internal/repository/postgres"
	"taxpro/internal/security"
)

func main() {
	root := &cobra.Command{
		Use:           "taxpro",
		Short:         "Marketplace API for tax professionals and firms",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(serveCmd(), migrateCmd(), tokenCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.PostgresDSN == "" {
				return errors.New("DATABASE_URL is required for migrate")
			}
			logger := observability.NewLogger(cfg.LogLevel)
			db, err := database.NewPostgres(cmd.Context(), postgresConfig(cfg), logger)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			logger.Info("schema applied")
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		roles string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token [profile-id]",
		Short: "Issue a bearer token for a profile",
		Long: `Issue a bearer token signed with JWT_SECRET. Without a profile id a new
subject is generated; onboard it with POST /profiles/me.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			id := common.NewUUID()
			if len(args) == 1 {
				if id, err = common.ParseUUID(args[0]); err != nil {
					return fmt.Errorf("invalid profile id: %w", err)
				}
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), "profile id:", id)
			}
			var list []string
			for _, role := range strings.Split(roles, ",") {
				if role = strings.TrimSpace(role); role != "" {
					list = append(list, role)
				}
			}
			token, _, err := security.NewJWTProvider(cfg.JWTSecret).Generate(id, list, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&roles, "roles", "", "comma separated roles, e.g. admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func postgresConfig(cfg *config.Config) database.PostgresConfig {
	return database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	}
}

type repositories struct {
	profiles     profile.Repository
	firms        profile.FirmRepository
	connections  connection.Repository
	jobs         job.Repository
	applications application.Repository
	bench        bench.Repository
}

func postgresRepositories(db *sql.DB) repositories {
	return repositories{
		profiles:     postgres.NewProfileRepository(db),
		firms:        postgres.NewFirmRepository(db),
		connections:  postgres.NewConnectionRepository(db),
		jobs:         postgres.NewJobRepository(db),
		applications: postgres.NewApplicationRepository(db),
		bench:        postgres.NewBenchRepository(db),
	}
}

func memoryRepositories() repositories {
	store := memory.NewStore()
	return repositories{
		profiles:     store.Profiles(),
		firms:        store.Firms(),
		connections:  store.Connections(),
		jobs:         store.Jobs(),
		applications: store.Applications(),
		bench:        store.Bench(),
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	checks := map[string]handlers.HealthCheck{}
	var repos repositories
	if cfg.PostgresDSN != "" {
		db, err := database.NewPostgres(ctx, postgresConfig(cfg), logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		repos = postgresRepositories(db)
		checks["postgres"] = db.PingContext
	} else {
		logger.Warn("DATABASE_URL is empty, using in-memory storage")
		repos = memoryRepositories()
	}

	var limiter httpmw.Limiter = httpmw.NewRateLimiter()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, rate limits fail open until it recovers", slog.String("error", err.Error()))
		}
		limiter = httpmw.NewRedisLimiter(client)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	collector := metrics.NewCollector()

	var sender notify.Sender = notify.NewLogSender(logger)
	if cfg.RabbitMQURL != "" {
		publisher, err := notify.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.NotificationQueue)
		if err != nil {
			return err
		}
		defer publisher.Close()
		sender = publisher
		checks["rabbitmq"] = publisher.Check
	}
	dispatcher := notify.NewDispatcher(sender, logger, collector, notify.Options{
		Buffer:  cfg.NotificationBuffer,
		Workers: cfg.NotificationWorkers,
	})

	connectionService := app.NewConnectionService(repos.connections, repos.profiles, dispatcher)
	jobService := app.NewJobService(repos.jobs, repos.profiles)
	applicationService := app.NewApplicationService(repos.applications, repos.jobs, repos.profiles, dispatcher)
	profileService := app.NewProfileService(repos.profiles, repos.firms)
	benchService := app.NewBenchService(repos.bench, repos.firms, repos.profiles, dispatcher, cfg.InviteTTL)

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)
	router := apphttp.NewRouter(apphttp.RouterDependencies{
		ConnectionHandler:  handlers.NewConnectionHandler(connectionService),
		JobHandler:         handlers.NewJobHandler(jobService),
		ApplicationHandler: handlers.NewApplicationHandler(applicationService, limiter, cfg.ApplyPerMin),
		ProfileHandler:     handlers.NewProfileHandler(profileService),
		BenchHandler:       handlers.NewBenchHandler(benchService),
		MetricsHandler:     handlers.NewMetricsHandler(collector),
		HealthHandler:      handlers.NewHealthHandler(checks),
		AuthMiddleware:     httpmw.NewAuthMiddleware(jwtProvider),
		Metrics:            collector,
		Limiter:            limiter,
		ConnectPerMin:      cfg.ConnectPerMin,
		RequestTimeout:     cfg.RequestTimeout,
	})
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API started", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.String("error", err.Error()))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("notification queue not drained", slog.String("error", err.Error()))
	}
	logger.Info("API stopped")
	return nil
}

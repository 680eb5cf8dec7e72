package main

import (
	"context"
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

	"github.com/albamate/albamate-backend/internal/config"
	appHTTP "github.com/albamate/albamate-backend/internal/handler/http"
	"github.com/albamate/albamate-backend/internal/pkg/cron"
	"github.com/albamate/albamate-backend/internal/pkg/database"
	"github.com/albamate/albamate-backend/internal/pkg/jwt"
	"github.com/albamate/albamate-backend/internal/pkg/lock"
	"github.com/albamate/albamate-backend/internal/repository/postgresql"
	attendanceService "github.com/albamate/albamate-backend/internal/service/attendance"
	payrollService "github.com/albamate/albamate-backend/internal/service/payroll"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.App.LogLevel),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := postgresql.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	locker := lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		locker = lock.NewRedisLocker(rdb)
		slog.Info("using redis check-in lock", "addr", cfg.Redis.Addr)
	}

	loc := cfg.Location()

	// Repositories
	tx := postgresql.NewTransactor(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	wageRepo := postgresql.NewWageAssignmentRepository(db)
	storeRepo := postgresql.NewStoreRepository(db)
	authz := postgresql.NewAuthorizationChecker(db)
	policyRepo := postgresql.NewPayrollPolicyRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)

	// Services
	attendanceSvc := attendanceService.NewAttendanceService(tx, attendanceRepo, employeeRepo, wageRepo, storeRepo, authz, locker, loc)
	policySvc := payrollService.NewPolicyService(policyRepo, storeRepo, authz)
	payrollSvc := payrollService.NewPayrollService(
		tx,
		payrollRepo,
		policyRepo,
		attendanceRepo,
		authz,
		payrollService.NewThresholdAllowance(cfg.Payroll.WeeklyAllowanceMinHour, cfg.Payroll.WeeklyAllowanceHours),
		payrollService.NewConfiguredTaxRates(cfg.Payroll.FlatTaxRate, cfg.Payroll.InsuranceTaxRate),
		loc,
	)

	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(wageRepo, payrollSvc, loc, cfg.Payroll.BatchDay, cfg.Payroll.BatchConcurrency).
		RegisterJobs(scheduler, cfg.Payroll.BatchInterval)
	scheduler.Start()
	defer scheduler.Stop()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{Env: cfg.App.Env, AllowedOrigins: cfg.App.AllowedOrigins},
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewPayrollHandler(policySvc, payrollSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

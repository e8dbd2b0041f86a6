package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Leganyst/booking-scheduler/internal/calendar"
	"github.com/Leganyst/booking-scheduler/internal/config"
	"github.com/Leganyst/booking-scheduler/internal/db"
	v1 "github.com/Leganyst/booking-scheduler/internal/handler/v1"
	"github.com/Leganyst/booking-scheduler/internal/logger"
	"github.com/Leganyst/booking-scheduler/internal/metrics"
	"github.com/Leganyst/booking-scheduler/internal/model"
	"github.com/Leganyst/booking-scheduler/internal/repository"
	"github.com/Leganyst/booking-scheduler/internal/service"
	"github.com/Leganyst/booking-scheduler/internal/tracer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "booking-scheduler: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Конфиг: env, .env, config.yaml, значения по умолчанию.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Логгер и трассировка.
	log, err := logger.New(cfg.Log, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	// 3. База и миграции.
	gormDB, err := db.NewGormDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("sql DB: %w", err)
	}
	defer sqlDB.Close()

	if err := model.AutoMigrate(gormDB); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// 4. Метрики, хранилище и допуск записей.
	m := metrics.NewCollector("booking")

	store := repository.NewGormStore(gormDB,
		repository.WithStoreTimeout(cfg.Admission.StoreTimeout),
		repository.WithSerializable(cfg.DB.Serializable),
		repository.WithStoreObserver(m),
	)
	admitter := calendar.NewAdmitter(store,
		calendar.WithLogger(log),
		calendar.WithObserver(m),
		calendar.WithMaxRetries(cfg.Admission.MaxRetries),
	)

	// 5. HTTP API.
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := v1.Router{
		Directory: v1.NewDirectoryHandler(
			repository.NewGormProviderRepository(gormDB),
			repository.NewGormClientRepository(gormDB),
			repository.NewGormRoomRepository(gormDB),
			log,
		),
		Appointments: v1.NewAppointmentHandler(
			admitter,
			repository.NewGormAppointmentRepository(gormDB),
			repository.NewGormEventRepository(gormDB),
			log,
		),
		Metrics: m,
		Health:  func(ctx context.Context) error { return db.Ping(ctx, gormDB) },
		Log:     log,
	}
	engine, err := router.Engine(v1.RouterConfig{
		Version:        cfg.App.Version,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		return fmt.Errorf("init router: %w", err)
	}
	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	// 6. gRPC: AdmissionService, health, reflection.
	grpcServer, healthSrv := service.NewServer(admitter, service.ServerOptions{
		Logger:     log,
		Observer:   m,
		Reflection: cfg.GRPC.Reflection,
	})
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPC.Addr, err)
	}

	// 7. Запускаем оба сервера; первая ошибка или сигнал останавливают всё.
	errCh := make(chan error, 2)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http serve: %w", err)
		}
	}()
	go func() {
		log.Info("grpc server listening", zap.String("addr", cfg.GRPC.Addr))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc serve: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case serveErr = <-errCh:
		log.Error("server failed", zap.Error(serveErr))
	}

	// 8. Грейсфул-шатдаун.
	healthSrv.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	log.Info("stopped")
	return serveErr
}

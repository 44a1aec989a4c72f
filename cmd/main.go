package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	canBookHandler "github.com/m04kA/GMS-ClassBookingService/internal/api/handlers/can_book"
	cancelBookingHandler "github.com/m04kA/GMS-ClassBookingService/internal/api/handlers/cancel_booking"
	checkLimitsHandler "github.com/m04kA/GMS-ClassBookingService/internal/api/handlers/check_limits"
	createBookingHandler "github.com/m04kA/GMS-ClassBookingService/internal/api/handlers/create_booking"
	getBookingHandler "github.com/m04kA/GMS-ClassBookingService/internal/api/handlers/get_booking"
	getClientBookingsHandler "github.com/m04kA/GMS-ClassBookingService/internal/api/handlers/get_client_bookings"
	getClientPenaltiesHandler "github.com/m04kA/GMS-ClassBookingService/internal/api/handlers/get_client_penalties"
	getGymPoliciesHandler "github.com/m04kA/GMS-ClassBookingService/internal/api/handlers/get_gym_policies"
	joinWaitlistHandler "github.com/m04kA/GMS-ClassBookingService/internal/api/handlers/join_waitlist"
	leaveWaitlistHandler "github.com/m04kA/GMS-ClassBookingService/internal/api/handlers/leave_waitlist"
	processNoShowHandler "github.com/m04kA/GMS-ClassBookingService/internal/api/handlers/process_no_show"
	promoteWaitlistHandler "github.com/m04kA/GMS-ClassBookingService/internal/api/handlers/promote_waitlist"
	updateGymPolicyHandler "github.com/m04kA/GMS-ClassBookingService/internal/api/handlers/update_gym_policy"
	"github.com/m04kA/GMS-ClassBookingService/internal/api/middleware"
	"github.com/m04kA/GMS-ClassBookingService/internal/config"
	bookingRepo "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/booking"
	penaltyRepo "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/penalty"
	policyRepo "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/policy"
	sessionRepo "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/session"
	waitlistRepo "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/waitlist"
	memberServiceClient "github.com/m04kA/GMS-ClassBookingService/internal/integrations/memberservice"
	"github.com/m04kA/GMS-ClassBookingService/internal/quota"
	bookingsService "github.com/m04kA/GMS-ClassBookingService/internal/service/bookings"
	policiesService "github.com/m04kA/GMS-ClassBookingService/internal/service/policies"
	bookClassUC "github.com/m04kA/GMS-ClassBookingService/internal/usecase/book_class"
	cancelBookingUC "github.com/m04kA/GMS-ClassBookingService/internal/usecase/cancel_booking"
	waitlistUC "github.com/m04kA/GMS-ClassBookingService/internal/usecase/waitlist"
	"github.com/m04kA/GMS-ClassBookingService/pkg/dbmetrics"
	"github.com/m04kA/GMS-ClassBookingService/pkg/logger"
	"github.com/m04kA/GMS-ClassBookingService/pkg/metrics"
	"github.com/m04kA/GMS-ClassBookingService/pkg/simpletxmanager"
	"github.com/m04kA/GMS-ClassBookingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting GMS-ClassBookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем клиента MemberService
	memberClient := memberServiceClient.NewClient(
		cfg.MemberService.URL,
		time.Duration(cfg.MemberService.Timeout)*time.Second,
		log,
	)
	log.Info("MemberService client initialized (url=%s, timeout=%ds)",
		cfg.MemberService.URL, cfg.MemberService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		sessionRepository  *sessionRepo.Repository
		bookingRepository  *bookingRepo.Repository
		waitlistRepository *waitlistRepo.Repository
		policyRepository   *policyRepo.Repository
		penaltyRepository  *penaltyRepo.Repository
	)

	// Интерфейс transaction manager (используется в usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		sessionRepository = sessionRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		waitlistRepository = waitlistRepo.NewRepository(wrappedDB)
		policyRepository = policyRepo.NewRepository(wrappedDB)
		penaltyRepository = penaltyRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		sessionRepository = sessionRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		waitlistRepository = waitlistRepo.NewRepository(db)
		policyRepository = policyRepo.NewRepository(db)
		penaltyRepository = penaltyRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	timeProvider := &quota.RealTimeProvider{}

	// Проверка лимитов абонементов
	quotaEvaluator := quota.NewEvaluator(memberClient, bookingRepository, log)

	// Инициализируем use cases
	waitlistUseCase := waitlistUC.New(
		sessionRepository,
		bookingRepository,
		waitlistRepository,
		policyRepository,
		memberClient,
		txMgr,
		timeProvider,
		log,
	)

	bookClassUseCase := bookClassUC.New(
		sessionRepository,
		bookingRepository,
		waitlistRepository,
		policyRepository,
		memberClient,
		quotaEvaluator,
		txMgr,
		timeProvider,
		log,
	)

	cancelBookingUseCase := cancelBookingUC.New(
		sessionRepository,
		bookingRepository,
		policyRepository,
		penaltyRepository,
		waitlistUseCase,
		txMgr,
		timeProvider,
		log,
	)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(bookingRepository, penaltyRepository, log)
	policySvc := policiesService.NewService(policyRepository, log)

	// Инициализируем handlers
	canBook := canBookHandler.NewHandler(bookClassUseCase, log)
	createBooking := createBookingHandler.NewHandler(bookClassUseCase, log)
	checkLimits := checkLimitsHandler.NewHandler(bookClassUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	processNoShow := processNoShowHandler.NewHandler(cancelBookingUseCase, log)
	joinWaitlist := joinWaitlistHandler.NewHandler(waitlistUseCase, log)
	leaveWaitlist := leaveWaitlistHandler.NewHandler(waitlistUseCase, log)
	promoteWaitlist := promoteWaitlistHandler.NewHandler(waitlistUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getClientBookings := getClientBookingsHandler.NewHandler(bookingSvc, log)
	getClientPenalties := getClientPenaltiesHandler.NewHandler(bookingSvc, log)
	getGymPolicies := getGymPoliciesHandler.NewHandler(policySvc, log)
	updateGymPolicy := updateGymPolicyHandler.NewHandler(policySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Политики записи зала
	api.HandleFunc("/gyms/{gymId}/policies", getGymPolicies.Handle).Methods(http.MethodGet)

	// ============================================================
	// CLIENT ROUTES (требуют X-Client-ID header)
	// ============================================================

	client := api.PathPrefix("").Subrouter()
	client.Use(middleware.ClientAuth)

	// --- Запись на занятия ---
	client.HandleFunc("/sessions/{sessionId}/can-book", canBook.Handle).Methods(http.MethodPost)
	client.HandleFunc("/sessions/{sessionId}/bookings", createBooking.Handle).Methods(http.MethodPost)
	client.HandleFunc("/sessions/{sessionId}/limits", checkLimits.Handle).Methods(http.MethodGet)

	// --- Бронирования ---
	client.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	client.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)
	client.HandleFunc("/clients/{clientId}/bookings", getClientBookings.Handle).Methods(http.MethodGet)
	client.HandleFunc("/gyms/{gymId}/clients/{clientId}/penalties", getClientPenalties.Handle).Methods(http.MethodGet)

	// --- Лист ожидания ---
	client.HandleFunc("/sessions/{sessionId}/waitlist", joinWaitlist.Handle).Methods(http.MethodPost)
	client.HandleFunc("/waitlist/{entryId}", leaveWaitlist.Handle).Methods(http.MethodDelete)

	// ============================================================
	// STAFF ROUTES (требуют X-Staff-ID header)
	// ============================================================

	staff := api.PathPrefix("").Subrouter()
	staff.Use(middleware.StaffAuth)

	staff.HandleFunc("/bookings/{bookingId}/no-show", processNoShow.Handle).Methods(http.MethodPost)
	staff.HandleFunc("/waitlist/{entryId}/promote", promoteWaitlist.Handle).Methods(http.MethodPost)
	staff.HandleFunc("/gyms/{gymId}/policies", updateGymPolicy.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

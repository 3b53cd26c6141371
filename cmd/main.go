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
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	bookAppointmentHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/book_appointment"
	cancelAppointmentHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/cancel_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/get_available_slots"
	getAvailableStaffHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/get_available_staff"
	getSettingsHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/get_settings"
	listAppointmentsHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/list_appointments"
	recordPaymentHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/record_payment"
	setAppointmentStatusHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/set_appointment_status"
	updateSettingHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/update_setting"
	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/config"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/infra/events"
	appointmentRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/catalog"
	outboxRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/outbox"
	settingsRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/settings"
	staffRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/staff"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/paymentgateway"
	appointmentsService "github.com/m04kA/SMC-SalonBookingService/internal/service/appointments"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/cancellation"
	settingsService "github.com/m04kA/SMC-SalonBookingService/internal/service/settings"
	bookAppointmentUC "github.com/m04kA/SMC-SalonBookingService/internal/usecase/book_appointment"
	cancelAppointmentUC "github.com/m04kA/SMC-SalonBookingService/internal/usecase/cancel_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-SalonBookingService/internal/usecase/get_available_slots"
	getAvailableStaffUC "github.com/m04kA/SMC-SalonBookingService/internal/usecase/get_available_staff"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/metrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/tracing"
	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
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

	log.Info("Starting SMC-SalonBookingService...")
	log.Info("Configuration loaded from %s", configPath)

	location, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Invalid booking timezone %q: %v", cfg.Booking.Timezone, err)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Трассировка
	shutdownTracing, err := tracing.Setup(rootCtx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Metrics.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRatio:  cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to set up tracing: %v", err)
	}

	// Метрики (nil, если выключены; все методы безопасны для nil)
	var metricsCollector *metrics.Metrics
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

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(rootCtx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	staffRepository := staffRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)
	settingsRepository := settingsRepo.NewRepository(wrappedDB)
	outboxRepository := outboxRepo.NewRepository(wrappedDB)

	// Интеграции
	paymentClient := paymentgateway.NewClient(
		cfg.Payments.StripeSecretKey,
		time.Duration(cfg.Payments.Timeout)*time.Second,
		log,
	)
	if cfg.Payments.StripeSecretKey == "" {
		log.Warn("Payment gateway is not configured: refunds for online payments will fail")
	}

	// Сервисы
	settingsSvc := settingsService.NewService(settingsRepository, log)
	resolver := availability.NewResolver(
		catalogRepository,
		staffRepository,
		appointmentRepository,
		settingsSvc,
		availability.Options{
			Location:      location,
			HorizonMonths: cfg.Booking.HorizonMonths,
		},
		log,
	)
	appointmentsSvc := appointmentsService.NewService(
		appointmentRepository,
		staffRepository,
		outboxRepository,
		txMgr,
		log,
	)

	// Use cases
	bookAppointmentUseCase := bookAppointmentUC.NewUseCase(
		resolver,
		catalogRepository,
		appointmentRepository,
		outboxRepository,
		txMgr,
		metricsCollector,
		bookAppointmentUC.Options{AllowUnassignedBooking: cfg.Booking.AllowUnassignedBooking},
		log,
	)
	cancelAppointmentUseCase := cancelAppointmentUC.NewUseCase(
		appointmentRepository,
		outboxRepository,
		paymentClient,
		txMgr,
		cancellationPolicy(cfg.Booking),
		location,
		metricsCollector,
		log,
	)
	getAvailableStaffUseCase := getAvailableStaffUC.NewUseCase(resolver, log)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(resolver, log)

	// Handlers
	bookAppointment := bookAppointmentHandler.NewHandler(bookAppointmentUseCase, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(cancelAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentsSvc, log)
	setAppointmentStatus := setAppointmentStatusHandler.NewHandler(appointmentsSvc, log)
	recordPayment := recordPaymentHandler.NewHandler(appointmentsSvc, log)
	getAvailableStaff := getAvailableStaffHandler.NewHandler(getAvailableStaffUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getSettings := getSettingsHandler.NewHandler(settingsSvc, log)
	updateSetting := updateSettingHandler.NewHandler(settingsSvc, log)

	// Ограничение частоты записи и отмены
	var rateLimit mux.MiddlewareFunc = func(next http.Handler) http.Handler { return next }
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(rootCtx).Err(); err != nil {
			log.Warn("Redis is unreachable at %s: %v (fail_open=%v)", cfg.Redis.Addr, err, cfg.Redis.FailOpen)
		}
		limiter := middleware.NewRateLimiter(
			middleware.NewRedisCounter(redisClient),
			cfg.Redis.RateLimit,
			time.Duration(cfg.Redis.RateLimitWindow)*time.Second,
			"rl:appointments",
			cfg.Redis.FailOpen,
			log,
		)
		rateLimit = limiter.Middleware
		log.Info("Rate limit enabled: %d requests per %ds", cfg.Redis.RateLimit, cfg.Redis.RateLimitWindow)
	}

	// Публикация событий outbox
	publisherDone := make(chan struct{})
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		writer := events.NewKafkaWriter(cfg.Kafka.Brokers)
		defer writer.Close()

		publisher := events.NewPublisher(outboxRepository, txMgr, writer, metricsCollector, events.Config{
			Topic:        cfg.Kafka.Topic,
			PollInterval: time.Duration(cfg.Kafka.PollInterval) * time.Second,
			BatchSize:    cfg.Kafka.BatchSize,
		}, log)
		go func() {
			defer close(publisherDone)
			publisher.Run(rootCtx)
		}()
	} else {
		close(publisherDone)
		log.Warn("Kafka publisher disabled: events stay in the outbox table")
	}

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES
	// ============================================================

	api.HandleFunc("/services/{serviceId}/available-staff", getAvailableStaff.Handle).Methods(http.MethodGet)
	api.HandleFunc("/services/{serviceId}/slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/settings", getSettings.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (Bearer JWT)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(cfg.Auth.JWTSecret, log))

	// --- Записи ---
	protected.Handle("/appointments", rateLimit(http.HandlerFunc(bookAppointment.Handle))).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.Handle("/appointments/{appointmentId}/cancel",
		rateLimit(http.HandlerFunc(cancelAppointment.Handle))).Methods(http.MethodPost)
	protected.Handle("/appointments/{appointmentId}/status",
		middleware.RequireRoles(domain.RoleWorker, domain.RoleAdmin)(http.HandlerFunc(setAppointmentStatus.Handle))).
		Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/payment", recordPayment.Handle).Methods(http.MethodPost)

	// --- Настройки салона ---
	protected.Handle("/settings/{key}",
		middleware.RequireRoles(domain.RoleAdmin)(http.HandlerFunc(updateSetting.Handle))).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, "salon-booking-http"),
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

	<-rootCtx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	<-publisherDone
	close(stopMetricsCh)

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("Failed to close redis client: %v", err)
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// cancellationPolicy правила отмены с лимитом из конфигурации
func cancellationPolicy(cfg config.BookingConfig) cancellation.Policy {
	policy := cancellation.DefaultPolicy()
	policy.DailyLimit = cfg.DailyCancellationLimit
	return policy
}

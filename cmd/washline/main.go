package main

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/j-cartmel/washline/internal/booking"
	"github.com/j-cartmel/washline/internal/capacity"
	"github.com/j-cartmel/washline/internal/handlers"
	"github.com/j-cartmel/washline/internal/holiday"
	"github.com/j-cartmel/washline/internal/outbox"
	"github.com/j-cartmel/washline/internal/schedule"
	"github.com/j-cartmel/washline/internal/storage"
	"github.com/j-cartmel/washline/libs/config"
	"github.com/j-cartmel/washline/libs/db"
	"github.com/j-cartmel/washline/libs/httpx"
	"github.com/j-cartmel/washline/libs/kafkax"
	otelx "github.com/j-cartmel/washline/libs/otel"
	"github.com/j-cartmel/washline/libs/runtime"
)

func loadHours() (schedule.OperatingHours, error) {
	weekdayOpen, err := config.Hour("WEEKDAY_OPEN_HOUR", 8)
	if err != nil {
		return schedule.OperatingHours{}, err
	}
	weekdayClose, err := config.Hour("WEEKDAY_CLOSE_HOUR", 22)
	if err != nil {
		return schedule.OperatingHours{}, err
	}
	weekdayLastPickup, err := config.Hour("WEEKDAY_LAST_PICKUP_HOUR", 17)
	if err != nil {
		return schedule.OperatingHours{}, err
	}
	saturdayOpen, err := config.Hour("SATURDAY_OPEN_HOUR", 8)
	if err != nil {
		return schedule.OperatingHours{}, err
	}
	saturdayClose, err := config.Hour("SATURDAY_CLOSE_HOUR", 17)
	if err != nil {
		return schedule.OperatingHours{}, err
	}
	saturdayLastPickup, err := config.Hour("SATURDAY_LAST_PICKUP_HOUR", 14)
	if err != nil {
		return schedule.OperatingHours{}, err
	}
	hours := schedule.NewOperatingHours(
		schedule.DayHours{Open: weekdayOpen, Close: weekdayClose, LastPickup: weekdayLastPickup},
		schedule.DayHours{Open: saturdayOpen, Close: saturdayClose, LastPickup: saturdayLastPickup},
	)
	return hours, hours.Validate()
}

func main() {
	service := config.String("SERVICE_NAME", "washline")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	loc, err := time.LoadLocation(config.String("TIMEZONE", "Europe/London"))
	if err != nil {
		logger.Error("timezone load failed", "err", err)
		panic(err)
	}
	hours, err := loadHours()
	if err != nil {
		logger.Error("operating hours config invalid", "err", err)
		panic(err)
	}
	engine, err := schedule.NewEngine(hours, schedule.DefaultPolicy(loc), holiday.NewEnglandWales())
	if err != nil {
		logger.Error("schedule engine init failed", "err", err)
		panic(err)
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	ceiling, err := config.PositiveInt("SLOT_CEILING", 16)
	if err != nil {
		logger.Error("slot ceiling config invalid", "err", err)
		panic(err)
	}
	slotRepo := storage.NewSlotRepository(pool)
	tracker := capacity.NewTracker(slotRepo, ceiling, logger)
	svc := booking.NewService(engine, tracker)
	orderRepo := storage.NewOrderRepository(pool)
	outboxRepo := outbox.NewRepository()

	brokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   brokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	now := func() time.Time { return time.Now().In(loc) }
	slotsHandler := handlers.NewSlotsHandler(svc, logger, now)
	ordersHandler := handlers.NewOrdersHandler(svc, tracker, slotRepo, orderRepo, outboxRepo, logger, now)

	checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
	if brokers != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}
	mux := runtime.NewBaseMux(checks...)
	mux.HandleFunc("/api/v1/slots/pickup", slotsHandler.Pickup)
	mux.HandleFunc("/api/v1/slots/delivery", slotsHandler.Delivery)
	mux.HandleFunc("/api/v1/slots/availability", slotsHandler.Availability)
	mux.HandleFunc("/api/v1/orders", ordersHandler.Create)

	rateLimit, err := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		logger.Error("rate limit config invalid", "err", err)
		panic(err)
	}
	var limit httpx.Middleware
	if redisAddr := config.String("REDIS_ADDR", ""); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer func() { _ = rdb.Close() }()
		limit = httpx.NewRedisRateLimiter(rdb, rateLimit, time.Minute, service).
			Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
	} else {
		limit = httpx.NewRateLimiter(rateLimit, time.Minute).Middleware()
	}

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: config.List("ALLOWED_ORIGINS", "*"),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}),
		limit,
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(30*time.Second),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

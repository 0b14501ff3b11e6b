package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotelier/internal/api"
	"hotelier/internal/config"
	"hotelier/internal/database"
	"hotelier/internal/domain"
	"hotelier/internal/events"
	"hotelier/internal/google"
	"hotelier/internal/logging"
	"hotelier/internal/metrics"
	"hotelier/internal/models"
	"hotelier/internal/notify"
	"hotelier/internal/reference"
	"hotelier/internal/repository"
	"hotelier/internal/service"
	"hotelier/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedCatalog(ctx, cfg, db, &logger); err != nil {
		return err
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	cache := buildCache(redisClient, &logger)

	sheetsService := initGoogleSheets(ctx, cfg, &logger)

	eventBus := events.NewEventBus()
	initNotifier(cfg, eventBus, &logger)

	exporter := worker.NewXLSXExporter(cfg.Exports.Path, &logger)
	exportWorker := worker.NewExportWorker(db, exporter, sheetsService, redisClient, worker.RetryPolicy{}, &logger)
	go exportWorker.Start(ctx)

	backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
	go backup.Run(ctx)

	refGen, err := reference.NewGenerator(
		cfg.Booking.ReferenceAlphabet,
		cfg.Booking.ReferenceMinLength,
		cfg.Booking.ReferenceAttempts,
		db,
		&logger,
	)
	if err != nil {
		return fmt.Errorf("init reference generator: %w", err)
	}

	hotelService := service.NewHotelService(db, cache,
		time.Duration(cfg.Booking.AvailabilityTTL)*time.Second, &logger)
	customerService := service.NewCustomerService(db, &logger)
	bookingService := service.NewBookingService(
		db, hotelService, customerService, refGen,
		eventBus, exportWorker, cache, service.SystemClock{}, &logger)

	httpServer := api.NewHTTPServer(cfg.API, hotelService, bookingService, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// seedCatalog loads the hotels file and inserts it on an empty database.
// An already-populated database is left alone.
func seedCatalog(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) error {
	count, err := db.CountHotels(ctx)
	if err != nil {
		return fmt.Errorf("count hotels: %w", err)
	}
	if count > 0 {
		return nil
	}

	catalogPath := cfg.Catalog.Path
	if catalogPath == "" {
		catalogPath = "configs/hotels.yaml"
	}
	data, err := os.ReadFile(catalogPath)
	if err != nil {
		logger.Warn().Err(err).Str("catalog_path", catalogPath).Msg("no catalog file, starting with empty database")
		return nil
	}

	var catalog struct {
		Hotels []struct {
			Name    string `yaml:"name"`
			Address string `yaml:"address"`
			Phone   string `yaml:"phone"`
			Rooms   []struct {
				RoomNumber    int     `yaml:"room_number"`
				RoomType      string  `yaml:"room_type"`
				PricePerNight float64 `yaml:"price_per_night"`
				Capacity      int     `yaml:"capacity"`
			} `yaml:"rooms"`
		} `yaml:"hotels"`
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	for _, h := range catalog.Hotels {
		hotel := &models.Hotel{Name: h.Name, Address: h.Address, Phone: h.Phone}
		if err := db.CreateHotel(ctx, hotel); err != nil {
			return fmt.Errorf("seed hotel %s: %w", h.Name, err)
		}
		for _, r := range h.Rooms {
			room := &models.Room{
				HotelID:       hotel.ID,
				RoomType:      r.RoomType,
				RoomNumber:    r.RoomNumber,
				PricePerNight: r.PricePerNight,
				Capacity:      r.Capacity,
			}
			if err := db.CreateRoom(ctx, room); err != nil {
				return fmt.Errorf("seed room %d of %s: %w", r.RoomNumber, h.Name, err)
			}
		}
	}
	logger.Info().Int("hotels", len(catalog.Hotels)).Msg("catalog seeded")
	return nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func buildCache(redisClient *redis.Client, logger *zerolog.Logger) domain.AvailabilityCache {
	memory := repository.NewMemoryAvailabilityCache()
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisAvailabilityCache(redisClient)
	return repository.NewFailoverAvailabilityCache(primary, memory, logger)
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.SheetsWriter {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingsSpreadsheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.BookingsSpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}
	if err := sheetsService.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets unreachable, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

func initNotifier(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Notify.TelegramToken == "" || len(cfg.Notify.ManagerChats) == 0 {
		return
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Notify.TelegramToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}

	notifier := notify.NewManagerNotifier(botAPI, cfg.Notify.ManagerChats, logger)
	notifier.SubscribeTo(bus)
	logger.Info().Int("chats", len(cfg.Notify.ManagerChats)).Msg("manager notifications enabled")
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("booking API started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("booking API stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

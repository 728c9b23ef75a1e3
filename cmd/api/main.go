package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pichasafi/internal/adapter/repo"
	"pichasafi/internal/billing"
	"pichasafi/internal/bot"
	"pichasafi/internal/domain"
	"pichasafi/internal/http/handlers"
	httpapi "pichasafi/internal/http/httpapi"
	"pichasafi/internal/imagepipe"
	"pichasafi/internal/infra"
	"pichasafi/internal/infra/geoip"
	"pichasafi/internal/middleware"
	"pichasafi/internal/onboarding"
	"pichasafi/internal/storage"
	"pichasafi/internal/wa"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	users := repo.NewUserRepository(dbpool, cfg.FreeImageLimit)
	images := repo.NewGeneratedImageRepository(dbpool)

	blobs, staticDir, err := newBlobStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	msgr, err := wa.NewClient(wa.Options{
		AccessToken:   cfg.WhatsAppAccessToken,
		BaseURL:       cfg.GraphAPIBaseURL,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		Logger:        &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize whatsapp client")
	}

	billingSvc := billing.NewService(users)
	flow := onboarding.NewMachine(users, msgr, blobs, logger)
	enhancer := imagepipe.NewProcessor(&logger)
	dispatcher := bot.New(users, images, blobs, msgr, enhancer, billingSvc, flow, logger)

	app := handlers.NewApp(dispatcher, cfg.WhatsAppVerifyToken, logger)

	router := httpapi.NewRouter(app, logger, httpapi.Options{
		Country:   countryLookup(cfg, logger),
		StaticDir: staticDir,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("webhook listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// newBlobStore picks the configured storage backend. The returned directory
// is non-empty only for the filesystem driver, which needs the router to
// serve its files.
func newBlobStore(cfg *infra.Config) (domain.BlobStore, string, error) {
	switch cfg.StorageDriver {
	case infra.StorageDriverSupabase:
		store, err := storage.NewSupabaseStore(storage.SupabaseOptions{
			BaseURL:    cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseServiceKey,
			Bucket:     cfg.SupabaseBucket,
		})
		return store, "", err
	default:
		store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		return store, cfg.StoragePath, err
	}
}

func countryLookup(cfg *infra.Config, logger infra.Logger) middleware.CountryLookup {
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
		return nil
	}
	if resolver == nil {
		return nil
	}
	return resolver.CountryCode
}

package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage driver names accepted by STORAGE_DRIVER.
const (
	StorageDriverFilesystem = "filesystem"
	StorageDriverSupabase   = "supabase"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	// WhatsApp Cloud API
	WhatsAppVerifyToken   string
	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	GraphAPIBaseURL       string

	// Blob storage
	StorageDriver      string
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string
	StoragePath        string
	StorageBaseURL     string

	FreeImageLimit int
	GeoIPDBPath    string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		WhatsAppVerifyToken:   strings.TrimSpace(os.Getenv("WHATSAPP_VERIFY_TOKEN")),
		WhatsAppAccessToken:   strings.TrimSpace(os.Getenv("WHATSAPP_ACCESS_TOKEN")),
		WhatsAppPhoneNumberID: strings.TrimSpace(os.Getenv("WHATSAPP_PHONE_NUMBER_ID")),
		GraphAPIBaseURL:       strings.TrimRight(getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v21.0"), "/"),

		StorageDriver:      getEnv("STORAGE_DRIVER", StorageDriverFilesystem),
		SupabaseURL:        strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseServiceKey: strings.TrimSpace(os.Getenv("SUPABASE_SERVICE_KEY")),
		SupabaseBucket:     getEnv("SUPABASE_BUCKET", "pichasafi"),
		StoragePath:        getEnv("STORAGE_PATH", "./data/storage"),
		StorageBaseURL:     getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),

		FreeImageLimit: getEnvInt("FREE_IMAGE_LIMIT", 3),
		GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.WhatsAppVerifyToken == "" {
		return nil, fmt.Errorf("WHATSAPP_VERIFY_TOKEN is required")
	}
	if cfg.WhatsAppAccessToken == "" {
		return nil, fmt.Errorf("WHATSAPP_ACCESS_TOKEN is required")
	}
	if cfg.WhatsAppPhoneNumberID == "" {
		return nil, fmt.Errorf("WHATSAPP_PHONE_NUMBER_ID is required")
	}

	switch cfg.StorageDriver {
	case StorageDriverFilesystem:
	case StorageDriverSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required when STORAGE_DRIVER=supabase")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.FreeImageLimit <= 0 {
		return nil, fmt.Errorf("FREE_IMAGE_LIMIT must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
)

// Config is the runtime configuration of the promotions host, read from the
// environment after LoadEnv.
type Config struct {
	Env            string
	Port           string
	DocumentStore  string
	DatabaseURL    string
	ProjectID      string
	StorageBucket  string
	Credentials    string
	JWTSecret      string
	AllowedOrigins []string

	PromotionsCollection string
	UsersCollection      string
	StoragePrefix        string

	Platform      string
	ExportDir     string
	CacheDir      string
	CacheMaxAge   time.Duration
	FetchTimeout  time.Duration
	ShareMessage  string
	ShareTitle    string
	AlbumName     string
	FilePrefix    string
	DownloadName  string
	SessionCache  string
	ViewerIdle    time.Duration
	AdminUsername string
	AdminPassword string
}

func LoadEnv() error {
	// Try to load .env file if it exists (for local development)
	err := godotenv.Load()
	if err != nil {
		// .env file not found is not an error - variables may come from the process environment
		return nil
	}
	return nil
}

// Load builds a Config from the current environment.
func Load() Config {
	return Config{
		Env:            GetEnv("APP_ENV", "development"),
		Port:           GetEnv("PORT", "8080"),
		DocumentStore:  strings.ToLower(GetEnv("DOCUMENT_STORE", StoreFirestore)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ProjectID:      os.Getenv("FIREBASE_PROJECT_ID"),
		StorageBucket:  os.Getenv("FIREBASE_STORAGE_BUCKET"),
		Credentials:    os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: splitList(os.Getenv("FRONTEND_URL")),

		PromotionsCollection: GetEnv("PROMOTIONS_COLLECTION", "promociones"),
		UsersCollection:      GetEnv("USERS_COLLECTION", "usuarios"),
		StoragePrefix:        GetEnv("PROMOTIONS_STORAGE_PREFIX", "promociones"),

		Platform:      strings.ToLower(GetEnv("PLATFORM", "web")),
		ExportDir:     GetEnv("EXPORT_DIR", "./exports"),
		CacheDir:      GetEnv("CACHE_DIR", os.TempDir()),
		CacheMaxAge:   GetDuration("CACHE_MAX_AGE", 24*time.Hour),
		FetchTimeout:  GetDuration("FETCH_TIMEOUT", 30*time.Second),
		ShareMessage:  GetEnv("SHARE_MESSAGE", "Encontré esta súper promoción de Macroviajes, para más información escríbenos al https://wa.me/+573016814323"),
		ShareTitle:    GetEnv("SHARE_DIALOG_TITLE", "Compartir promoción"),
		AlbumName:     GetEnv("ALBUM_NAME", "Macroviajes"),
		FilePrefix:    GetEnv("FILE_PREFIX", "macroviajes"),
		DownloadName:  GetEnv("DOWNLOAD_NAME", "promocion_macroviajes.jpg"),
		SessionCache:  GetEnv("SESSION_CACHE_PATH", ".promoshow_user.json"),
		ViewerIdle:    GetDuration("VIEWER_IDLE_TIMEOUT", 30*time.Minute),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// ValidateEnv checks that critical settings are present for the selected
// document store. Missing optional settings are only logged.
func ValidateEnv(cfg Config, logger *zap.Logger) error {
	var missing []string

	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	switch cfg.DocumentStore {
	case StoreFirestore:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown DOCUMENT_STORE %q; expected %q or %q", cfg.DocumentStore, StoreFirestore, StorePostgres)
	}
	if cfg.StorageBucket == "" {
		missing = append(missing, "FIREBASE_STORAGE_BUCKET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Credentials == "" {
		logger.Warn("GOOGLE_APPLICATION_CREDENTIALS not set - using default credentials")
	}
	if len(cfg.AllowedOrigins) == 0 {
		logger.Warn("FRONTEND_URL not set - CORS defaults to http://localhost:3000")
	}
	if cfg.AdminUsername == "" && cfg.DocumentStore == StorePostgres {
		logger.Warn("ADMIN_USERNAME not set - no default admin will be seeded")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDuration parses a Go duration ("90s") or a bare number of seconds.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

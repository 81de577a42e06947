package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	// OutputDir is the flat directory all compressed artifacts are written to.
	// PublicBasePath is the URL prefix the directory is mounted under.
	OutputDir      string
	PublicBasePath string
	MaxUploadBytes int64

	CloudinaryCloudName   string
	CloudinaryAPIKey      string
	CloudinaryAPISecret   string
	CloudinaryUploadBase  string
	CloudinaryDeliveryURL string
	CloudRequestTimeout   time.Duration

	ProxyAllowedHosts []string
	AllowedOrigins    []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		Port:                  getEnv("PORT", "8080"),
		OutputDir:             getEnv("OUTPUT_DIR", "./data/compressed"),
		PublicBasePath:        getEnv("PUBLIC_BASE_PATH", "/static"),
		MaxUploadBytes:        int64(getEnvInt("MAX_UPLOAD_MB", 50)) << 20,
		CloudinaryCloudName:   os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:      os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:   os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadBase:  getEnv("CLOUDINARY_UPLOAD_BASE", "https://api.cloudinary.com/v1_1"),
		CloudinaryDeliveryURL: getEnv("CLOUDINARY_DELIVERY_BASE", "https://res.cloudinary.com"),
		CloudRequestTimeout:   time.Second * time.Duration(getEnvInt("CLOUD_REQUEST_TIMEOUT_SECONDS", 45)),
		ProxyAllowedHosts:     splitList(getEnv("PROXY_ALLOWED_HOSTS", "res.cloudinary.com")),
		AllowedOrigins:        splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		HTTPReadTimeout:       time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 60)),
		HTTPWriteTimeout:      time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:       time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:       getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}
	return cfg, nil
}

// CloudConfigured reports whether a full cloud credential set is present.
func (c *Config) CloudConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
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

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/worksheetlab/worksheet-service/internal/store"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Parser ParserConfig
	Events EventConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

// StoreConfig selects and parameterizes the session store backend.
type StoreConfig struct {
	Backend    string // redis or memory
	RedisURL   string
	SessionTTL time.Duration
}

// ParserConfig points at the remote worksheet parsing service.
type ParserConfig struct {
	BaseURL      string
	ImagePath    string
	PDFEndpoints []string
	PDFTimeout   time.Duration
}

const (
	// PDF parsing runs under a deadline in this band; values outside it
	// are clamped.
	minPDFTimeout = 20 * time.Second
	maxPDFTimeout = 25 * time.Second

	defaultSessionTTL = 24 * time.Hour
)

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; the process environment may carry
	// everything.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", defaultSessionTTL.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	pdfTimeout, err := time.ParseDuration(getEnv("PARSER_PDF_TIMEOUT", maxPDFTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid PARSER_PDF_TIMEOUT: %w", err)
	}
	if pdfTimeout < minPDFTimeout {
		pdfTimeout = minPDFTimeout
	}
	if pdfTimeout > maxPDFTimeout {
		pdfTimeout = maxPDFTimeout
	}

	parserBaseURL := getEnv("PARSER_BASE_URL", "http://localhost:8081")

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Store: StoreConfig{
			Backend:    getEnv("SESSION_STORE", "memory"),
			RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionTTL: sessionTTL,
		},
		Parser: ParserConfig{
			BaseURL:      parserBaseURL,
			ImagePath:    getEnv("PARSER_IMAGE_PATH", "/parse/image"),
			PDFEndpoints: splitList(getEnv("PARSER_PDF_ENDPOINTS", parserBaseURL+"/parse/pdf")),
			PDFTimeout:   pdfTimeout,
		},
		Events: EventConfig{
			Enabled:      getEnv("EVENTS_ENABLED", "false") == "true",
			Publisher:    getEnv("EVENTS_PUBLISHER", "kafka"),
			KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
			Topic:        getEnv("WORKSHEET_EVENTS_TOPIC", "worksheet_sessions"),
		},
	}, nil
}

// ImageEndpoint is the full URL worksheet images are posted to.
func (c *ParserConfig) ImageEndpoint() string {
	return c.BaseURL + c.ImagePath
}

// CreateSessionStore builds the configured session store backend.
func (c *StoreConfig) CreateSessionStore(logger *slog.Logger) (store.SessionStore, error) {
	switch c.Backend {
	case "redis":
		logger.Info("Creating Redis session store", "session_ttl", c.SessionTTL.String())
		return store.NewRedisSessionStore(c.RedisURL, c.SessionTTL)
	case "memory":
		logger.Info("Creating in-memory session store", "session_ttl", c.SessionTTL.String())
		return store.NewMemorySessionStore(c.SessionTTL), nil
	default:
		logger.Warn("Unknown session store backend, falling back to memory", "backend", c.Backend)
		return store.NewMemorySessionStore(c.SessionTTL), nil
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

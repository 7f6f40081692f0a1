package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	PostgresURL string
	Redis       RedisConfig

	OCR OCRConfig

	KafkaBrokers []string
	AuditTopic   string
}

// RedisConfig holds connection tuning for the guest-list store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// OCRConfig points at the external text-extraction service.
type OCRConfig struct {
	BaseURL string
	Timeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean. A local .env file is loaded first when present.
func FromEnv() Server {
	_ = godotenv.Load()

	addr := os.Getenv("ESCANA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	ocrTimeout := 15 * time.Second
	if raw := os.Getenv("OCR_TIMEOUT"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			ocrTimeout = parsed
		}
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, broker := range strings.Split(raw, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				brokers = append(brokers, broker)
			}
		}
	}

	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "escana.audit"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		PostgresURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		OCR: OCRConfig{
			BaseURL: os.Getenv("OCR_BASE_URL"),
			Timeout: ocrTimeout,
		},
		KafkaBrokers: brokers,
		AuditTopic:   auditTopic,
	}
}

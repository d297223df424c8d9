package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Server captures process level configuration.
type Server struct {
	Addr              string
	Env               string
	JWTSigningKey     string
	SessionCookieName string
	SessionTTL        time.Duration
	BcryptCost        int
	PostgresDSN       string
	Redis             RedisConfig
	Kafka             KafkaConfig
	S3                S3Config
}

// RedisConfig holds connection settings for the presence store. An empty URL
// means Redis is not configured and the in-memory fallback is used.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the audit sink settings. Empty brokers disable the sink.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// S3Config holds the asset host settings. An empty bucket means profile and
// message images are kept in the in-memory asset store.
type S3Config struct {
	Bucket string
	Region string
	Prefix string
}

// Development reports whether the process runs in local development mode,
// which relaxes the Secure flag on the session cookie.
func (s Server) Development() bool {
	return s.Env == "development"
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CHIRP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := os.Getenv("CHIRP_ENV")
	if env == "" {
		env = "development"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - must be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	cookieName := os.Getenv("SESSION_COOKIE_NAME")
	if cookieName == "" {
		cookieName = "chirp_session"
	}

	sessionTTL := 7 * 24 * time.Hour
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			sessionTTL = d
		}
	}

	bcryptCost := bcrypt.DefaultCost
	if raw := os.Getenv("BCRYPT_COST"); raw != "" {
		if c, err := strconv.Atoi(raw); err == nil && c >= bcrypt.MinCost && c <= bcrypt.MaxCost {
			bcryptCost = c
		}
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	auditTopic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "chirp.audit"
	}

	return Server{
		Addr:              addr,
		Env:               env,
		JWTSigningKey:     jwtSigningKey,
		SessionCookieName: cookieName,
		SessionTTL:        sessionTTL,
		BcryptCost:        bcryptCost,
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:    brokers,
			AuditTopic: auditTopic,
		},
		S3: S3Config{
			Bucket: os.Getenv("S3_BUCKET"),
			Region: os.Getenv("S3_REGION"),
			Prefix: "uploads/",
		},
	}
}

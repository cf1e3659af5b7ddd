package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Credentials CredentialConfig
	Admission   AdmissionConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr    string
	Enabled bool
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	TicketEvents string
	OpsEvents    string
}

// CredentialConfig carries the action secrets. AdminReset and MenuUpdate
// fall back to Admin when unset; an action with neither configured is
// blocked.
type CredentialConfig struct {
	AdminReset string
	MenuUpdate string
	Admin      string
}

type AdmissionConfig struct {
	// PartialEntryCategories may record fewer confirmed visitors than a
	// ticket admits.
	PartialEntryCategories []string
	CacheTTL               time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:          getEnv("MYSQL_DSN", ""),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 30)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:    getEnv("REDIS_ADDR", "localhost:6379"),
			Enabled: getEnvBool("REDIS_ENABLED", true),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Topics: TopicConfig{
				TicketEvents: getEnv("KAFKA_TOPIC_TICKETS", "ticket-events"),
				OpsEvents:    getEnv("KAFKA_TOPIC_OPS", "admission-ops"),
			},
		},
		Credentials: CredentialConfig{
			AdminReset: getEnv("ADMIN_RESET_PASSWORD", ""),
			MenuUpdate: getEnv("MENU_UPDATE_PASSWORD", ""),
			Admin:      getEnv("ADMIN_PASSWORD", ""),
		},
		Admission: AdmissionConfig{
			PartialEntryCategories: getEnvList("PARTIAL_ENTRY_CATEGORIES", "FAMILY SILVER,FAMILY BRONZE"),
			CacheTTL:               time.Duration(getEnvInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

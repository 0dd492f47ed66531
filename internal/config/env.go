package config

import (
	"os"
	"strconv"
	"time"
)

func Load() *Config {
	return &Config{
		Service: &ServiceConfig{
			Name: getEnv("SERVICE_NAME", "chat-app"),
			Env:  getEnv("SERVICE_ENV", "development"),
			Addr: getEnv("SERVICE_ADDR", ":8080"),
		},
		Redis: &RedisConfig{
			URL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			DialTimeout:   getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:   getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:  getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:      getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns:  getEnvInt("REDIS_MIN_IDLE", 2),
			PingTimeout:   getEnvDuration("REDIS_PING_TIMEOUT", 2*time.Second),
			OutcomeStream: getEnv("REDIS_OUTCOME_STREAM", "outcomes"),
			ConsumerGroup: getEnv("REDIS_OUTCOME_GROUP", "outcome-workers"),
		},
		Keepalive: &KeepaliveConfig{
			ProbeInterval:   getEnvDuration("KEEPALIVE_INTERVAL", 25*time.Second),
			LivenessTimeout: getEnvDuration("KEEPALIVE_TIMEOUT", 60*time.Second),
			MaxMissedAcks:   getEnvInt("KEEPALIVE_MAX_MISSED", 2),
			WriteTimeout:    getEnvDuration("WS_WRITE_TIMEOUT", 10*time.Second),
			ReadLimit:       int64(getEnvInt("WS_READ_LIMIT", 512*1024)),
			SendBuffer:      getEnvInt("WS_SEND_BUFFER", 256),
		},
		Logger: &LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "INFO"),
			Format: getEnv("LOG_FORMAT", "JSON"),
		},
		Tracer: &TracerConfig{
			Address: getEnv("OTLP_ADDR", "localhost:4317"),
			Enabled: getEnv("OTLP_ENABLED", "false") == "true",
		},
		SecretToken: getEnv("JWT_SECRET", ""),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

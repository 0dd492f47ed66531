package config

import "time"

type Config struct {
	Service     *ServiceConfig
	Redis       *RedisConfig
	Keepalive   *KeepaliveConfig
	Logger      *LoggerConfig
	Tracer      *TracerConfig
	SecretToken string
}

type ServiceConfig struct {
	Name string
	Env  string
	Addr string
}

type RedisConfig struct {
	URL           string
	DialTimeout   time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	PoolSize      int
	MinIdleConns  int
	PingTimeout   time.Duration
	OutcomeStream string
	ConsumerGroup string
}

type KeepaliveConfig struct {
	// ProbeInterval is how often a keepalive probe is emitted.
	ProbeInterval time.Duration
	// LivenessTimeout closes a connection with no inbound activity.
	LivenessTimeout time.Duration
	// MaxMissedAcks consecutive unanswered probes force Closing.
	MaxMissedAcks int
	// WriteTimeout bounds a single transport write.
	WriteTimeout time.Duration
	// ReadLimit caps one inbound frame, in bytes.
	ReadLimit int64
	// SendBuffer is the per-connection outbound queue depth.
	SendBuffer int
}

type LoggerConfig struct {
	Level  string
	Format string
}

type TracerConfig struct {
	Address string
	Enabled bool
}

package config

import (
	"flag"
	"os"
)

type Config struct {
	// Admin shared secret for call-next. Compared by exact match
	// against the X-API-Key header. Suitable for small trusted
	// deployments only.
	AdminAPIKey string

	// Port the http server listens on.
	ServerPort string

	// Optional. Empty means no redis, stats publishing disabled.
	RedisHost string
	RedisDB   string

	// Optional. Empty means the in-memory store is used.
	PostgresDSN string

	NotifyBufferSize            *int
	SendBufferSize              *int
	PingIntervalSeconds         *int
	PublishStatsIntervalSeconds *int
}

var CFG = &Config{
	NotifyBufferSize:            flag.Int("notify-buffer-size", 1024, "Buffer size of the queue change notification channel. Notifications beyond the buffer are dropped, subscribers catch up on the next change."),
	SendBufferSize:              flag.Int("send-buffer-size", 64, "Buffer size of each websocket subscriber's outbound channel. A subscriber with a full buffer is assumed dead and removed."),
	PingIntervalSeconds:         flag.Int("ping-interval-seconds", 30, "Send pings to websocket peer with this interval."),
	PublishStatsIntervalSeconds: flag.Int("publish-stats-interval-seconds", 15, "Interval to publish per-service waiting counts to metrics and redis."),
}

func ProvideConfig() *Config {
	cfg := CFG
	cfg.AdminAPIKey = os.Getenv("ADMIN_API_KEY")
	cfg.ServerPort = os.Getenv("SERVER_PORT")
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8000"
	}
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisDB = os.Getenv("REDIS_DB")
	cfg.PostgresDSN = os.Getenv("POSTGRES_DSN")
	return cfg
}

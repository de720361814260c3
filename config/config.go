package config

type AppConfig struct {
	APIPort string `env:"PORT" envDefault:"8080"`
	// BulkSendDelayMs is the default pause between recipients in a bulk
	// campaign when the request does not set one.
	BulkSendDelayMs int `env:"BULK_SEND_DELAY_MS" envDefault:"1000"`
}

type AuthConfig struct {
	JWTSecret        string `env:"JWT_SECRET,required"`
	TokenExpiryHours int    `env:"JWT_EXPIRY_HOURS" envDefault:"24"`
}

type DatabaseConfig struct {
	Host            string `env:"POSTGRES_HOST,required"`
	Port            string `env:"POSTGRES_PORT,required"`
	User            string `env:"POSTGRES_USER,required"`
	DBName          string `env:"POSTGRES_DB_NAME,required"`
	Password        string `env:"POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"POSTGRES_SSL_MODE" envDefault:"require"`
}

// RateLimitConfig holds the two admission-control tiers: a general one
// for the whole API and a stricter one for the send endpoints, which are
// the ones that can get an account banned upstream.
type RateLimitConfig struct {
	APIRequests      int `env:"RATE_LIMIT_API_REQUESTS" envDefault:"100"`
	APIWindowMinutes int `env:"RATE_LIMIT_API_WINDOW_MINUTES" envDefault:"15"`

	SendRequests      int `env:"RATE_LIMIT_SEND_REQUESTS" envDefault:"10"`
	SendWindowMinutes int `env:"RATE_LIMIT_SEND_WINDOW_MINUTES" envDefault:"1"`
}

type CronConfig struct {
	HeartbeatSchedule string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// ReconcilePendingSchedule closes out ledger rows stuck in pending,
	// usually because the process died between dispatch and finalize.
	ReconcilePendingSchedule string `env:"CRON_SCHEDULE_RECONCILE_PENDING" envDefault:"0 */10 * * * *"`
	StalePendingMinutes      int    `env:"STALE_PENDING_MINUTES" envDefault:"30"`
}

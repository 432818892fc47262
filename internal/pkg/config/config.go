package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, thresholds, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	Notify    NotifyConfig
	SMS       SMSConfig
	Push      PushConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

// NotifyConfig tunes the notification job queue and the reservation
// storage-policy engine.
type NotifyConfig struct {
	MaxAttempts       int32         `envconfig:"NOTIFY_MAX_ATTEMPTS" default:"5"`
	BackoffBase       time.Duration `envconfig:"NOTIFY_BACKOFF_BASE" default:"30s"`
	BackoffCap        time.Duration `envconfig:"NOTIFY_BACKOFF_CAP" default:"2h"`
	BatchLimit        int32         `envconfig:"NOTIFY_BATCH_LIMIT" default:"100"`
	ReminderFirst     time.Duration `envconfig:"NOTIFY_REMINDER_FIRST" default:"72h"`
	ReminderSecond    time.Duration `envconfig:"NOTIFY_REMINDER_SECOND" default:"120h"`
	ReminderFinal     time.Duration `envconfig:"NOTIFY_REMINDER_FINAL" default:"168h"`
	StoredAfter       time.Duration `envconfig:"NOTIFY_STORED_AFTER" default:"192h"`
	FollowUpInitial   time.Duration `envconfig:"NOTIFY_FOLLOWUP_INITIAL" default:"12h"`
	FollowUpInterval  time.Duration `envconfig:"NOTIFY_FOLLOWUP_INTERVAL" default:"24h"`
	FollowUpMax       int           `envconfig:"NOTIFY_FOLLOWUP_MAX" default:"14"`
	JobRetention      time.Duration `envconfig:"NOTIFY_JOB_RETENTION" default:"720h"`
	DeadLetterKeep    time.Duration `envconfig:"NOTIFY_DEAD_LETTER_RETENTION" default:"2160h"`
	ImmediateTimeout  time.Duration `envconfig:"NOTIFY_IMMEDIATE_TIMEOUT" default:"30s"`
	MaxDeviceTokens   int32         `envconfig:"NOTIFY_MAX_DEVICE_TOKENS" default:"20"`
	NoticeHistorySize int           `envconfig:"NOTIFY_NOTICE_HISTORY_SIZE" default:"60"`
}

type SMSConfig struct {
	BaseURL    string        `envconfig:"SMS_BASE_URL" required:"true"`
	From       string        `envconfig:"SMS_FROM" required:"true"`
	AuthToken  string        `envconfig:"SMS_AUTH_TOKEN" required:"true"`
	Timeout    time.Duration `envconfig:"SMS_TIMEOUT" default:"10s"`
	RatePerSec float64       `envconfig:"SMS_RATE_PER_SEC" default:"5"`
	Burst      int           `envconfig:"SMS_BURST" default:"5"`
}

type PushConfig struct {
	RelayURL   string        `envconfig:"PUSH_RELAY_URL" required:"true"`
	AuthToken  string        `envconfig:"PUSH_AUTH_TOKEN" required:"true"`
	Timeout    time.Duration `envconfig:"PUSH_TIMEOUT" default:"10s"`
	RatePerSec float64       `envconfig:"PUSH_RATE_PER_SEC" default:"20"`
	Burst      int           `envconfig:"PUSH_BURST" default:"20"`
}

type SchedulerConfig struct {
	JobPumpSpec   string        `envconfig:"SCHEDULER_JOB_PUMP_SPEC" default:"* * * * *"`
	SweepSpec     string        `envconfig:"SCHEDULER_SWEEP_SPEC" default:"0 * * * *"`
	RetentionSpec string        `envconfig:"SCHEDULER_RETENTION_SPEC" default:"30 3 * * *"`
	RunTimeout    time.Duration `envconfig:"SCHEDULER_RUN_TIMEOUT" default:"5m"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		Notify: NotifyConfig{
			MaxAttempts:       5,
			BackoffBase:       30 * time.Second,
			BackoffCap:        2 * time.Hour,
			BatchLimit:        100,
			ReminderFirst:     72 * time.Hour,
			ReminderSecond:    120 * time.Hour,
			ReminderFinal:     168 * time.Hour,
			StoredAfter:       192 * time.Hour,
			FollowUpInitial:   12 * time.Hour,
			FollowUpInterval:  24 * time.Hour,
			FollowUpMax:       14,
			JobRetention:      720 * time.Hour,
			DeadLetterKeep:    2160 * time.Hour,
			ImmediateTimeout:  30 * time.Second,
			MaxDeviceTokens:   20,
			NoticeHistorySize: 60,
		},
		SMS: SMSConfig{
			BaseURL:    "http://localhost:4010",
			From:       "+15005550006",
			AuthToken:  "test",
			Timeout:    time.Second,
			RatePerSec: 100,
			Burst:      100,
		},
		Push: PushConfig{
			RelayURL:   "http://localhost:4011",
			AuthToken:  "test",
			Timeout:    time.Second,
			RatePerSec: 100,
			Burst:      100,
		},
		Scheduler: SchedulerConfig{
			JobPumpSpec:   "* * * * *",
			SweepSpec:     "0 * * * *",
			RetentionSpec: "30 3 * * *",
			RunTimeout:    time.Minute,
		},
	}
}

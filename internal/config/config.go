package config

import "time"

// Config is the root application configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Source   SourceConfig   `yaml:"source"`
	Database DatabaseConfig `yaml:"database"`
	Watcher  WatcherConfig  `yaml:"watcher"`
	Extract  ExtractConfig  `yaml:"extract"`
	Log      LogConfig      `yaml:"log"`
	TimeZone string         `yaml:"tz" env:"TZ" env-default:"Europe/Moscow"`
}

// TelegramConfig holds bot credentials.
type TelegramConfig struct {
	Token          string `yaml:"token"            env:"TELEGRAM_TOKEN"`
	AdminID        int64  `yaml:"admin_id"         env:"ADMIN_ID"`
	NewsChannelURL string `yaml:"news_channel_url" env:"NEWS_CHANNEL_URL" env-default:"https://t.me/"`
	Debug          bool   `yaml:"debug"            env:"TELEGRAM_DEBUG"   env-default:"false"`
}

// SourceConfig holds where timetables are published and how they are fetched.
type SourceConfig struct {
	PageURL          string        `yaml:"page_url"          env:"PAGE_URL"          env-default:"https://pokrovsky.gosuslugi.ru/glavnoe/raspisanie/"`
	Section          int           `yaml:"section"           env:"SOURCE_SECTION"    env-default:"1"`
	UserAgent        string        `yaml:"user_agent"        env:"USER_AGENT"        env-default:"ScheduleBot/1.0"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"     env:"FETCH_TIMEOUT"     env-default:"30s"`
	ProbeParallelism int           `yaml:"probe_parallelism" env:"PROBE_PARALLELISM" env-default:"6"`
	GoogleAPIKey     string        `yaml:"google_api_key"    env:"GOOGLE_API_KEY"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// WatcherConfig controls the background change watcher.
type WatcherConfig struct {
	Enabled     bool          `yaml:"enabled"      env:"WATCH_ENABLED"      env-default:"true"`
	MinInterval time.Duration `yaml:"min_interval" env:"WATCH_MIN_INTERVAL" env-default:"5m"`
	MaxInterval time.Duration `yaml:"max_interval" env:"WATCH_MAX_INTERVAL" env-default:"10m"`
}

// ExtractConfig selects the sheet layout dialect.
type ExtractConfig struct {
	Dialect string `yaml:"dialect" env:"EXTRACT_DIALECT" env-default:"fallback"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Location resolves TimeZone, falling back to a fixed UTC+3 zone when the
// tz database is unavailable.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Asia/Taipei"

	configPathEnv     = "RENT_SCANNER_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	chromeBinEnv      = "CHROME_BIN"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	State         StateConfig        `yaml:"state"`
	Browser       BrowserConfig      `yaml:"browser"`
	Search        SearchConfig       `yaml:"search"`
	Filters       FilterConfig       `yaml:"filters"`
	Notify        NotifyConfig       `yaml:"notify"`
}

// LoggingConfig selects the console log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the optional Postgres archive. An empty DSN
// disables archiving entirely.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines whether the scanner loops on its own or runs
// once under an external scheduler (cron, CI).
type SchedulerConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Interval string         `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Every resolves the loop interval; malformed values fall back to 30m.
func (s SchedulerConfig) Every() time.Duration {
	if d, err := time.ParseDuration(s.Interval); err == nil && d > 0 {
		return d
	}
	return 30 * time.Minute
}

// Location resolves the configured timezone to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// StateConfig locates the persisted run state.
type StateConfig struct {
	SeenFile    string `yaml:"seenFile"`
	PendingFile string `yaml:"pendingFile"`
	LockFile    string `yaml:"lockFile"`
	SeenCap     int    `yaml:"seenCap"`
}

// BrowserConfig tunes the headless browser rendering list pages.
type BrowserConfig struct {
	ChromeBin      string `yaml:"chromeBin"`
	UserAgent      string `yaml:"userAgent"`
	Headless       *bool  `yaml:"headless"`
	PageTimeoutSec int    `yaml:"pageTimeoutSec"`
}

// HeadlessMode defaults to true when unset.
func (b BrowserConfig) HeadlessMode() bool {
	return b.Headless == nil || *b.Headless
}

// PageTimeout resolves the per-page render timeout.
func (b BrowserConfig) PageTimeout() time.Duration {
	if b.PageTimeoutSec > 0 {
		return time.Duration(b.PageTimeoutSec) * time.Second
	}
	return 30 * time.Second
}

// SearchConfig groups the shared query parameters with the concrete
// region/section targets.
type SearchConfig struct {
	Scanner     string            `yaml:"scanner"`
	Concurrency int               `yaml:"concurrency"`
	Params      map[string]string `yaml:"params"`
	Configs     []SearchTarget    `yaml:"configs"`
}

// SearchTarget is one named region/section tuple to query.
type SearchTarget struct {
	Label   string            `yaml:"label"`
	Region  int               `yaml:"region"`
	Section string            `yaml:"section"`
	Scanner string            `yaml:"scanner"`
	Options map[string]string `yaml:"options"`
}

// FilterConfig holds the post-fetch rejection rules.
type FilterConfig struct {
	MinArea            float64  `yaml:"minArea"`
	MaxFloorNoElevator int      `yaml:"maxFloorNoElevator"`
	OpenPlanMarkers    []string `yaml:"openPlanMarkers"`
	MaxRent            int      `yaml:"maxRent"`
}

// NotifyConfig bounds message volume per run.
type NotifyConfig struct {
	Cap            int `yaml:"cap"`
	SendIntervalMs int `yaml:"sendIntervalMs"`
}

// SendInterval resolves the pacing between remote sends.
func (n NotifyConfig) SendInterval() time.Duration {
	if n.SendIntervalMs > 0 {
		return time.Duration(n.SendIntervalMs) * time.Millisecond
	}
	return 1100 * time.Millisecond
}

// Load reads YAML configuration (if present) over compiled defaults
// and applies environment overrides. A .env file is honored first so
// local runs match the CI secret layout.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("config: loaded .env")
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Search.Configs) == 0 {
		cfg.Search.Configs = defaultConfig().Search.Configs
	}
	if len(cfg.Search.Params) == 0 {
		cfg.Search.Params = defaultConfig().Search.Params
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(chromeBinEnv); v != "" {
		c.Browser.ChromeBin = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	loc, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Interval: "30m",
			Timezone: defaultTimezone,
			location: loc,
		},
		State: StateConfig{
			SeenFile:    "seen_ids.json",
			PendingFile: "pending_listings.json",
			LockFile:    ".rentscanner.lock",
			SeenCap:     5000,
		},
		Search: SearchConfig{
			Scanner:     "rent591",
			Concurrency: 1,
			Params: map[string]string{
				"kind":      "1",
				"layout":    "2,3,4",
				"rentprice": "0,30000",
				"area":      "10,50",
				"other":     "not_cover,near_subway,cook",
				"option":    "cold,washer,icebox",
				"order":     "posttime",
				"orderType": "desc",
			},
			Configs: []SearchTarget{
				{
					Label:   "台北市（排除內湖/北投）",
					Region:  1,
					Section: "1,2,3,4,5,6,7,8,11,12",
				},
				{
					Label:   "新北永和區",
					Region:  3,
					Section: "37",
				},
				{
					Label:   "新北三重區",
					Region:  3,
					Section: "43",
				},
			},
		},
		Filters: FilterConfig{
			MinArea:            15,
			MaxFloorNoElevator: 3,
			OpenPlanMarkers:    []string{"開放式"},
			MaxRent:            30000,
		},
		Notify: NotifyConfig{
			Cap:            10,
			SendIntervalMs: 1100,
		},
	}
}

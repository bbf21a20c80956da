package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"cactuscoin/database"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = "config.yml"
	defaultEnvFile    = ".env"
)

// RoleTier binds a Discord role to the smallest balance that earns it
type RoleTier struct {
	RoleID  string
	MinCoin int64
}

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string   `yaml:"token" env:"DISCORD_TOKEN"`
	DiscordGuildID string   `yaml:"guild_id" env:"DISCORD_GUILD_ID"`
	ChannelName    string   `yaml:"channel_name" env:"CHANNEL_NAME"`
	AdminRoles     []string `yaml:"admin_roles" env:"ADMIN_ROLES"`

	// RoleTiersByID maps a role ID to the minimum balance for that role
	RoleTiersByID map[string]int64 `yaml:"role_tiers" env:"ROLE_TIERS"`

	// Database configuration. A postgres:// URL selects PostgreSQL, anything
	// else is treated as a SQLite file path.
	DatabaseURL  string `yaml:"database_url" env:"DATABASE_URL"`
	DatabaseName string `yaml:"database_name" env:"DATABASE_NAME"` // appended to PostgreSQL URLs

	// Economy configuration
	DefaultCoin    int64         `yaml:"default_coin" env:"DEFAULT_COIN"`
	Timezone       string        `yaml:"timezone" env:"TIMEZONE"`
	ConfirmTimeout time.Duration `yaml:"confirm_timeout" env:"CONFIRM_TIMEOUT"`
	OutcomeTimeout time.Duration `yaml:"outcome_timeout" env:"OUTCOME_TIMEOUT"`
	ChartCooldown  time.Duration `yaml:"chart_cooldown" env:"CHART_COOLDOWN"`

	// Event forwarding and metrics, both optional
	NATSURL         string `yaml:"nats_url" env:"NATS_URL"`
	MetricsExporter string `yaml:"metrics_exporter" env:"METRICS_EXPORTER"` // "none", "console" or "otlp"
	OTLPEndpoint    string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
	Environment string `yaml:"environment" env:"ENVIRONMENT"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Load reads .env, then the YAML file named by CONFIG_FILE (config.yml when
// unset), then environment overrides, and validates the result.
func Load() (*Config, error) {
	cfg, err := loadUnvalidated()
	if err != nil {
		return nil, err
	}

	if cfg.Environment != "test" {
		if cfg.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if cfg.ChannelName == "" {
			return nil, fmt.Errorf("CHANNEL_NAME is required")
		}
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadForMigrations loads configuration without requiring Discord settings
func LoadForMigrations() (*Config, error) {
	return loadUnvalidated()
}

func loadUnvalidated() (*Config, error) {
	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", defaultEnvFile, err)
	}

	cfg := defaults()

	path := os.Getenv("CONFIG_FILE")
	required := path != ""
	if !required {
		path = defaultConfigFile
	}
	if err := cfg.loadFile(path, required); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		AdminRoles:      []string{"CactusCoinDev", "President", "Vice President"},
		DatabaseURL:     "data/cactuscoin.db",
		DefaultCoin:     1000,
		ConfirmTimeout:  60 * time.Second,
		OutcomeTimeout:  24 * time.Hour,
		ChartCooldown:   10 * time.Second,
		MetricsExporter: "none",
		LogLevel:        "info",
	}
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// GetDatabaseURL returns the ledger location, joining DatabaseName onto a
// PostgreSQL base URL. SQLite paths are returned unchanged.
func (c *Config) GetDatabaseURL() string {
	driver, _, err := database.ParseDatabaseURL(c.DatabaseURL)
	if err != nil || driver != database.DriverPostgres {
		return c.DatabaseURL
	}
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// Location returns the time zone used for movement windows
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RoleTiers returns the configured tiers ordered by ascending MinCoin
func (c *Config) RoleTiers() []RoleTier {
	tiers := make([]RoleTier, 0, len(c.RoleTiersByID))
	for roleID, minCoin := range c.RoleTiersByID {
		tiers = append(tiers, RoleTier{RoleID: roleID, MinCoin: minCoin})
	}
	sort.Slice(tiers, func(i, j int) bool {
		if tiers[i].MinCoin == tiers[j].MinCoin {
			return tiers[i].RoleID < tiers[j].RoleID
		}
		return tiers[i].MinCoin < tiers[j].MinCoin
	})
	return tiers
}

// IsProduction reports whether JSON logging should be used
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

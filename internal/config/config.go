package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/calendar"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

const (
	configFileBase = "ward_config"
	envPrefix      = "WARD_"
)

// HolidayConfig is a dated unit holiday
type HolidayConfig struct {
	Date    string `yaml:"date" validate:"required,datetime=2006-01-02"`
	Name    string `yaml:"name" validate:"required"`
	Enabled *bool  `yaml:"enabled,omitempty"`
}

// RecurringHolidayConfig is a unit holiday described by an RRULE
type RecurringHolidayConfig struct {
	RRule   string `yaml:"rrule" validate:"required"`
	Name    string `yaml:"name" validate:"required"`
	Enabled *bool  `yaml:"enabled,omitempty"`
}

// RequestDefaults seed the quota settings of newly created pre-schedule requests
type RequestDefaults struct {
	MaxOffDays               int  `yaml:"maxOffDays" validate:"min=0"`
	MaxHoliday               int  `yaml:"maxHoliday" validate:"min=0"`
	ShiftTypesLimit          int  `yaml:"shiftTypesLimit" validate:"oneof=2 3"`
	AllowThreeTypesVoluntary bool `yaml:"allowThreeTypesVoluntary"`
	ReservedStaffPerDay      int  `yaml:"reservedStaffPerDay" validate:"min=0"`
	// WindowDays is the default length of the editing window when no close date is given
	WindowDays int `yaml:"windowDays" validate:"min=1"`
}

// DatabaseConfig holds the Postgres connection
type DatabaseConfig struct {
	URL string `yaml:"url" env:"URL" validate:"required"`
}

// RedisConfig holds the Redis connection used for writer locks
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR" validate:"required"`
	Password string        `yaml:"password,omitempty" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB" validate:"min=0"`
	LockTTL  time.Duration `yaml:"lockTTL" env:"LOCK_TTL" validate:"min=1s"`
}

// RabbitMQConfig holds the broker notices are queued on
type RabbitMQConfig struct {
	URL            string        `yaml:"url" env:"URL" validate:"required"`
	Queue          string        `yaml:"queue,omitempty" env:"QUEUE"`
	PublishTimeout time.Duration `yaml:"publishTimeout" env:"PUBLISH_TIMEOUT"`
}

// Config represents the application configuration
type Config struct {
	UnitID            string                   `yaml:"unitID" validate:"required"`
	Shifts            []model.ShiftDefinition  `yaml:"shifts" validate:"required,min=2,dive"`
	NightShifts       model.NightPair          `yaml:"nightShifts"`
	Holidays          []HolidayConfig          `yaml:"holidays,omitempty" validate:"dive"`
	RecurringHolidays []RecurringHolidayConfig `yaml:"recurringHolidays,omitempty" validate:"dive"`
	RequestDefaults   RequestDefaults          `yaml:"requestDefaults"`
	Database          DatabaseConfig           `yaml:"database"`
	Redis             RedisConfig              `yaml:"redis"`
	RabbitMQ          RabbitMQConfig           `yaml:"rabbitmq"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from ward_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv prefers ward_config.<environment>.yaml and falls back to ward_config.yaml
func LoadWithEnv(environment string) (*Config, error) {
	names := []string{configFileBase + ".yaml"}
	if environment != "" {
		names = append([]string{fmt.Sprintf("%s.%s.yaml", configFileBase, environment)}, names...)
	}

	configPath, err := findConfigFile(names)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads the configuration from a specific path, overlays WARD_* environment variables and validates it
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Config{
		Redis:    RedisConfig{LockTTL: 30 * time.Second},
		RabbitMQ: RabbitMQConfig{PublishTimeout: 10 * time.Second},
		RequestDefaults: RequestDefaults{
			MaxOffDays:      8,
			MaxHoliday:      4,
			ShiftTypesLimit: 2,
			WindowDays:      14,
		},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, the shift catalog and holiday entries
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return fmt.Errorf("invalid shifts: %w", err)
	}
	if err := cfg.NightShifts.ValidateAgainst(catalog); err != nil {
		return fmt.Errorf("invalid nightShifts: %w", err)
	}

	for i, h := range cfg.RecurringHolidays {
		if _, err := rrule.StrToRRule(h.RRule); err != nil {
			return fmt.Errorf("invalid rrule in recurringHolidays[%d]: %w", i, err)
		}
	}

	return nil
}

// Catalog builds the unit's shift catalog
func (c *Config) Catalog() (*model.ShiftCatalog, error) {
	return model.NewShiftCatalog(c.Shifts)
}

// Calendar builds the unit's holiday calendar. Entries without an enabled flag are enabled.
func (c *Config) Calendar() (*calendar.Calendar, error) {
	holidays := make([]calendar.Holiday, 0, len(c.Holidays))
	for i, h := range c.Holidays {
		date, err := model.ParseDate(h.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date in holidays[%d]: %w", i, err)
		}
		holidays = append(holidays, calendar.Holiday{Date: date, Name: h.Name, Enabled: enabled(h.Enabled)})
	}

	recurring := make([]calendar.RecurringHoliday, 0, len(c.RecurringHolidays))
	for _, h := range c.RecurringHolidays {
		recurring = append(recurring, calendar.RecurringHoliday{RRule: h.RRule, Name: h.Name, Enabled: enabled(h.Enabled)})
	}

	return calendar.New(holidays, recurring)
}

// applyEnv overlays the connection settings with WARD_DATABASE_*, WARD_REDIS_* and WARD_RABBITMQ_* variables
func applyEnv(cfg *Config) error {
	sections := []struct {
		prefix string
		target any
	}{
		{"DATABASE_", &cfg.Database},
		{"REDIS_", &cfg.Redis},
		{"RABBITMQ_", &cfg.RabbitMQ},
	}
	for _, section := range sections {
		if err := env.ParseWithOptions(section.target, env.Options{Prefix: envPrefix + section.prefix}); err != nil {
			return err
		}
	}
	return nil
}

func enabled(flag *bool) bool {
	return flag == nil || *flag
}

// findConfigFile searches for the first of names in the current directory, then in the home directory
func findConfigFile(names []string) (string, error) {
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	for _, name := range names {
		homeConfigPath := filepath.Join(homeDir, name)
		if _, err := os.Stat(homeConfigPath); err == nil {
			return homeConfigPath, nil
		}
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}

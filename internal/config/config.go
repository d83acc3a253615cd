// Package config defines service configuration and its loading from
// defaults, an optional .env file, an optional YAML file and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/cohort/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatabaseDriver is "sqlite" or "postgres"; DatabaseDSN is passed to it unchanged.
	DatabaseDriver string `koanf:"database_driver"`
	DatabaseDSN    string `koanf:"database_dsn"`

	// MinGroupScore is the quality bar every group must clear.
	MinGroupScore float64 `koanf:"min_group_score"`

	// CooldownWeeks is how long two members stay apart after sharing a group.
	CooldownWeeks int `koanf:"cooldown_weeks"`

	// GroupSizes lists the sizes the builder aims for.
	GroupSizes []int `koanf:"group_sizes"`

	// AllowPairOnlyGroups keeps strong pairs that could not be extended.
	AllowPairOnlyGroups bool `koanf:"allow_pair_only_groups"`

	// PreferBalancedShape enforces the 2/2 and 2/1 gender splits.
	PreferBalancedShape bool `koanf:"prefer_balanced_shape"`

	// Scoring weights; they must sum to 1.
	WeightSpecialty    float64 `koanf:"weight_specialty"`
	WeightInterests    float64 `koanf:"weight_interests"`
	WeightProximity    float64 `koanf:"weight_proximity"`
	WeightAvailability float64 `koanf:"weight_availability"`

	// RunTimeoutSeconds bounds one matching run.
	RunTimeoutSeconds int `koanf:"run_timeout_seconds"`

	// Weekly schedule. ScheduleWeekday is an English day name.
	ScheduleEnabled bool   `koanf:"schedule_enabled"`
	ScheduleWeekday string `koanf:"schedule_weekday"`
	ScheduleHour    int    `koanf:"schedule_hour"`
}

// New creates a Config with defaults.
func New() *Config {
	w := scoring.DefaultWeights()
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		DatabaseDriver:      "sqlite",
		DatabaseDSN:         "file:cohort.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		MinGroupScore:       0.55,
		CooldownWeeks:       6,
		GroupSizes:          []int{3, 4},
		AllowPairOnlyGroups: false,
		PreferBalancedShape: true,
		WeightSpecialty:     w.Specialty,
		WeightInterests:     w.Interests,
		WeightProximity:     w.Proximity,
		WeightAvailability:  w.Availability,
		RunTimeoutSeconds:   120,
		ScheduleEnabled:     false,
		ScheduleWeekday:     "monday",
		ScheduleHour:        9,
	}
}

// Weights returns the configured scoring weights.
func (c *Config) Weights() scoring.Weights {
	return scoring.Weights{
		Specialty:    c.WeightSpecialty,
		Interests:    c.WeightInterests,
		Proximity:    c.WeightProximity,
		Availability: c.WeightAvailability,
	}
}

// RunTimeout returns RunTimeoutSeconds as a duration.
func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutSeconds) * time.Second
}

// Weekday parses ScheduleWeekday.
func (c *Config) Weekday() (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(c.ScheduleWeekday))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("%w: unknown schedule_weekday %q", ErrInvalidConfig, c.ScheduleWeekday)
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: database_driver must be sqlite or postgres, got %q", ErrInvalidConfig, c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("%w: database_dsn must not be empty", ErrInvalidConfig)
	}
	if c.MinGroupScore < 0 || c.MinGroupScore > 1 {
		return fmt.Errorf("%w: min_group_score must be within [0,1], got %v", ErrInvalidConfig, c.MinGroupScore)
	}
	if c.CooldownWeeks < 1 {
		return fmt.Errorf("%w: cooldown_weeks must be positive, got %d", ErrInvalidConfig, c.CooldownWeeks)
	}
	if len(c.GroupSizes) == 0 {
		return fmt.Errorf("%w: group_sizes must not be empty", ErrInvalidConfig)
	}
	for _, s := range c.GroupSizes {
		if s < 3 {
			return fmt.Errorf("%w: group_sizes entries must be at least 3, got %d", ErrInvalidConfig, s)
		}
	}
	if err := c.Weights().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.RunTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: run_timeout_seconds must be positive, got %d", ErrInvalidConfig, c.RunTimeoutSeconds)
	}
	if _, err := c.Weekday(); err != nil {
		return err
	}
	if c.ScheduleHour < 0 || c.ScheduleHour > 23 {
		return fmt.Errorf("%w: schedule_hour must be within [0,23], got %d", ErrInvalidConfig, c.ScheduleHour)
	}
	return nil
}

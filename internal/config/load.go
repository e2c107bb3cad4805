package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the
// TASKNEST_ prefix with underscores for nesting (TASKNEST_DATABASE_URL,
// TASKNEST_SCHEDULER_SCAN_INTERVAL, ...) and take precedence over file
// values. Returns a populated, validated Config or an error.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; env vars and defaults carry it.
	}

	v.SetEnvPrefix("TASKNEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := validateScheduler(cfg.Scheduler); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindEnvKeys registers every config key with viper explicitly.
// AutomaticEnv only resolves keys viper already knows about, so keys
// without defaults (database.url, auth.jwt_secret, ...) would otherwise
// be invisible to Unmarshal in an env-only deployment.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"server.port",
		"server.log_level",
		"database.url",
		"auth.jwt_secret",
		"auth.token_lifetime_minutes",
		"auth.refresh_token_lifetime_minutes",
		"auth.reset_token_lifetime_minutes",
		"auth.bcrypt_cost",
		"scheduler.generation_time",
		"scheduler.scan_interval",
		"scheduler.lookahead",
		"mail.host",
		"mail.port",
		"mail.username",
		"mail.password",
		"mail.from",
		"mail.frontend_url",
	}
	for _, key := range keys {
		// BindEnv with a single argument derives the variable name from
		// the prefix and replacer; it only errors on an empty key.
		_ = v.BindEnv(key)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 60*24*7)
	v.SetDefault("auth.reset_token_lifetime_minutes", 10)
	v.SetDefault("auth.bcrypt_cost", 0) // 0 selects bcrypt.DefaultCost
	v.SetDefault("scheduler.generation_time", "00:00")
	v.SetDefault("scheduler.scan_interval", time.Minute)
	v.SetDefault("scheduler.lookahead", 5*time.Minute)
	v.SetDefault("mail.port", 587)
}

// validateScheduler enforces the relationships the struct tags cannot
// express. A lookahead shorter than the scan interval would let a due
// instant slip between two consecutive scans unseen, so it is rejected
// outright rather than logged.
func validateScheduler(cfg SchedulerConfig) error {
	if cfg.ScanInterval <= 0 {
		return fmt.Errorf("scheduler.scan_interval must be positive, got %s", cfg.ScanInterval)
	}
	if cfg.Lookahead < cfg.ScanInterval {
		return fmt.Errorf("scheduler.lookahead (%s) must be >= scheduler.scan_interval (%s)",
			cfg.Lookahead, cfg.ScanInterval)
	}
	if _, err := parseWallClock(cfg.GenerationTime); err != nil {
		return fmt.Errorf("scheduler.generation_time: %w", err)
	}
	return nil
}

// parseWallClock parses an "HH:MM" wall-clock string into hour and minute.
func parseWallClock(s string) ([2]int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &hour, &minute); err != nil {
		return [2]int{}, fmt.Errorf("expected HH:MM, got %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return [2]int{}, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return [2]int{hour, minute}, nil
}

// GenerationClock returns the parsed generation_time as (hour, minute).
// Call only after Load has validated the config.
func (c SchedulerConfig) GenerationClock() (int, int) {
	clock, err := parseWallClock(c.GenerationTime)
	if err != nil {
		return 0, 0
	}
	return clock[0], clock[1]
}

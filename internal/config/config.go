package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Mail      MailConfig      `mapstructure:"mail"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	ResetTokenLifetimeMinutes   int    `mapstructure:"reset_token_lifetime_minutes"   validate:"required,gt=0"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=0,lte=31"`
}

// SchedulerConfig drives the two background jobs: the daily occurrence
// generation and the frequent reminder scan. Lookahead must be at least the
// scan interval so no due instant can fall between two consecutive scans;
// Load enforces that relationship.
type SchedulerConfig struct {
	// GenerationTime is the local wall-clock HH:MM at which the daily
	// occurrence generation cycle fires.
	GenerationTime string `mapstructure:"generation_time" validate:"required"`

	// ScanInterval is the period between reminder scan cycles.
	ScanInterval time.Duration `mapstructure:"scan_interval" validate:"required"`

	// Lookahead is the window ahead of "now" within which a task's due
	// instant triggers a reminder.
	Lookahead time.Duration `mapstructure:"lookahead" validate:"required"`
}

// MailConfig contains SMTP settings for outgoing notification email.
// An empty Host disables outgoing mail (reminders are logged instead),
// which keeps local development working without an SMTP server.
type MailConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"         validate:"omitempty,gt=0,lt=65536"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	From        string `mapstructure:"from"         validate:"omitempty,email"`
	FrontendURL string `mapstructure:"frontend_url" validate:"omitempty,url"`
}

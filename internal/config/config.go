// Package config loads the service configuration from the environment
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/celestiaorg/quill/internal/constants"
	"github.com/celestiaorg/quill/internal/logger"
)

// NoURLPolicy decides what the completion handler does with a content item
// when the agent output carries no published URL.
type NoURLPolicy string

const (
	// NoURLPolicyLeave leaves the content item untouched
	NoURLPolicyLeave NoURLPolicy = "leave"
	// NoURLPolicyFail marks the content item as failed
	NoURLPolicyFail NoURLPolicy = "fail"
)

// ParseNoURLPolicy converts a string to a NoURLPolicy
func ParseNoURLPolicy(str string) (NoURLPolicy, error) {
	switch NoURLPolicy(strings.ToLower(strings.TrimSpace(str))) {
	case NoURLPolicyLeave:
		return NoURLPolicyLeave, nil
	case NoURLPolicyFail:
		return NoURLPolicyFail, nil
	default:
		return NoURLPolicyLeave, fmt.Errorf("invalid no-url policy: %q", str)
	}
}

// Default values
const (
	DefaultAddress           = ":8080"
	DefaultAgentURL          = "http://localhost:8000"
	DefaultCronSecret        = "default_secret"
	DefaultStatusLogLimit    = 50000
	DefaultScanSchedule      = "* * * * *"
	DefaultReconcileSchedule = "*/5 * * * *"
	DefaultDispatchStale     = 2 * time.Hour
	DefaultReconcileStale    = 2 * time.Hour
)

// Database holds the database connection settings
type Database struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLEnabled  bool
	AutoMigrate bool
}

// Demo holds the credentials used for unauthenticated demo runs
type Demo struct {
	GoogleAPIKey    string
	GoogleModelName string
	WPURL           string
	WPUsername      string
	WPPassword      string
}

// Config is the full service configuration
type Config struct {
	Address  string
	LogLevel string
	Database Database

	AgentURL     string
	AgentTimeout time.Duration

	CronSecret string
	JWTSecret  string

	NoURLPolicy        NoURLPolicy
	SerializePerItem   bool
	DispatchStaleAfter time.Duration
	StatusLogLimit     int

	SchedulerEnabled    bool
	ScanSchedule        string
	ReconcileEnabled    bool
	ReconcileSchedule   string
	ReconcileStaleAfter time.Duration

	MetricsEnabled bool

	Demo Demo
}

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// GetEnvInt retrieves an integer environment variable with a fallback value if not set
func GetEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// GetEnvBool retrieves a boolean environment variable with a fallback value if not set
func GetEnvBool(key string, fallback bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// GetEnvDuration retrieves a duration environment variable with a fallback value if not set
func GetEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		Address:           GetEnv(constants.EnvServerAddress, DefaultAddress),
		LogLevel:          GetEnv(constants.EnvLogLevel, "info"),
		AgentURL:          strings.TrimRight(GetEnv(constants.EnvAgentURL, DefaultAgentURL), "/"),
		CronSecret:        GetEnv(constants.EnvCronSecret, DefaultCronSecret),
		JWTSecret:         GetEnv(constants.EnvJWTSecret, ""),
		ScanSchedule:      GetEnv(constants.EnvScanSchedule, DefaultScanSchedule),
		ReconcileSchedule: GetEnv(constants.EnvReconcileSchedule, DefaultReconcileSchedule),
		Database: Database{
			Host:     GetEnv(constants.EnvDBHost, "localhost"),
			User:     GetEnv(constants.EnvDBUser, "postgres"),
			Password: GetEnv(constants.EnvDBPassword, "postgres"),
			Name:     GetEnv(constants.EnvDBName, "quill"),
		},
		Demo: Demo{
			GoogleAPIKey:    GetEnv(constants.EnvDemoGoogleAPIKey, ""),
			GoogleModelName: GetEnv(constants.EnvDemoGoogleModelName, ""),
			WPURL:           GetEnv(constants.EnvDemoWPURL, ""),
			WPUsername:      GetEnv(constants.EnvDemoWPUsername, ""),
			WPPassword:      GetEnv(constants.EnvDemoWPPassword, ""),
		},
	}

	var err error
	if cfg.Database.Port, err = GetEnvInt(constants.EnvDBPort, 5432); err != nil {
		return nil, err
	}
	cfg.Database.SSLEnabled = GetEnv(constants.EnvDBSSLMode, "disable") != "disable"
	if cfg.Database.AutoMigrate, err = GetEnvBool(constants.EnvDBAutoMigrate, true); err != nil {
		return nil, err
	}
	if cfg.AgentTimeout, err = GetEnvDuration(constants.EnvAgentTimeout, 0); err != nil {
		return nil, err
	}
	if cfg.NoURLPolicy, err = ParseNoURLPolicy(GetEnv(constants.EnvNoURLPolicy, string(NoURLPolicyLeave))); err != nil {
		return nil, err
	}
	if cfg.SerializePerItem, err = GetEnvBool(constants.EnvSerializePerItem, true); err != nil {
		return nil, err
	}
	if cfg.DispatchStaleAfter, err = GetEnvDuration(constants.EnvDispatchStaleAfter, DefaultDispatchStale); err != nil {
		return nil, err
	}
	if cfg.StatusLogLimit, err = GetEnvInt(constants.EnvStatusLogLimit, DefaultStatusLogLimit); err != nil {
		return nil, err
	}
	if cfg.SchedulerEnabled, err = GetEnvBool(constants.EnvSchedulerEnabled, false); err != nil {
		return nil, err
	}
	if cfg.ReconcileEnabled, err = GetEnvBool(constants.EnvReconcileEnabled, false); err != nil {
		return nil, err
	}
	if cfg.ReconcileStaleAfter, err = GetEnvDuration(constants.EnvReconcileStaleAfter, DefaultReconcileStale); err != nil {
		return nil, err
	}
	if cfg.MetricsEnabled, err = GetEnvBool(constants.EnvMetricsEnabled, true); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.AgentURL == "" {
		return fmt.Errorf("%s cannot be empty", constants.EnvAgentURL)
	}
	if c.StatusLogLimit <= 0 {
		return fmt.Errorf("%s must be positive", constants.EnvStatusLogLimit)
	}
	if c.AgentTimeout < 0 {
		return fmt.Errorf("%s cannot be negative", constants.EnvAgentTimeout)
	}
	if c.CronSecret == DefaultCronSecret {
		if c.JWTSecret != "" {
			return fmt.Errorf("%s must be set when %s is set", constants.EnvCronSecret, constants.EnvJWTSecret)
		}
		logger.Warnf("%s is not set, using the default secret", constants.EnvCronSecret)
	}
	if c.SchedulerEnabled && c.NoURLPolicy == NoURLPolicyLeave {
		logger.Warnf("%s is %q with the scheduler on: runs without a published URL leave items scheduled and the next scan dispatches them again",
			constants.EnvNoURLPolicy, NoURLPolicyLeave)
	}
	return nil
}

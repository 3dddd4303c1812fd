package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendMemory = "memory"
	BackendSheets = "sheets"
	BackendXLSX   = "xlsx"
)

// User directory backends
const (
	DirectoryTable    = "table"
	DirectoryPostgres = "postgres"
)

// Google credential modes for the sheets backend
const (
	CredentialsOAuth          = "oauth"
	CredentialsServiceAccount = "serviceAccount"
)

// Identity verifiers
const (
	VerifierTokenInfo = "tokeninfo"
	VerifierIDToken   = "idtoken"
)

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required"`
	AllowedOrigins []string      `yaml:"allowedOrigins,omitempty" validate:"dive,required"`
	SweepInterval  time.Duration `yaml:"sweepInterval,omitempty" validate:"min=0"`
	RequestTimeout time.Duration `yaml:"requestTimeout,omitempty" validate:"min=0"`
}

// CacheConfig configures the response cache
type CacheConfig struct {
	MaxValueBytes int `yaml:"maxValueBytes,omitempty" validate:"min=0"`
}

// IdentityConfig configures how ID tokens are verified
type IdentityConfig struct {
	Verifier     string `yaml:"verifier" validate:"required,oneof=tokeninfo idtoken"`
	Audience     string `yaml:"audience,omitempty" validate:"required_if=Verifier idtoken"`
	TokenInfoURL string `yaml:"tokenInfoURL,omitempty" validate:"omitempty,url"`
}

// Config represents the application configuration
type Config struct {
	Backend               string `yaml:"backend" validate:"required,oneof=memory sheets xlsx"`
	SpreadsheetID         string `yaml:"spreadsheetID,omitempty" validate:"required_if=Backend sheets"`
	Credentials           string `yaml:"credentials,omitempty" validate:"omitempty,oneof=oauth serviceAccount"`
	ServiceAccountKeyFile string `yaml:"serviceAccountKeyFile,omitempty" validate:"required_if=Credentials serviceAccount"`
	WorkbookPath          string `yaml:"workbookPath,omitempty" validate:"required_if=Backend xlsx"`

	UserDirectory string `yaml:"userDirectory,omitempty" validate:"oneof=table postgres"`
	DatabaseURL   string `yaml:"databaseURL,omitempty" validate:"required_if=UserDirectory postgres"`

	MasterAttendanceTable  string `yaml:"masterAttendanceTable,omitempty"`
	MasterSupervisionTable string `yaml:"masterSupervisionTable,omitempty"`

	Server   ServerConfig   `yaml:"server"`
	Cache    CacheConfig    `yaml:"cache,omitempty"`
	Identity IdentityConfig `yaml:"identity"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from tracker_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration for an environment.
// For example, env="test" will look for "tracker_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills optional fields that were left empty
func ApplyDefaults(cfg *Config) {
	if cfg.Backend == BackendSheets && cfg.Credentials == "" {
		cfg.Credentials = CredentialsOAuth
	}
	if cfg.UserDirectory == "" {
		cfg.UserDirectory = DirectoryTable
	}
	if cfg.MasterAttendanceTable == "" {
		cfg.MasterAttendanceTable = "Attendance_Responses"
	}
	if cfg.MasterSupervisionTable == "" {
		cfg.MasterSupervisionTable = "Supervision_Responses"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.SweepInterval == 0 {
		cfg.Server.SweepInterval = time.Minute
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Identity.Verifier == "" {
		cfg.Identity.Verifier = VerifierTokenInfo
	}
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// findConfigFile searches for tracker_config.yaml in current directory and home directory
// If env is provided, it adds it as an extension (e.g., "tracker_config.test.yaml")
func findConfigFile(env string) (string, error) {
	configFileName := "tracker_config.yaml"
	if env != "" {
		configFileName = "tracker_config." + env + ".yaml"
	}
	return findFile(configFileName)
}

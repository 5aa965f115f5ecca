package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the data directory.
const FileName = "monefy.yaml"

// Config represents the top-level monefy.yaml configuration.
type Config struct {
	Household HouseholdConfig `yaml:"household"`
	Storage   StorageConfig   `yaml:"storage"`
	Backup    BackupConfig    `yaml:"backup"`
	Log       LogConfig       `yaml:"log"`
	Import    ImportConfig    `yaml:"import"`
}

// HouseholdConfig stamps ownership onto new records.
type HouseholdConfig struct {
	ID     string `yaml:"id,omitempty"`
	UserID string `yaml:"user_id,omitempty"`
}

// StorageConfig selects the byte store backend.
type StorageConfig struct {
	Backend       string `yaml:"backend" validate:"oneof=memory file sqlite"`
	Path          string `yaml:"path" validate:"required_unless=Backend memory"`
	CapacityBytes int64  `yaml:"capacity_bytes" validate:"gte=0"`
}

// BackupConfig controls where published backups go.
type BackupConfig struct {
	Dir         string `yaml:"dir" validate:"required"`
	GitCommit   bool   `yaml:"git_commit"`
	AuthorName  string `yaml:"author_name" validate:"required_if=GitCommit true"`
	AuthorEmail string `yaml:"author_email" validate:"required_if=GitCommit true"`
	GCSBucket   string `yaml:"gcs_bucket,omitempty"`
	GCSPrefix   string `yaml:"gcs_prefix,omitempty"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// ImportConfig names the default categories for bank imports.
type ImportConfig struct {
	Format          string `yaml:"format"`
	ExpenseCategory string `yaml:"expense_category"`
	IncomeCategory  string `yaml:"income_category"`
}

// Load reads a monefy.yaml file from disk. Fields the file omits keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the configuration used for a new data directory.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "file",
			Path:    "store",
		},
		Backup: BackupConfig{
			Dir:         "backups",
			AuthorName:  "Monefy",
			AuthorEmail: "backup@monefy.local",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Import: ImportConfig{
			Format:          "chase",
			ExpenseCategory: "Shopping",
			IncomeCategory:  "Other",
		},
	}
}

// Environment variables that override file settings.
const (
	EnvBackend   = "MONEFY_STORAGE_BACKEND"
	EnvPath      = "MONEFY_STORAGE_PATH"
	EnvCapacity  = "MONEFY_STORAGE_CAPACITY"
	EnvLogLevel  = "MONEFY_LOG_LEVEL"
	EnvLogFormat = "MONEFY_LOG_FORMAT"
	EnvGCSBucket = "MONEFY_GCS_BUCKET"
	EnvGCSPrefix = "MONEFY_GCS_PREFIX"
	EnvHousehold = "MONEFY_HOUSEHOLD_ID"
	EnvUser      = "MONEFY_USER_ID"
)

// ApplyEnv overlays MONEFY_* variables onto cfg. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvBackend:   &c.Storage.Backend,
		EnvPath:      &c.Storage.Path,
		EnvLogLevel:  &c.Log.Level,
		EnvLogFormat: &c.Log.Format,
		EnvGCSBucket: &c.Backup.GCSBucket,
		EnvGCSPrefix: &c.Backup.GCSPrefix,
		EnvHousehold: &c.Household.ID,
		EnvUser:      &c.Household.UserID,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	if v, ok := lookup(EnvCapacity); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvCapacity, err)
		}
		c.Storage.CapacityBytes = n
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports every problem in cfg at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	problems := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Errorf("%s: failed %q check (value %v)", yamlPath(fe.Namespace()), fe.Tag(), fe.Value()))
	}
	return errors.Join(problems...)
}

// yamlPath drops the root type from "Config.storage.capacity_bytes".
func yamlPath(ns string) string {
	_, rest, _ := strings.Cut(ns, ".")
	return rest
}

// Resolve makes p absolute relative to dataDir.
func Resolve(dataDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}

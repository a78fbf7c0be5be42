package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Paths  PathsConfig       `yaml:"paths"`
	Limits LimitsConfig      `yaml:"limits"`
	Scan   ScanConfig        `yaml:"scan"`
	Mirror MirrorConfig      `yaml:"mirror"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Paths.Validate(); err != nil {
		return fmt.Errorf("paths: %w", err)
	}
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("limits: %w", err)
	}
	if err := c.Scan.Validate(); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	return c.Mirror.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	)
}

// PathsConfig locates the sites tree and the generated artifacts. All paths
// are relative to Root.
type PathsConfig struct {
	Root           string `yaml:"root"`
	SitesDir       string `yaml:"sites_dir"`
	CatalogFile    string `yaml:"catalog_file"`
	ReadmeFile     string `yaml:"readme_file"`
	ViolationsFile string `yaml:"violations_file"`
}

// Validate validates the paths configuration.
func (c *PathsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.SitesDir, validation.Required),
		validation.Field(&c.CatalogFile, validation.Required),
		validation.Field(&c.ReadmeFile, validation.Required),
		validation.Field(&c.ViolationsFile, validation.Required),
	)
}

// LimitsConfig holds storage ceilings in binary megabytes.
type LimitsConfig struct {
	PerSiteMB float64 `yaml:"per_site_mb"`
	TotalMB   float64 `yaml:"total_mb"`
}

// Validate validates the limits configuration.
func (c *LimitsConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.PerSiteMB, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&c.TotalMB, validation.Required, validation.Min(0.0).Exclusive()),
	); err != nil {
		return err
	}
	if c.TotalMB < c.PerSiteMB {
		return fmt.Errorf("total_mb (%g) is below per_site_mb (%g)", c.TotalMB, c.PerSiteMB)
	}
	return nil
}

// ScanConfig controls filesystem scanning.
type ScanConfig struct {
	Workers int `yaml:"workers"`
}

// Validate validates the scan configuration.
func (c *ScanConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(64)),
	)
}

// MirrorConfig holds content-store settings.
type MirrorConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
	Message    string `yaml:"message"`
}

// Validate validates the mirror configuration.
func (c *MirrorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SQLitePath, validation.Required),
		validation.Field(&c.Message, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
		},
		Paths: PathsConfig{
			Root:           ".",
			SitesDir:       "sites",
			CatalogFile:    "index.json",
			ReadmeFile:     "README.md",
			ViolationsFile: "violations.json",
		},
		Limits: LimitsConfig{
			PerSiteMB: 50,
			TotalMB:   1000,
		},
		Scan: ScanConfig{
			Workers: 4,
		},
		Mirror: MirrorConfig{
			SQLitePath: "mirror.db",
			Message:    "Update catalog",
		},
	}
}

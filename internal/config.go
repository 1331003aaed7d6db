package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/memos/internal/classify"
	"github.com/starford/memos/internal/journal"
	"github.com/starford/memos/internal/tagconfig"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// TimeFormat is the only supported memo time format.
const TimeFormat = "HH:mm"

// DateFormats are the journal file name formats that can be read back.
var DateFormats = []any{"YYYY-MM-DD", "YYYY_MM_DD", "YYYYMMDD"}

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Vault   VaultConfig       `yaml:"vault"`
	Journal JournalConfig     `yaml:"journal"`
	Tags    TagsConfig        `yaml:"tags"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Journal.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the path to the Markdown vault directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// JournalConfig controls where daily files live and how memos are written.
type JournalConfig struct {
	Folder       string   `yaml:"folder"`
	DateFormat   string   `yaml:"date_format"`
	TimeFormat   string   `yaml:"time_format"`
	DefaultTags  []string `yaml:"default_tags"`
	ItemsPerPage int      `yaml:"items_per_page"`
}

// Validate validates the journal configuration.
func (c *JournalConfig) Validate() error {
	if c.TimeFormat == "" {
		c.TimeFormat = TimeFormat
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Folder, validation.Required),
		validation.Field(&c.DateFormat, validation.Required,
			validation.In(DateFormats...).Error("must be one of YYYY-MM-DD, YYYY_MM_DD, YYYYMMDD")),
		validation.Field(&c.TimeFormat, validation.In(TimeFormat).Error("only HH:mm is supported")),
		validation.Field(&c.ItemsPerPage, validation.Required, validation.Min(1), validation.Max(500)),
	)
}

// Options converts the journal settings into repository options.
func (c *JournalConfig) Options(groups []tagconfig.QuickTag) journal.Options {
	return journal.Options{
		Folder:      c.Folder,
		DateFormat:  c.DateFormat,
		DefaultTags: c.DefaultTags,
		QuickTags:   groups,
	}
}

// TagsConfig holds quick-tag groups and the keyword tables used for
// auto-tagging. Keyword tables are JSON objects mapping a tag to its
// trigger substrings.
type TagsConfig struct {
	QuickTags     string `yaml:"quick_tags"`
	SmartKeywords string `yaml:"smart_keywords"`
	HabitKeywords string `yaml:"habit_keywords"`
}

// Groups parses the quick-tag configuration.
func (c *TagsConfig) Groups() []tagconfig.QuickTag {
	return tagconfig.ParseQuickTags(c.QuickTags)
}

// Engine builds the classification engine for these settings.
func (c *TagsConfig) Engine() *classify.Engine {
	return classify.New(
		tagconfig.ParseKeywordTable(c.SmartKeywords),
		tagconfig.ParseKeywordTable(c.HabitKeywords),
		c.Groups(),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		Journal: JournalConfig{
			Folder:       "journals",
			DateFormat:   "YYYY-MM-DD",
			TimeFormat:   TimeFormat,
			ItemsPerPage: 50,
		},
		Tags: TagsConfig{
			SmartKeywords: classify.DefaultSmartKeywords,
			HabitKeywords: classify.DefaultHabitKeywords,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}

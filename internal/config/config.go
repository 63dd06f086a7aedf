package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/teemow/gapidemo/internal/google"
)

const (
	// AppName names the config and cache directories.
	AppName = "gapidemo"

	// FileName is the name of the config file inside the config directory.
	FileName = "config.toml"

	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Config is the full application configuration.
type Config struct {
	Google     GoogleConfig                      `toml:"google"`
	Server     ServerConfig                      `toml:"server"`
	Calendar   CalendarConfig                    `toml:"calendar"`
	Sheets     SheetsConfig                      `toml:"sheets"`
	Vision     VisionConfig                      `toml:"vision"`
	Logging    LoggingConfig                     `toml:"logging"`
	RateLimits map[string]google.RateLimitConfig `toml:"rate_limits,omitempty"`
}

// GoogleConfig holds the OAuth client registration and token storage.
type GoogleConfig struct {
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	RedirectURL    string `toml:"redirect_url,omitempty"`
	TokenDir       string `toml:"token_dir,omitempty"`
	DefaultAccount string `toml:"default_account"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Transport   string `toml:"transport"`
	HTTPAddr    string `toml:"http_addr"`
	MetricsAddr string `toml:"metrics_addr"`
	Yolo        bool   `toml:"yolo"`
}

// CalendarConfig holds scheduling defaults.
type CalendarConfig struct {
	TimeZone string `toml:"time_zone"`
}

// SheetsConfig names the spreadsheet receipts are appended to.
type SheetsConfig struct {
	SpreadsheetID string `toml:"spreadsheet_id,omitempty"`
	Range         string `toml:"range"`
}

// VisionConfig holds the optional Cloud Vision API key.
type VisionConfig struct {
	APIKey string `toml:"api_key,omitempty"`
}

// LoggingConfig selects the log handler.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Google: GoogleConfig{
			DefaultAccount: "default",
		},
		Server: ServerConfig{
			Transport:   TransportStdio,
			HTTPAddr:    "127.0.0.1:8080",
			MetricsAddr: ":9090",
		},
		Calendar: CalendarConfig{
			TimeZone: "Asia/Ho_Chi_Minh",
		},
		Sheets: SheetsConfig{
			Range: "Sheet1!A1",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns ~/.config/gapidemo/config.toml, or "" when no config
// directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, FileName)
}

// Load builds the configuration from defaults, the TOML file at path and the
// environment. An empty path means DefaultPath, which may be absent; an
// explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if !explicit && errors.Is(err, os.ErrNotExist) {
				err = nil
			}
			if err != nil {
				return Config{}, err
			}
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// mergeFile decodes the TOML file at path over cfg.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("invalid config file %s: %s", path, strict.String())
		}
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads environment variables from the given .env files without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from environment variables looked up with lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("GOOGLE_CLIENT_ID", &c.Google.ClientID)
	str("GOOGLE_CLIENT_SECRET", &c.Google.ClientSecret)
	str("GOOGLE_REDIRECT_URL", &c.Google.RedirectURL)
	str("GAPIDEMO_TOKEN_DIR", &c.Google.TokenDir)
	str("GAPIDEMO_ACCOUNT", &c.Google.DefaultAccount)
	str("GAPIDEMO_TRANSPORT", &c.Server.Transport)
	str("GAPIDEMO_HTTP_ADDR", &c.Server.HTTPAddr)
	str("GAPIDEMO_METRICS_ADDR", &c.Server.MetricsAddr)
	str("GAPIDEMO_TIME_ZONE", &c.Calendar.TimeZone)
	str("GAPIDEMO_SPREADSHEET_ID", &c.Sheets.SpreadsheetID)
	str("GAPIDEMO_SHEET_RANGE", &c.Sheets.Range)
	str("GOOGLE_VISION_API_KEY", &c.Vision.APIKey)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)

	if v, ok := lookup("GAPIDEMO_YOLO"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid GAPIDEMO_YOLO %q: %w", v, err)
		}
		c.Server.Yolo = b
	}
	return nil
}

// Validate checks value ranges that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport %q, must be one of: %s, %s", c.Server.Transport, TransportStdio, TransportStreamableHTTP)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q, must be text or json", c.Logging.Format)
	}

	for name, rl := range c.RateLimits {
		if rl.RequestsPerSecond < 0 || rl.BurstSize < 0 {
			return fmt.Errorf("rate limit for %s must not be negative", name)
		}
	}
	return nil
}

// OAuthSettings returns the OAuth client registration for the login flow.
func (c Config) OAuthSettings() google.OAuthSettings {
	return google.OAuthSettings{
		ClientID:     c.Google.ClientID,
		ClientSecret: c.Google.ClientSecret,
		RedirectURL:  c.Google.RedirectURL,
	}
}

// TokenDir returns the token directory, falling back to the user cache dir.
func (c Config) TokenDir() string {
	if c.Google.TokenDir != "" {
		return c.Google.TokenDir
	}
	return google.DefaultTokenDir()
}

// RateLimitOverrides converts the configured rate limits to per-service overrides.
func (c Config) RateLimitOverrides() map[google.ServiceType]google.RateLimitConfig {
	if len(c.RateLimits) == 0 {
		return nil
	}
	out := make(map[google.ServiceType]google.RateLimitConfig, len(c.RateLimits))
	for name, rl := range c.RateLimits {
		out[google.ServiceType(strings.ToLower(name))] = rl
	}
	return out
}

// Save writes cfg to path as TOML, creating the directory if needed.
// The file may contain the client secret, so it is only readable by the owner.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return fmt.Errorf("no config path available")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	out := c
	out.Google.ClientSecret = redact(c.Google.ClientSecret)
	out.Vision.APIKey = redact(c.Vision.APIKey)
	if len(c.RateLimits) > 0 {
		out.RateLimits = make(map[string]google.RateLimitConfig, len(c.RateLimits))
		for k, v := range c.RateLimits {
			out.RateLimits[k] = v
		}
	}
	return out
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

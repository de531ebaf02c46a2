package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	BackendSheets   = "sheets"
	BackendWorkbook = "workbook"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Store       StoreConfig       `toml:"store"`
	Spreadsheet SpreadsheetConfig `toml:"spreadsheet"`
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// StoreConfig selects the sheet store backend.
type StoreConfig struct {
	Backend      string `toml:"backend"`
	WorkbookPath string `toml:"workbook_path"`
}

// SpreadsheetConfig identifies the Google spreadsheet holding the notebook.
type SpreadsheetConfig struct {
	ID                string `toml:"id"`
	Title             string `toml:"title"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Google GoogleConfig `toml:"google"`
}

// GoogleConfig contains Google API credentials.
//
// A service account file takes precedence over the OAuth client tokens.
type GoogleConfig struct {
	ServiceAccountFile string `toml:"service_account_file"`
	ClientID           string `toml:"client_id"`
	ClientSecret       string `toml:"client_secret"`
	RedirectURI        string `toml:"redirect_uri"`
	AccessToken        string `toml:"access_token"`
	RefreshToken       string `toml:"refresh_token"`
}

// Update stores the access and refresh tokens from token.
//
// An empty refresh token keeps the previous one, Google only issues it on first consent.
func (g *GoogleConfig) Update(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: token cannot be nil", ErrInvalidInput)
	}
	g.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		g.RefreshToken = token.RefreshToken
	}
	return nil
}

// Token returns the stored user token, or nil when none has been saved.
func (g GoogleConfig) Token() *oauth2.Token {
	if g.AccessToken == "" && g.RefreshToken == "" {
		return nil
	}
	return &oauth2.Token{AccessToken: g.AccessToken, RefreshToken: g.RefreshToken, TokenType: "Bearer"}
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the OAuth callback listener settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port the callback server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate checks that the selected backend has what it needs to start.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSheets:
		if c.Spreadsheet.ID == "" && c.Spreadsheet.Title == "" {
			return fmt.Errorf("%w: spreadsheet id or title is required", ErrInvalidConfig)
		}
	case BackendWorkbook:
		if c.Store.WorkbookPath == "" {
			return fmt.Errorf("%w: workbook_path is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
//
// The file holds credentials so it is written with owner-only permissions.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

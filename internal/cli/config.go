package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/evcraddock/yatube-api/internal/auth"
)

const defaultServerURL = "http://localhost:8080"

// errMalformedToken marks a stored token the server could never have issued.
var errMalformedToken = errors.New("malformed token")

// CLIConfig is what yt keeps between runs: the server to talk to and the
// token from the last login.
type CLIConfig struct {
	ServerURL string `yaml:"server_url,omitempty"`
	Token     string `yaml:"token,omitempty"`
}

func (c CLIConfig) validate() error {
	if c.Token == "" {
		return nil
	}
	return validateToken(c.Token)
}

func validateToken(token string) error {
	if !strings.HasPrefix(token, auth.TokenPrefix) || len(token) == len(auth.TokenPrefix) {
		return fmt.Errorf("%w (should start with %s)", errMalformedToken, auth.TokenPrefix)
	}
	return nil
}

// configPath returns the config file location. YT_CONFIG overrides
// ~/.config/yt/config.yaml.
func configPath() (string, error) {
	if v := os.Getenv("YT_CONFIG"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "yt", "config.yaml"), nil
}

// loadConfig reads the config file; a missing file yields the zero config.
// If the stored token is malformed the decoded config comes back along with
// an error matching errMalformedToken, so login and logout can overwrite it.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return CLIConfig{}, nil
	case err != nil:
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// saveConfig writes the config file, owner-readable only since it holds a
// bearer token. A malformed token is refused rather than persisted.
func saveConfig(cfg CLIConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// getServerURL resolves the server: YT_SERVER_URL, then the config file,
// then defaultServerURL. A bad token does not hide the configured server.
func getServerURL() string {
	if v := os.Getenv("YT_SERVER_URL"); v != "" {
		return v
	}
	if cfg, _ := loadConfig(); cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return defaultServerURL
}

// getToken returns YT_TOKEN, else the stored token if it is well formed.
func getToken() string {
	if v := os.Getenv("YT_TOKEN"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err != nil {
		return ""
	}
	return cfg.Token
}

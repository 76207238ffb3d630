package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeRawConfig writes config file contents directly, bypassing saveConfig.
func writeRawConfig(t *testing.T, home, contents string) {
	t.Helper()
	dir := filepath.Join(home, ".config", "yt")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := CLIConfig{ServerURL: "http://blog.example:9000", Token: "yt_abc"}
	if err := saveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(home, ".config", "yt", "config.yaml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config mode = %o, want 600", perm)
	}

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != (CLIConfig{}) {
		t.Errorf("cfg = %+v, want zero", cfg)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeRawConfig(t, home, "server_url: [unclosed")

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := saveConfig(CLIConfig{ServerURL: "http://from-file", Token: "yt_file"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	tests := []struct {
		name      string
		envURL    string
		envToken  string
		wantURL   string
		wantToken string
	}{
		{"file values", "", "", "http://from-file", "yt_file"},
		{"env wins", "http://from-env", "yt_env", "http://from-env", "yt_env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("YT_SERVER_URL", tt.envURL)
			t.Setenv("YT_TOKEN", tt.envToken)
			if got := getServerURL(); got != tt.wantURL {
				t.Errorf("server url = %q, want %q", got, tt.wantURL)
			}
			if got := getToken(); got != tt.wantToken {
				t.Errorf("token = %q, want %q", got, tt.wantToken)
			}
		})
	}
}

func TestDefaultServerURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("YT_SERVER_URL", "")

	if got := getServerURL(); got != defaultServerURL {
		t.Errorf("server url = %q, want %q", got, defaultServerURL)
	}
}

func TestValidateToken(t *testing.T) {
	tests := []struct {
		token string
		ok    bool
	}{
		{"yt_0123abcd", true},
		{"hf_0123abcd", false},
		{"0123abcd", false},
		{"yt_", false},
		{"", false},
	}

	for _, tt := range tests {
		err := validateToken(tt.token)
		if tt.ok && err != nil {
			t.Errorf("validateToken(%q) = %v, want nil", tt.token, err)
		}
		if !tt.ok && !errors.Is(err, errMalformedToken) {
			t.Errorf("validateToken(%q) = %v, want errMalformedToken", tt.token, err)
		}
	}
}

func TestLoadConfigMalformedToken(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("YT_CONFIG", "")
	t.Setenv("YT_TOKEN", "")
	t.Setenv("YT_SERVER_URL", "")
	writeRawConfig(t, home, "server_url: http://blog.example\ntoken: hf_leftover\n")

	cfg, err := loadConfig()
	if !errors.Is(err, errMalformedToken) {
		t.Fatalf("load err = %v, want errMalformedToken", err)
	}
	if cfg.ServerURL != "http://blog.example" {
		t.Errorf("server url = %q, want it kept", cfg.ServerURL)
	}

	if got := getToken(); got != "" {
		t.Errorf("token = %q, want malformed token ignored", got)
	}
	if got := getServerURL(); got != "http://blog.example" {
		t.Errorf("server url = %q", got)
	}

	var out bytes.Buffer
	if err := runStatus(&out); err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out.String(), "malformed token") {
		t.Errorf("status output = %q", out.String())
	}
}

func TestSaveConfigRejectsMalformedToken(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("YT_CONFIG", "")

	if err := saveConfig(CLIConfig{Token: "not-a-token"}); !errors.Is(err, errMalformedToken) {
		t.Fatalf("save err = %v, want errMalformedToken", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "yt", "config.yaml")); !os.IsNotExist(err) {
		t.Errorf("config written despite bad token: %v", err)
	}
}

func TestConfigPathOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "yt.yaml")
	t.Setenv("YT_CONFIG", path)

	if err := saveConfig(CLIConfig{ServerURL: "http://elsewhere", Token: "yt_override"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written to YT_CONFIG: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Token != "yt_override" {
		t.Errorf("token = %q", cfg.Token)
	}
}

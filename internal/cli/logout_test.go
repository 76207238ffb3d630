package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogoutClearsToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := CLIConfig{Token: "yt_testtoken123", ServerURL: "http://myhost:9090"}
	if err := saveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	var out bytes.Buffer
	if err := runLogout(&out); err != nil {
		t.Fatalf("logout: %v", err)
	}

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Token != "" {
		t.Errorf("token = %q, want empty after logout", loaded.Token)
	}
	// Server URL should be preserved
	if loaded.ServerURL != "http://myhost:9090" {
		t.Errorf("server_url = %q, want preserved after logout", loaded.ServerURL)
	}
}

func TestLogoutWhenNotLoggedIn(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	if err := runLogout(&out); err != nil {
		t.Fatalf("logout with no config: %v", err)
	}
	if !strings.Contains(out.String(), "Not logged in") {
		t.Errorf("output = %q", out.String())
	}
}

func TestLogoutClearsMalformedToken(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("YT_CONFIG", "")
	writeRawConfig(t, home, "server_url: http://myhost:9090\ntoken: garbage\n")

	var out bytes.Buffer
	if err := runLogout(&out); err != nil {
		t.Fatalf("logout: %v", err)
	}

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("load after logout: %v", err)
	}
	if loaded.Token != "" || loaded.ServerURL != "http://myhost:9090" {
		t.Errorf("config after logout = %+v", loaded)
	}
}

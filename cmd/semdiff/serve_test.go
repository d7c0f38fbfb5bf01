package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/semdiff/semdiff/internal/config"
)

// TestNewServeCmd tests the serve command creation.
func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "serve" {
			t.Errorf("expected use 'serve', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has listen flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("listen")
		if flag == nil {
			t.Fatal("expected listen flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultListenAddr {
			t.Errorf("expected default %q, got %q", config.DefaultListenAddr, flag.DefValue)
		}
	})

	t.Run("has model flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("model")
		if flag == nil {
			t.Fatal("expected model flag")
		}
		if flag.Shorthand != "m" {
			t.Errorf("expected shorthand 'm', got %q", flag.Shorthand)
		}
	})

	t.Run("has premium-model flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("premium-model") == nil {
			t.Fatal("expected premium-model flag")
		}
	})

	t.Run("has base-url flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("base-url")
		if flag == nil {
			t.Fatal("expected base-url flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has cors-origin flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("cors-origin") == nil {
			t.Fatal("expected cors-origin flag")
		}
	})
}

// TestBuildServeConfig tests the flag/file/default precedence.
func TestBuildServeConfig(t *testing.T) {
	t.Parallel()

	// writeConfig writes a config file naming a listen address and a
	// model, so both sources of overrides are visible.
	writeConfig := func(t *testing.T) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "semdiff.yaml")
		content := "listen_addr: \":7070\"\nmodel:\n  name: \"model-from-file\"\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("defaults apply without file or flags", func(t *testing.T) {
		t.Parallel()

		cmd := NewServeCmd()
		path := filepath.Join(t.TempDir(), "semdiff.yaml")
		content := "{}\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("config", path); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddr != config.DefaultListenAddr {
			t.Errorf("ListenAddr = %q, expected default %q", cfg.ListenAddr, config.DefaultListenAddr)
		}
		if cfg.Model != config.DefaultModel {
			t.Errorf("Model = %q, expected default %q", cfg.Model, config.DefaultModel)
		}
	})

	t.Run("config file overrides defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewServeCmd()
		if err := cmd.Flags().Set("config", writeConfig(t)); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddr != ":7070" {
			t.Errorf("ListenAddr = %q, expected %q from config file", cfg.ListenAddr, ":7070")
		}
		if cfg.Model != "model-from-file" {
			t.Errorf("Model = %q, expected %q from config file", cfg.Model, "model-from-file")
		}
	})

	t.Run("flags override the config file", func(t *testing.T) {
		t.Parallel()

		cmd := NewServeCmd()
		if err := cmd.Flags().Set("config", writeConfig(t)); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("listen", ":9999"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddr != ":9999" {
			t.Errorf("ListenAddr = %q, expected %q from flag", cfg.ListenAddr, ":9999")
		}
		// Unset flags must not mask file values with flag defaults.
		if cfg.Model != "model-from-file" {
			t.Errorf("Model = %q, expected %q from config file", cfg.Model, "model-from-file")
		}
	})

	t.Run("cors origins come from the flag", func(t *testing.T) {
		t.Parallel()

		cmd := NewServeCmd()
		if err := cmd.Flags().Set("config", writeConfig(t)); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("cors-origin", "http://a.example,http://b.example"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"http://a.example", "http://b.example"}
		if !reflect.DeepEqual(cfg.CORSOrigins, want) {
			t.Errorf("CORSOrigins = %v, expected %v", cfg.CORSOrigins, want)
		}
	})

	t.Run("explicit missing config file errors", func(t *testing.T) {
		t.Parallel()

		cmd := NewServeCmd()
		if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
			t.Fatal(err)
		}

		_, err := buildServeConfig(cmd)
		if err == nil {
			t.Fatal("expected error for missing explicit config file")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected 'not found' error, got %v", err)
		}
	})
}

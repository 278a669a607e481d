package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// Helper function to set os.Args for testing
func setArgs(args []string) {
	os.Args = args
}

// Helper function to clear environment variables
func clearEnvVars() {
	for _, name := range flagNames {
		os.Unsetenv(envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_")))
	}
}

// withArgs runs a LoadFromFlags scenario in an isolated working directory
func withArgs(t *testing.T, args ...string) (*Config, error) {
	t.Helper()

	originalArgs := os.Args
	originalDir, _ := os.Getwd()
	work := t.TempDir()
	if err := os.Chdir(work); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		os.Args = originalArgs
		_ = os.Chdir(originalDir)
		resetFlags()
		clearEnvVars()
	})

	setArgs(append([]string{"mcp-diarias"}, args...))
	resetFlags()
	return LoadFromFlags()
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	clearEnvVars()

	cfg, err := withArgs(t)
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "stdio" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, "stdio")
	}
	if cfg.Port != 8080 {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 8080)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "info")
	}
	if cfg.Deadlines != DefaultDeadlines() {
		t.Errorf("LoadFromFlags() Deadlines = %+v, want defaults", cfg.Deadlines)
	}
	if !filepath.IsAbs(cfg.DataDirectory) {
		t.Errorf("LoadFromFlags() DataDirectory should be absolute, got %s", cfg.DataDirectory)
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	clearEnvVars()
	dir := t.TempDir()

	cfg, err := withArgs(t,
		"--mode=server", "--host=0.0.0.0", "--port=9090",
		"--dir="+dir, "--data-dir="+filepath.Join(dir, "out"),
		"--log-level=debug", "--max-file-size=5000000",
		"--prazo-com-passagens=45", "--convert-timeout=30s",
		"--assistant-model=qwen2.5:7b",
	)
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "server" || cfg.Host != "0.0.0.0" || cfg.Port != 9090 {
		t.Errorf("LoadFromFlags() server settings = %s %s:%d", cfg.Mode, cfg.Host, cfg.Port)
	}
	if cfg.InputDirectory != dir {
		t.Errorf("LoadFromFlags() InputDirectory = %v, want %v", cfg.InputDirectory, dir)
	}
	if cfg.DataDirectory != filepath.Join(dir, "out") {
		t.Errorf("LoadFromFlags() DataDirectory = %v", cfg.DataDirectory)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.MaxFileSize != 5000000 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want 5000000", cfg.MaxFileSize)
	}
	if cfg.Deadlines.WithTickets != 45 || cfg.Deadlines.WithoutTickets != 10 {
		t.Errorf("LoadFromFlags() Deadlines = %+v", cfg.Deadlines)
	}
	if cfg.ConverterTimeout != 30*time.Second {
		t.Errorf("LoadFromFlags() ConverterTimeout = %v, want 30s", cfg.ConverterTimeout)
	}
	if cfg.AssistantModel != "qwen2.5:7b" {
		t.Errorf("LoadFromFlags() AssistantModel = %v", cfg.AssistantModel)
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	clearEnvVars()
	dir := t.TempDir()

	os.Setenv("DIARIAS_MODE", "server")
	os.Setenv("DIARIAS_PORT", "3000")
	os.Setenv("DIARIAS_DIR", dir)
	os.Setenv("DIARIAS_LOG_LEVEL", "warn")
	os.Setenv("DIARIAS_PRAZO_RELATORIO", "7")
	os.Setenv("DIARIAS_ASSISTANT_TIMEOUT", "2m")

	cfg, err := withArgs(t)
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "server" {
		t.Errorf("LoadFromFlags() Mode = %v, want server", cfg.Mode)
	}
	if cfg.Port != 3000 {
		t.Errorf("LoadFromFlags() Port = %v, want 3000", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want warn", cfg.LogLevel)
	}
	if cfg.Deadlines.Report != 7 {
		t.Errorf("LoadFromFlags() Deadlines.Report = %v, want 7", cfg.Deadlines.Report)
	}
	if cfg.AssistantTimeout != 2*time.Minute {
		t.Errorf("LoadFromFlags() AssistantTimeout = %v, want 2m", cfg.AssistantTimeout)
	}
}

func TestLoadFromFlags_DotEnv(t *testing.T) {
	clearEnvVars()

	originalDir, _ := os.Getwd()
	work := t.TempDir()
	if err := os.Chdir(work); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer func() { _ = os.Chdir(originalDir) }()

	if err := os.WriteFile(filepath.Join(work, ".env"), []byte("DIARIAS_ASSISTANT_MODEL=mistral\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()
	setArgs([]string{"mcp-diarias"})
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}
	if cfg.AssistantModel != "mistral" {
		t.Errorf("LoadFromFlags() AssistantModel = %v, want mistral from .env", cfg.AssistantModel)
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	clearEnvVars()

	os.Setenv("DIARIAS_MODE", "server")
	os.Setenv("DIARIAS_HOST", "192.168.1.1")
	os.Setenv("DIARIAS_PORT", "3000")

	cfg, err := withArgs(t, "--mode=stdio", "--host=localhost", "--port=8888")
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "stdio" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v (should override env)", cfg.Mode, "stdio")
	}
	if cfg.Host != "localhost" {
		t.Errorf("LoadFromFlags() Host = %v, want %v (should override env)", cfg.Host, "localhost")
	}
	if cfg.Port != 8888 {
		t.Errorf("LoadFromFlags() Port = %v, want %v (should override env)", cfg.Port, 8888)
	}
}

func TestLoadFromFlags_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"invalid mode", []string{"--mode=invalid"}, "mode must be either 'stdio' or 'server'"},
		{"invalid port", []string{"--mode=server", "--port=99999"}, "port must be between 1 and 65535"},
		{"invalid log level", []string{"--log-level=invalid"}, "invalid log level"},
		{"negative deadline", []string{"--prazo-relatorio=-1"}, "deadlines cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			_, err := withArgs(t, tt.args...)
			if err == nil {
				t.Fatalf("LoadFromFlags() expected error")
			}
			if !containsString(err.Error(), tt.wantErr) {
				t.Errorf("LoadFromFlags() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	clearEnvVars()

	_, err := withArgs(t, "--version")
	if err == nil {
		t.Fatal("LoadFromFlags() expected version error")
	}
	if err.Error() != "version requested" {
		t.Errorf("LoadFromFlags() error = %v, want 'version requested'", err)
	}
}

func containsString(s, substr string) bool {
	return strings.Contains(s, substr)
}

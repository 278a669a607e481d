package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 20 * 1024 * 1024 // 20MB

	DefaultConverterBinary  = "soffice"
	DefaultConverterTimeout = 120 * time.Second
	DefaultTemplateCacheTTL = 10 * time.Minute

	DefaultAssistantBaseURL = "http://localhost:11434/v1"
	DefaultAssistantModel   = "llama3.1:8b"
	DefaultAssistantTimeout = 90 * time.Second

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "DIARIAS"
)

// Deadlines are the form's deadline windows, in days
type Deadlines struct {
	// Anexo I filed without tickets must precede the outbound leg by this much
	WithoutTickets int
	// Anexo I filed with tickets must precede the outbound leg by this much
	WithTickets int
	// Anexo II must be filed at most this long after the return leg
	Report int
}

// DefaultDeadlines are the windows printed on the forms
func DefaultDeadlines() Deadlines {
	return Deadlines{WithoutTickets: 10, WithTickets: 30, Report: 5}
}

// Config holds all configuration for the travel forms MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Directories
	InputDirectory     string // source documents the tools may read
	DataDirectory      string // rendered outputs
	TemplatesDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	LogFile     string
	MaxFileSize int64 // Maximum source document size in bytes

	Deadlines Deadlines

	// Collaborators
	ConverterBinary  string
	ConverterTimeout time.Duration
	TemplateCacheTTL time.Duration

	AssistantBaseURL string
	AssistantModel   string
	AssistantAPIKey  string
	AssistantTimeout time.Duration
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:               ModeStdio, // stdio is what MCP clients expect
		Host:               DefaultHost,
		Port:               DefaultPort,
		InputDirectory:     currentDir,
		DataDirectory:      filepath.Join(currentDir, "data"),
		TemplatesDirectory: filepath.Join(currentDir, "templates"),
		Version:            "1.0.0",
		ServerName:         "mcp-diarias",
		LogLevel:           DefaultLogLevel,
		MaxFileSize:        DefaultMaxFileSize,
		Deadlines:          DefaultDeadlines(),
		ConverterBinary:    DefaultConverterBinary,
		ConverterTimeout:   DefaultConverterTimeout,
		TemplateCacheTTL:   DefaultTemplateCacheTTL,
		AssistantBaseURL:   DefaultAssistantBaseURL,
		AssistantModel:     DefaultAssistantModel,
		AssistantTimeout:   DefaultAssistantTimeout,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads variables from path when the file exists. Variables
// already set in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("cannot load %s: %w", path, err)
	}
	return nil
}

// flagNames lists every key shared by flags, env and viper
var flagNames = []string{
	"mode", "host", "port",
	"dir", "data-dir", "templates-dir",
	"log-level", "log-file", "max-file-size",
	"prazo-sem-passagens", "prazo-com-passagens", "prazo-relatorio",
	"soffice", "convert-timeout", "template-cache-ttl",
	"assistant-url", "assistant-model", "assistant-key", "assistant-timeout",
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.InputDirectory)
	viper.SetDefault("data-dir", cfg.DataDirectory)
	viper.SetDefault("templates-dir", cfg.TemplatesDirectory)
	viper.SetDefault("log-level", cfg.LogLevel)
	viper.SetDefault("log-file", cfg.LogFile)
	viper.SetDefault("max-file-size", cfg.MaxFileSize)
	viper.SetDefault("prazo-sem-passagens", cfg.Deadlines.WithoutTickets)
	viper.SetDefault("prazo-com-passagens", cfg.Deadlines.WithTickets)
	viper.SetDefault("prazo-relatorio", cfg.Deadlines.Report)
	viper.SetDefault("soffice", cfg.ConverterBinary)
	viper.SetDefault("convert-timeout", cfg.ConverterTimeout)
	viper.SetDefault("template-cache-ttl", cfg.TemplateCacheTTL)
	viper.SetDefault("assistant-url", cfg.AssistantBaseURL)
	viper.SetDefault("assistant-model", cfg.AssistantModel)
	viper.SetDefault("assistant-key", cfg.AssistantAPIKey)
	viper.SetDefault("assistant-timeout", cfg.AssistantTimeout)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for SSE server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.InputDirectory, "Directory containing source documents (Anexo I files)")
	pflag.String("data-dir", cfg.DataDirectory, "Directory for rendered documents")
	pflag.String("templates-dir", cfg.TemplatesDirectory, "Directory containing anexo1_template.docx and anexo2_template.docx")
	pflag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("log-file", cfg.LogFile, "Write logs to this file with rotation instead of stderr")
	pflag.Int64("max-file-size", cfg.MaxFileSize, "Maximum source document size in bytes")
	pflag.Int("prazo-sem-passagens", cfg.Deadlines.WithoutTickets, "Days an Anexo I without tickets must precede the trip")
	pflag.Int("prazo-com-passagens", cfg.Deadlines.WithTickets, "Days an Anexo I with tickets must precede the trip")
	pflag.Int("prazo-relatorio", cfg.Deadlines.Report, "Days after return to file the Anexo II")
	pflag.String("soffice", cfg.ConverterBinary, "LibreOffice binary used for DOC/DOCX/PDF conversion")
	pflag.Duration("convert-timeout", cfg.ConverterTimeout, "Timeout of a single document conversion")
	pflag.Duration("template-cache-ttl", cfg.TemplateCacheTTL, "How long template bytes stay cached")
	pflag.String("assistant-url", cfg.AssistantBaseURL, "OpenAI-compatible endpoint of the drafting assistant")
	pflag.String("assistant-model", cfg.AssistantModel, "Model name of the drafting assistant")
	pflag.String("assistant-key", cfg.AssistantAPIKey, "API key of the drafting assistant, if required")
	pflag.Duration("assistant-timeout", cfg.AssistantTimeout, "Timeout of a single assistant completion")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range flagNames {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP Diárias - digitizes Anexo I travel requests and renders Anexo I/II forms\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/srv/anexos --templates-dir=/srv/tpl "+
			"# custom directories\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081   # SSE server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (also read from ./.env):\n")
		for _, name := range flagNames {
			fmt.Fprintf(os.Stderr, "  %s_%s\n", envPrefix, strings.ToUpper(strings.ReplaceAll(name, "-", "_")))
		}
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.InputDirectory = viper.GetString("dir")
	cfg.DataDirectory = viper.GetString("data-dir")
	cfg.TemplatesDirectory = viper.GetString("templates-dir")
	cfg.LogLevel = viper.GetString("log-level")
	cfg.LogFile = viper.GetString("log-file")
	cfg.MaxFileSize = viper.GetInt64("max-file-size")
	cfg.Deadlines = Deadlines{
		WithoutTickets: viper.GetInt("prazo-sem-passagens"),
		WithTickets:    viper.GetInt("prazo-com-passagens"),
		Report:         viper.GetInt("prazo-relatorio"),
	}
	cfg.ConverterBinary = viper.GetString("soffice")
	cfg.ConverterTimeout = viper.GetDuration("convert-timeout")
	cfg.TemplateCacheTTL = viper.GetDuration("template-cache-ttl")
	cfg.AssistantBaseURL = viper.GetString("assistant-url")
	cfg.AssistantModel = viper.GetString("assistant-model")
	cfg.AssistantAPIKey = viper.GetString("assistant-key")
	cfg.AssistantTimeout = viper.GetDuration("assistant-timeout")
}

func (c *Config) expandPaths() {
	for _, p := range []*string{&c.InputDirectory, &c.DataDirectory, &c.TemplatesDirectory} {
		if *p == "" {
			continue
		}
		if abs, err := filepath.Abs(*p); err == nil {
			*p = abs
		}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Port only matters in server mode
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.InputDirectory == "" {
		return errors.New("input directory cannot be empty")
	}
	if c.DataDirectory == "" {
		return errors.New("data directory cannot be empty")
	}
	if c.TemplatesDirectory == "" {
		return errors.New("templates directory cannot be empty")
	}

	// Create the input and data directories if they don't exist. Templates
	// are deployed, never created.
	for _, dir := range []string{c.InputDirectory, c.DataDirectory} {
		if err := ensureDir(dir); err != nil {
			return err
		}
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.Deadlines.WithoutTickets < 0 || c.Deadlines.WithTickets < 0 || c.Deadlines.Report < 0 {
		return errors.New("deadlines cannot be negative")
	}

	if c.ConverterBinary == "" {
		return errors.New("converter binary cannot be empty")
	}
	if c.ConverterTimeout <= 0 {
		return errors.New("converter timeout must be positive")
	}
	if c.AssistantTimeout <= 0 {
		return errors.New("assistant timeout must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

func ensureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create directory %s: %w", dir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access directory %s: %w", dir, err)
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration. The
// assistant API key is never printed.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, InputDirectory: %s, DataDirectory: %s, "+
		"TemplatesDirectory: %s, LogLevel: %s, MaxFileSize: %d, Deadlines: %d/%d/%d, AssistantModel: %s}",
		c.Mode, c.Host, c.Port, c.InputDirectory, c.DataDirectory, c.TemplatesDirectory,
		c.LogLevel, c.MaxFileSize, c.Deadlines.WithoutTickets, c.Deadlines.WithTickets,
		c.Deadlines.Report, c.AssistantModel)
}

// IsServerMode returns true if the server is running in SSE server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

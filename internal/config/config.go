package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Engine constants
	EnginePDFTk  = "pdftk"
	EnginePDFCPU = "pdfcpu"

	// Default values
	DefaultEngine      = EnginePDFTk
	DefaultPDFTk       = "pdftk"
	DefaultViewer      = "evince"
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "console"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// EnvPrefix prefixes every environment variable read by the tool
	EnvPrefix = "FILL_PDF_FORM"

	// DefaultEnvFile is loaded into the environment when present
	DefaultEnvFile = ".env"
)

// ErrVersionRequested is returned by Load when --version was given
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the fill-pdf-form command
type Config struct {
	// Engine configuration
	Engine string // "pdftk" or "pdfcpu"
	PDFTk  string // pdftk executable
	Viewer string // PDF viewer executable

	// Operation options
	Flatten     bool
	Interactive bool

	// Serve mode configuration
	Directory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	LogFormat   string
	MaxFileSize int64 // Maximum input PDF size in bytes

	// Args holds the positional arguments: command name first
	Args []string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Engine:      DefaultEngine,
		PDFTk:       DefaultPDFTk,
		Viewer:      DefaultViewer,
		Directory:   currentDir,
		Version:     "1.0.0",
		ServerName:  "fill-pdf-form",
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// Load parses command line args (without the program name) on top of
// environment variables and a .env file in the working directory
func Load(args []string) (*Config, error) {
	cfg := DefaultConfig()

	if err := LoadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setupViperEnvironment(v, cfg)

	fs := newFlagSet(cfg)
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if showVersion, _ := fs.GetBool("version"); showVersion {
		return nil, ErrVersionRequested
	}

	populateConfigFromViper(v, cfg)
	cfg.Args = fs.Args()

	if cfg.Directory != "" {
		if expandedPath, err := filepath.Abs(cfg.Directory); err == nil {
			cfg.Directory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadEnvFile loads variables from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("engine", cfg.Engine)
	v.SetDefault("pdftk", cfg.PDFTk)
	v.SetDefault("viewer", cfg.Viewer)
	v.SetDefault("dir", cfg.Directory)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("logformat", cfg.LogFormat)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// newFlagSet defines all command line flags
func newFlagSet(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("fill-pdf-form", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.String("engine", cfg.Engine, "Form engine: 'pdftk' runs the pdftk tool, 'pdfcpu' works in process and flattens by making fields read-only")
	fs.String("pdftk", cfg.PDFTk, "pdftk executable")
	fs.String("viewer", cfg.Viewer, "PDF viewer used by explain without an output file")
	fs.Bool("flatten", cfg.Flatten, "Make filled fields non-editable (fill only)")
	fs.Bool("interactive", cfg.Interactive, "Ask for each value when writing a template")
	fs.String("dir", cfg.Directory, "Directory the serve command may read and write")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.String("logformat", cfg.LogFormat, "Log format (console, json)")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum input PDF size in bytes")
	fs.BoolP("version", "v", false, "Print version information and exit")
	return fs
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Engine = v.GetString("engine")
	cfg.PDFTk = v.GetString("pdftk")
	cfg.Viewer = v.GetString("viewer")
	cfg.Flatten = v.GetBool("flatten")
	cfg.Interactive = v.GetBool("interactive")
	cfg.Directory = v.GetString("dir")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.LogFormat = v.GetString("logformat")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
}

// PrintUsage writes the usage message to w
func PrintUsage(w io.Writer) {
	fs := newFlagSet(DefaultConfig())
	fs.SetOutput(w)

	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  fill-pdf-form [options] explain <in_pdf> [<out_pdf>]\n")
	fmt.Fprintf(w, "  fill-pdf-form [options] template <in_pdf> <out_yml>\n")
	fmt.Fprintf(w, "  fill-pdf-form [options] fill <in_pdf> <entries_yml> [<out_pdf>]\n")
	fmt.Fprintf(w, "  fill-pdf-form [options] serve\n")
	fmt.Fprintf(w, "\nCommands:\n")
	fmt.Fprintf(w, "  explain   Fill each field with its own name and show or save the result\n")
	fmt.Fprintf(w, "  template  Write a YAML file with an empty entry for every field\n")
	fmt.Fprintf(w, "  fill      Fill the form with the entries of a YAML file\n")
	fmt.Fprintf(w, "  serve     Serve the commands as MCP tools on stdin/stdout\n")
	fmt.Fprintf(w, "\nOptions:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nEnvironment Variables:\n")
	fmt.Fprintf(w, "  %s_ENGINE       Form engine\n", EnvPrefix)
	fmt.Fprintf(w, "  %s_PDFTK        pdftk executable\n", EnvPrefix)
	fmt.Fprintf(w, "  %s_VIEWER       PDF viewer\n", EnvPrefix)
	fmt.Fprintf(w, "  %s_FLATTEN      Flatten filled forms\n", EnvPrefix)
	fmt.Fprintf(w, "  %s_DIR          Serve directory\n", EnvPrefix)
	fmt.Fprintf(w, "  %s_LOGLEVEL     Log level\n", EnvPrefix)
	fmt.Fprintf(w, "  %s_LOGFORMAT    Log format\n", EnvPrefix)
	fmt.Fprintf(w, "  %s_MAXFILESIZE  Maximum file size\n", EnvPrefix)
	fmt.Fprintf(w, "\nVariables may also be set in a %s file in the working directory.\n", DefaultEnvFile)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Engine {
	case EnginePDFTk:
		if strings.TrimSpace(c.PDFTk) == "" {
			return errors.New("pdftk executable cannot be empty")
		}
	case EnginePDFCPU:
	default:
		return fmt.Errorf("engine must be either '%s' or '%s'", EnginePDFTk, EnginePDFCPU)
	}

	if strings.TrimSpace(c.Viewer) == "" {
		return errors.New("viewer cannot be empty")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
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

	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be one of: console, json)", c.LogFormat)
	}

	return nil
}

// Command returns the command name, or "" when none was given
func (c *Config) Command() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

// CommandArgs returns the positional arguments after the command name
func (c *Config) CommandArgs() []string {
	if len(c.Args) < 2 {
		return nil
	}
	return c.Args[1:]
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Engine: %s, PDFTk: %s, Viewer: %s, Flatten: %t, Directory: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Engine, c.PDFTk, c.Viewer, c.Flatten, c.Directory, c.LogLevel, c.MaxFileSize)
}

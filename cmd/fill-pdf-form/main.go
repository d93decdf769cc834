package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/a3tai/fill-pdf-form/internal/config"
	"github.com/a3tai/fill-pdf-form/internal/logging"
	"github.com/a3tai/fill-pdf-form/internal/mcp"
	"github.com/a3tai/fill-pdf-form/internal/pdf"
	"github.com/a3tai/fill-pdf-form/internal/pdf/pdfcpu"
	"github.com/a3tai/fill-pdf-form/internal/pdf/pdftk"
	"github.com/a3tai/fill-pdf-form/internal/prompt"
	"github.com/a3tai/fill-pdf-form/internal/viewer"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

const (
	exitFailure = 1
	exitUsage   = 2
)

// usageError reports wrong command line arguments
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args)
	switch {
	case errors.Is(err, config.ErrVersionRequested):
		printVersion(stdout)
		return 0
	case errors.Is(err, pflag.ErrHelp):
		config.PrintUsage(stdout)
		return 0
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		config.PrintUsage(stderr)
		return exitUsage
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsDebug() {
		logger.Debug("starting", zap.String("config", cfg.String()))
	}

	if err := dispatch(ctx, cfg, logger, stderr); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "Error: %v\n\n", err)
			config.PrintUsage(stderr)
			return exitUsage
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

// dispatch checks the positional arguments and runs the named command
func dispatch(ctx context.Context, cfg *config.Config, logger *zap.Logger, stderr io.Writer) error {
	command, args := cfg.Command(), cfg.CommandArgs()

	switch command {
	case "explain":
		if len(args) < 1 || len(args) > 2 {
			return &usageError{msg: "explain takes <in_pdf> [<out_pdf>]"}
		}
	case "template":
		if len(args) != 2 {
			return &usageError{msg: "template takes <in_pdf> <out_yml>"}
		}
	case "fill":
		if len(args) < 2 || len(args) > 3 {
			return &usageError{msg: "fill takes <in_pdf> <entries_yml> [<out_pdf>]"}
		}
	case "serve":
		if len(args) != 0 {
			return &usageError{msg: "serve takes no arguments"}
		}
	case "":
		return &usageError{msg: "no command given"}
	default:
		return &usageError{msg: fmt.Sprintf("unknown command %q", command)}
	}

	service, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	switch command {
	case "explain":
		_, err = service.Explain(ctx, pdf.ExplainRequest{Path: args[0], OutputPath: optionalArg(args, 1)})
		return err

	case "template":
		_, err = service.Template(ctx, pdf.TemplateRequest{
			Path:        args[0],
			OutputPath:  args[1],
			Interactive: cfg.Interactive,
		})
		return err

	case "fill":
		result, err := service.Fill(ctx, pdf.FillRequest{
			Path:        args[0],
			EntriesPath: args[1],
			OutputPath:  optionalArg(args, 2),
			Flatten:     cfg.Flatten,
		})
		if err != nil {
			return err
		}
		if result.DerivedPath {
			fmt.Fprintf(stderr, "Writing output to %s\n", result.OutputPath)
		}
		return nil

	default:
		server, err := mcp.NewServer(cfg, service, logger)
		if err != nil {
			return err
		}
		return server.Run(ctx)
	}
}

// newService wires the configured engine, viewer and prompter into a form service
func newService(cfg *config.Config, logger *zap.Logger) (*pdf.Service, error) {
	var engine pdf.Engine
	switch cfg.Engine {
	case config.EnginePDFCPU:
		engine = pdfcpu.NewEngine(logger)
	default:
		engine = pdftk.NewEngine(cfg.PDFTk, nil, logger)
	}

	return pdf.NewService(engine, cfg.MaxFileSize,
		pdf.WithViewer(viewer.New(cfg.Viewer, logger)),
		pdf.WithPrompter(prompt.New()),
		pdf.WithLogger(logger),
	)
}

// exitCode propagates the status of a failed external tool
func exitCode(err error) int {
	var toolErr *pdftk.ToolError
	if errors.As(err, &toolErr) && toolErr.ExitCode > 0 {
		return toolErr.ExitCode
	}
	return exitFailure
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "fill-pdf-form\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}

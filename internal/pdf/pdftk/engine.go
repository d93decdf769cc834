// Package pdftk extracts and fills PDF form fields by running the pdftk
// command line tool.
package pdftk

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/a3tai/fill-pdf-form/internal/form"
	"github.com/a3tai/fill-pdf-form/internal/logging"
)

const (
	// EngineName identifies this engine in configuration.
	EngineName = "pdftk"

	fdfFileName = "fields.fdf"
)

// Engine runs pdftk to dump and fill form fields.
type Engine struct {
	binary string
	runner CommandRunner
	logger *zap.Logger
}

// NewEngine creates an engine invoking the pdftk binary at path binary.
// A nil runner uses os/exec.
func NewEngine(binary string, runner CommandRunner, logger *zap.Logger) *Engine {
	logger = logging.OrNop(logger).Named(EngineName)
	if runner == nil {
		runner = NewExecRunner(logger)
	}
	return &Engine{
		binary: binary,
		runner: runner,
		logger: logger,
	}
}

// Name returns the engine name.
func (e *Engine) Name() string {
	return EngineName
}

// Extract returns the form fields of the PDF at pdfPath.
func (e *Engine) Extract(ctx context.Context, pdfPath string) ([]form.FieldRecord, error) {
	out, err := e.runner.Run(ctx, e.binary, pdfPath, "dump_data_fields_utf8")
	if err != nil {
		return nil, err
	}

	records, err := ParseFieldDump(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pdfPath, err)
	}

	e.logger.Debug("extracted fields", zap.String("pdf", pdfPath), zap.Int("count", len(records)))
	return records, nil
}

// Fill writes assignments into the form of pdfPath and saves the result to
// outputPath. The intermediate FDF file lives in a private temporary
// directory that is removed before Fill returns.
func (e *Engine) Fill(ctx context.Context, pdfPath string, assignments []form.Assignment, outputPath string, flatten bool) error {
	dir, err := os.MkdirTemp("", "fill-pdf-form-")
	if err != nil {
		return fmt.Errorf("failed to create temporary directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("failed to remove temporary directory", zap.String("dir", dir), zap.Error(err))
		}
	}()

	fdfPath := filepath.Join(dir, fdfFileName)
	if err := writeFDFFile(fdfPath, assignments); err != nil {
		return err
	}

	args := []string{pdfPath, "fill_form", fdfPath, "output", outputPath}
	if flatten {
		args = append(args, "flatten")
	}
	if _, err := e.runner.Run(ctx, e.binary, args...); err != nil {
		return err
	}

	e.logger.Debug("filled form",
		zap.String("pdf", pdfPath),
		zap.String("output", outputPath),
		zap.Int("assignments", len(assignments)),
		zap.Bool("flatten", flatten))
	return nil
}

func writeFDFFile(path string, assignments []form.Assignment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create FDF file: %w", err)
	}
	if err := WriteFDF(f, assignments); err != nil {
		f.Close()
		return fmt.Errorf("failed to write FDF file: %w", err)
	}
	return f.Close()
}

// Package pdfcpu extracts and fills AcroForm fields in process using the
// pdfcpu library. Records use the same attribute keys as the pdftk engine.
package pdfcpu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/a3tai/fill-pdf-form/internal/form"
	"github.com/a3tai/fill-pdf-form/internal/logging"
)

// EngineName identifies this engine in configuration.
const EngineName = "pdfcpu"

// Engine fills forms with pdfcpu.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a pdfcpu backed engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logging.OrNop(logger).Named(EngineName)}
}

// Name returns the engine name.
func (e *Engine) Name() string {
	return EngineName
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Extract returns the terminal form fields of the PDF at pdfPath.
func (e *Engine) Extract(ctx context.Context, pdfPath string) ([]form.FieldRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields, err := readFields(pdfPath)
	if err != nil {
		return nil, err
	}

	records := make([]form.FieldRecord, 0, len(fields))
	for _, f := range fields {
		records = append(records, f.record())
	}

	e.logger.Debug("extracted fields", zap.String("pdf", pdfPath), zap.Int("count", len(records)))
	return records, nil
}

func readFields(pdfPath string) ([]field, error) {
	file, err := os.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	pdfCtx, err := api.ReadContext(file, newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return collectFields(pdfCtx)
}

// Fill writes assignments into the form of pdfPath and saves the result to
// outputPath. Names that do not match a field are ignored. With flatten set,
// every field of the result is made read-only.
func (e *Engine) Fill(ctx context.Context, pdfPath string, assignments []form.Assignment, outputPath string, flatten bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fields, err := readFields(pdfPath)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		ids, err := formFieldIDs(pdfPath)
		if err != nil {
			return err
		}
		resolveIDs(fields, ids)
	}

	dir, err := os.MkdirTemp("", "fill-pdf-form-")
	if err != nil {
		return fmt.Errorf("failed to create temporary directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("failed to remove temporary directory", zap.String("dir", dir), zap.Error(err))
		}
	}()

	group, matched := buildFormGroup(fields, assignments)
	e.logger.Debug("matched assignments",
		zap.Int("assignments", len(assignments)),
		zap.Int("matched", matched),
		zap.Int("fields", len(fields)))

	filled := filepath.Join(dir, "filled.pdf")
	if matched == 0 {
		// pdfcpu refuses a fill that changes nothing
		if err := copyFile(pdfPath, filled); err != nil {
			return err
		}
	} else if err := fillFile(pdfPath, group, filled); err != nil {
		return err
	}

	result := filled
	if flatten {
		e.logger.Warn("pdfcpu flattens by locking fields; they stay widgets instead of becoming page content")
	}
	if ids := lockIDs(fields); flatten && len(ids) > 0 {
		locked := filepath.Join(dir, "locked.pdf")
		if err := lockFile(filled, locked, ids); err != nil {
			return err
		}
		result = locked
	}

	if err := moveFile(result, outputPath); err != nil {
		return err
	}

	e.logger.Debug("filled form",
		zap.String("pdf", pdfPath),
		zap.String("output", outputPath),
		zap.Bool("flatten", flatten))
	return nil
}

func fillFile(pdfPath string, group formGroup, outPath string) error {
	data, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("failed to encode form data: %w", err)
	}

	in, err := os.Open(pdfPath)
	if err != nil {
		return err
	}
	defer in.Close()

	var out bytes.Buffer
	if err := api.FillForm(in, bytes.NewReader(data), &out, newConfiguration()); err != nil {
		return fmt.Errorf("failed to fill form: %w", err)
	}
	return os.WriteFile(outPath, out.Bytes(), 0o600)
}

func lockFile(pdfPath, outPath string, ids []string) error {
	in, err := os.Open(pdfPath)
	if err != nil {
		return err
	}
	defer in.Close()

	var out bytes.Buffer
	if err := api.LockFormFields(in, &out, ids, newConfiguration()); err != nil {
		return fmt.Errorf("failed to lock form fields: %w", err)
	}
	return os.WriteFile(outPath, out.Bytes(), 0o600)
}

// moveFile renames src to dst, copying when they are on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyFile(src, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return out.Close()
}

// checked reports whether a value selects a checkbox.
func checked(value string, states []string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "off", "false", "no", "0":
		return false
	case "yes", "on", "true", "1", "x":
		return true
	}
	for _, s := range states {
		if s != "Off" && s == value {
			return true
		}
	}
	return false
}

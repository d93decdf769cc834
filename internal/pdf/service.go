package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/a3tai/fill-pdf-form/internal/form"
	"github.com/a3tai/fill-pdf-form/internal/logging"
)

// explainFileName is the name of the transient explain output.
const explainFileName = "output.pdf"

// ErrNoViewer is returned when explain has no output path and no viewer.
var ErrNoViewer = errors.New("no viewer configured")

// ErrNoPrompter is returned for an interactive template without a prompter.
var ErrNoPrompter = errors.New("interactive input is not available")

// Engine extracts form field metadata from a PDF and writes field values into it
type Engine interface {
	Name() string
	Extract(ctx context.Context, pdfPath string) ([]form.FieldRecord, error)
	Fill(ctx context.Context, pdfPath string, assignments []form.Assignment, outputPath string, flatten bool) error
}

// Viewer displays a PDF and returns once the user closes it
type Viewer interface {
	View(ctx context.Context, path string) error
}

// Prompter asks the user for a value for each field
type Prompter interface {
	Ask(ctx context.Context, records []form.FieldRecord) (form.Entries, error)
}

// Service implements the explain, template and fill operations on top of an
// extraction and fill engine
type Service struct {
	engine    Engine
	viewer    Viewer
	prompter  Prompter
	validator *Validator
	logger    *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithViewer sets the viewer used by explain without an output path
func WithViewer(v Viewer) Option {
	return func(s *Service) { s.viewer = v }
}

// WithPrompter sets the prompter used by interactive templates
func WithPrompter(p Prompter) Option {
	return func(s *Service) { s.prompter = p }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = logging.OrNop(l) }
}

// NewService creates a new form service using engine
func NewService(engine Engine, maxFileSize int64, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}

	s := &Service{
		engine: engine,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = NewValidator(maxFileSize, s.logger.Named("validator"))
	return s, nil
}

// EngineName returns the name of the configured engine
func (s *Service) EngineName() string {
	return s.engine.Name()
}

// Fields returns the form fields of a PDF
func (s *Service) Fields(ctx context.Context, req FieldsRequest) (*FieldsResult, error) {
	records, err := s.extract(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	return &FieldsResult{
		Path:   req.Path,
		Engine: s.engine.Name(),
		Fields: records,
	}, nil
}

// Explain fills a copy of the PDF in which every field shows its own name.
// Without an output path the copy is written to a private temporary
// directory, shown in the viewer and removed once the viewer exits.
func (s *Service) Explain(ctx context.Context, req ExplainRequest) (*ExplainResult, error) {
	if req.OutputPath == "" && s.viewer == nil {
		return nil, ErrNoViewer
	}

	records, err := s.extract(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	assignments := form.IdentityAssignments(records)

	result := &ExplainResult{
		Path:       req.Path,
		OutputPath: req.OutputPath,
		FieldCount: len(assignments),
	}

	if req.OutputPath != "" {
		if err := s.engine.Fill(ctx, req.Path, assignments, req.OutputPath, false); err != nil {
			return nil, err
		}
		s.logger.Info("wrote explained form", zap.String("output", req.OutputPath), zap.Int("fields", len(assignments)))
		return result, nil
	}

	dir, err := os.MkdirTemp("", "fill-pdf-form-explain-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("failed to remove temporary directory", zap.String("dir", dir), zap.Error(err))
		}
	}()

	out := filepath.Join(dir, explainFileName)
	if err := s.engine.Fill(ctx, req.Path, assignments, out, false); err != nil {
		return nil, err
	}

	s.logger.Debug("opening viewer", zap.String("path", out))
	if err := s.viewer.View(ctx, out); err != nil {
		return nil, err
	}

	result.OutputPath = ""
	result.Viewed = true
	return result, nil
}

// Template writes an entries file with one key per field. Values are empty
// unless the request is interactive.
func (s *Service) Template(ctx context.Context, req TemplateRequest) (*TemplateResult, error) {
	if req.OutputPath == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}
	if req.Interactive && s.prompter == nil {
		return nil, ErrNoPrompter
	}

	records, err := s.extract(ctx, req.Path)
	if err != nil {
		return nil, err
	}

	entries := form.TemplateEntries(records)
	if req.Interactive {
		entries, err = s.prompter.Ask(ctx, records)
		if err != nil {
			return nil, err
		}
	}

	if err := form.WriteEntries(req.OutputPath, entries); err != nil {
		return nil, err
	}

	s.logger.Info("wrote template", zap.String("output", req.OutputPath), zap.Int("fields", len(entries)))
	return &TemplateResult{
		Path:       req.Path,
		OutputPath: req.OutputPath,
		Entries:    entries,
	}, nil
}

// Fill fills the PDF with the values of an entries file. Without an output
// path the result is written next to the entries file with a .pdf extension.
func (s *Service) Fill(ctx context.Context, req FillRequest) (*FillResult, error) {
	if err := s.validator.ValidateFile(req.Path); err != nil {
		return nil, err
	}

	entries, err := form.ReadEntries(req.EntriesPath)
	if err != nil {
		return nil, err
	}

	result := &FillResult{
		Path:       req.Path,
		OutputPath: req.OutputPath,
		Assigned:   len(entries),
		Flattened:  req.Flatten,
	}
	if result.OutputPath == "" {
		result.OutputPath = form.DerivePDFPath(req.EntriesPath)
		result.DerivedPath = true
	}

	if err := s.engine.Fill(ctx, req.Path, entries.Assignments(), result.OutputPath, req.Flatten); err != nil {
		return nil, err
	}

	s.logger.Info("filled form",
		zap.String("output", result.OutputPath),
		zap.Int("assigned", result.Assigned),
		zap.Bool("flatten", req.Flatten))
	return result, nil
}

func (s *Service) extract(ctx context.Context, pdfPath string) ([]form.FieldRecord, error) {
	if err := s.validator.ValidateFile(pdfPath); err != nil {
		return nil, err
	}

	records, err := s.engine.Extract(ctx, pdfPath)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("extracted fields",
		zap.String("engine", s.engine.Name()),
		zap.String("pdf", pdfPath),
		zap.Int("count", len(records)))
	return records, nil
}

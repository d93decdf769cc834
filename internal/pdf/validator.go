package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/a3tai/fill-pdf-form/internal/logging"
)

// headerWindow is how far into the file the %PDF- marker may appear.
const headerWindow = 1024

var pdfHeader = []byte("%PDF-")

// ErrNotPDF is returned for files without a PDF header
var ErrNotPDF = errors.New("not a PDF file")

// Validator checks input PDFs before they are handed to an engine. Whether
// the document can be parsed is left to the engine.
type Validator struct {
	maxFileSize int64
	logger      *zap.Logger
}

// NewValidator creates a new PDF validator with the specified size limit
func NewValidator(maxFileSize int64, logger *zap.Logger) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
		logger:      logging.OrNop(logger),
	}
}

// ValidateFile checks that filePath is a non-empty file within the size
// limit that starts like a PDF
func (v *Validator) ValidateFile(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return err
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if v.maxFileSize > 0 && fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	if err := checkHeader(filePath); err != nil {
		return err
	}

	v.inspect(filePath)
	return nil
}

func checkHeader(filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, headerWindow)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	if !bytes.Contains(head[:n], pdfHeader) {
		return fmt.Errorf("%w: %s", ErrNotPDF, filePath)
	}
	return nil
}

// inspect logs what ledongthuc/pdf makes of the file. Encrypted and other
// documents it cannot read are still valid input for the engines.
func (v *Validator) inspect(filePath string) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Debug("pdf reader panicked", zap.String("path", filePath), zap.Any("panic", r))
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		v.logger.Debug("pdf reader cannot open file", zap.String("path", filePath), zap.Error(err))
		return
	}
	defer f.Close()

	v.logger.Debug("inspected pdf", zap.String("path", filePath), zap.Int("pages", r.NumPage()))
}

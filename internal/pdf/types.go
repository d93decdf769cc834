package pdf

import (
	"github.com/a3tai/fill-pdf-form/internal/form"
)

// Request Types

// FieldsRequest represents a request to list the form fields of a PDF
type FieldsRequest struct {
	Path string `json:"path"`
}

// ExplainRequest represents a request to fill every field with its own name.
// An empty OutputPath shows the result in the viewer and discards it.
type ExplainRequest struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path,omitempty"`
}

// TemplateRequest represents a request to write a blank entries file
type TemplateRequest struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path"`
	// Interactive asks for each value instead of leaving it empty
	Interactive bool `json:"interactive,omitempty"`
}

// FillRequest represents a request to fill a PDF from an entries file.
// An empty OutputPath is derived from EntriesPath.
type FillRequest struct {
	Path        string `json:"path"`
	EntriesPath string `json:"entries_path"`
	OutputPath  string `json:"output_path,omitempty"`
	Flatten     bool   `json:"flatten,omitempty"`
}

// Response Types

// FieldsResult represents the fields found in a PDF
type FieldsResult struct {
	Path   string             `json:"path"`
	Engine string             `json:"engine"`
	Fields []form.FieldRecord `json:"fields"`
}

// ExplainResult represents the result of an explain operation
type ExplainResult struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path,omitempty"`
	FieldCount int    `json:"field_count"`
	Viewed     bool   `json:"viewed"`
}

// TemplateResult represents the result of a template operation
type TemplateResult struct {
	Path       string       `json:"path"`
	OutputPath string       `json:"output_path"`
	Entries    form.Entries `json:"entries"`
}

// FillResult represents the result of a fill operation
type FillResult struct {
	Path        string `json:"path"`
	OutputPath  string `json:"output_path"`
	DerivedPath bool   `json:"derived_path"`
	Assigned    int    `json:"assigned"`
	Flattened   bool   `json:"flattened"`
}

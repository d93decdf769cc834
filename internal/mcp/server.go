package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/a3tai/fill-pdf-form/internal/config"
	"github.com/a3tai/fill-pdf-form/internal/descriptions"
	"github.com/a3tai/fill-pdf-form/internal/form"
	"github.com/a3tai/fill-pdf-form/internal/logging"
	"github.com/a3tai/fill-pdf-form/internal/pdf"
	"github.com/a3tai/fill-pdf-form/internal/security"
)

// Server exposes the form operations as MCP tools
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	paths      *security.PathValidator
	mcpServer  *server.MCPServer
	logger     *zap.Logger
}

// NewServer creates a new MCP server instance. Tool paths are confined to
// cfg.Directory.
func NewServer(cfg *config.Config, pdfService *pdf.Service, logger *zap.Logger) (*Server, error) {
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	paths, err := security.NewPathValidator(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("invalid serve directory: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		paths:      paths,
		mcpServer:  mcpServer,
		logger:     logging.OrNop(logger).Named("mcp"),
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	fieldsTool := mcp.NewTool(
		"pdf_form_fields",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_form_fields")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file, relative to the served directory"),
		),
	)
	s.mcpServer.AddTool(fieldsTool, s.handleFormFields)

	explainTool := mcp.NewTool(
		"pdf_form_explain",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_form_explain")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Path of the PDF to write"),
		),
	)
	s.mcpServer.AddTool(explainTool, s.handleFormExplain)

	templateTool := mcp.NewTool(
		"pdf_form_template",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_form_template")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Path of the YAML file to write"),
		),
	)
	s.mcpServer.AddTool(templateTool, s.handleFormTemplate)

	fillTool := mcp.NewTool(
		"pdf_form_fill",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_form_fill")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
		mcp.WithString("entries_path",
			mcp.Required(),
			mcp.Description("Path to the YAML entries file"),
		),
		mcp.WithString("output_path",
			mcp.Description("Path of the PDF to write (defaults to the entries path with a .pdf extension)"),
		),
		mcp.WithBoolean("flatten",
			mcp.Description("Make the filled fields non-editable"),
		),
	)
	s.mcpServer.AddTool(fillTool, s.handleFormFill)
}

// Handler functions
func (s *Server) handleFormFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.requirePath(request, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Fields(ctx, pdf.FieldsRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatFieldsResult(result)), nil
}

func (s *Server) handleFormExplain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.requirePath(request, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputPath, err := s.requirePath(request, "output_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Explain(ctx, pdf.ExplainRequest{Path: path, OutputPath: outputPath})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Wrote %s with %d field names filled in", result.OutputPath, result.FieldCount)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.requirePath(request, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputPath, err := s.requirePath(request, "output_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Template(ctx, pdf.TemplateRequest{Path: path, OutputPath: outputPath})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var body strings.Builder
	if err := form.EncodeEntries(&body, result.Entries); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Wrote %s with %d entries:\n\n%s", result.OutputPath, len(result.Entries), body.String())
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormFill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.requirePath(request, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entriesPath, err := s.requirePath(request, "entries_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	var outputPath string
	if raw, ok := args["output_path"].(string); ok && raw != "" {
		if outputPath, err = s.paths.Resolve(raw); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	flatten, _ := args["flatten"].(bool)

	result, err := s.pdfService.Fill(ctx, pdf.FillRequest{
		Path:        path,
		EntriesPath: entriesPath,
		OutputPath:  outputPath,
		Flatten:     flatten,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Wrote %s with %d entries", result.OutputPath, result.Assigned)
	if result.Flattened {
		responseText += " (flattened)"
	}
	return mcp.NewToolResultText(responseText), nil
}

// requirePath reads a required path argument and confines it to the served directory
func (s *Server) requirePath(request mcp.CallToolRequest, name string) (string, error) {
	raw, err := request.RequireString(name)
	if err != nil {
		return "", err
	}
	return s.paths.Resolve(raw)
}

// formatFieldsResult renders fields in the same Key: value layout pdftk dumps
func (s *Server) formatFieldsResult(result *pdf.FieldsResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Form fields in %s (%s engine): %d\n", result.Path, result.Engine, len(result.Fields))
	for _, rec := range result.Fields {
		b.WriteString("---\n")
		for _, attr := range rec.Attributes {
			fmt.Fprintf(&b, "%s: %s\n", attr.Key, attr.Value)
		}
	}
	return b.String()
}

// Run serves the tools on stdin and stdout until the client disconnects
// or ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	s.logger.Debug("starting MCP server on stdio",
		zap.String("directory", s.paths.Directory()),
		zap.String("engine", s.pdfService.EngineName()))

	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))

	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

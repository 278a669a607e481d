package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/mcp-diarias/internal/anexo"
	"github.com/a3tai/mcp-diarias/internal/config"
	"github.com/a3tai/mcp-diarias/internal/descriptions"
	"github.com/a3tai/mcp-diarias/internal/errors"
	"github.com/a3tai/mcp-diarias/internal/forms"
)

// shutdownTimeout bounds the SSE server shutdown
const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	forms     *forms.Service
	log       *logrus.Entry
	mcpServer *server.MCPServer

	stdin  io.Reader
	stdout io.Writer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, svc *forms.Service, log *logrus.Logger) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("forms service cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:    cfg,
		forms:     svc,
		log:       log.WithField("component", "mcp"),
		mcpServer: mcpServer,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	kindOption := mcp.Enum(string(anexo.KindAnexo1), string(anexo.KindAnexo2))

	s.mcpServer.AddTool(mcp.NewTool(
		"anexo1_prefill",
		mcp.WithDescription(descriptions.GetToolDescription("anexo1_prefill")),
		mcp.WithString("path",
			mcp.Description("Source file relative to the input directory"),
		),
		mcp.WithString("content",
			mcp.Description("Base64 encoded file content, used instead of path"),
		),
		mcp.WithString("filename",
			mcp.Description("File name of the content, its extension selects PDF, DOCX or DOC"),
		),
		mcp.WithString("target",
			mcp.Description("Form to prefill, default anexo2"),
			kindOption,
		),
	), s.handleAnexo1Prefill)

	s.mcpServer.AddTool(mcp.NewTool(
		"anexo_preview",
		mcp.WithDescription(descriptions.GetToolDescription("anexo_preview")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Form kind"), kindOption),
		mcp.WithString("payload", mcp.Required(), mcp.Description("Form payload as JSON")),
	), s.handleAnexoPreview)

	s.mcpServer.AddTool(mcp.NewTool(
		"anexo_generate",
		mcp.WithDescription(descriptions.GetToolDescription("anexo_generate")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Form kind"), kindOption),
		mcp.WithString("payload", mcp.Required(), mcp.Description("Form payload as JSON")),
		mcp.WithString("format",
			mcp.Description("Output format, default docx"),
			mcp.Enum(forms.OutputDOCX, forms.OutputPDF),
		),
	), s.handleAnexoGenerate)

	s.mcpServer.AddTool(mcp.NewTool(
		"assistant_draft",
		mcp.WithDescription(descriptions.GetToolDescription("assistant_draft")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Form kind"), kindOption),
		mcp.WithString("text", mcp.Required(), mcp.Description("Free-text account of the trip")),
	), s.handleAssistantDraft)

	s.mcpServer.AddTool(mcp.NewTool(
		"assistant_review",
		mcp.WithDescription(descriptions.GetToolDescription("assistant_review")),
		mcp.WithString("kind", mcp.Description("Label of the reviewed document")),
		mcp.WithString("payload", mcp.Required(), mcp.Description("Form payload as JSON")),
	), s.handleAssistantReview)

	s.mcpServer.AddTool(mcp.NewTool(
		"anexo_list_sources",
		mcp.WithDescription(descriptions.GetToolDescription("anexo_list_sources")),
		mcp.WithString("query", mcp.Description("Optional substring of the file name")),
	), s.handleListSources)

	s.mcpServer.AddTool(mcp.NewTool(
		"diarias_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("diarias_server_info")),
	), s.handleServerInfo)
}

// Handler functions
func (s *Server) handleAnexo1Prefill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := anexo.ParseKind(request.GetString("target", string(anexo.KindAnexo2)))
	if err != nil {
		return mcp.NewToolResultError("Formulário de destino inválido. Use anexo1 ou anexo2."), nil
	}

	var result *forms.PrefillResult
	if content := request.GetString("content", ""); content != "" {
		filename := request.GetString("filename", "")
		if filename == "" {
			return mcp.NewToolResultError("Informe o nome do arquivo (filename) junto com o conteúdo."), nil
		}
		data, err := decodeContent(content)
		if err != nil {
			return mcp.NewToolResultError("Conteúdo base64 inválido."), nil
		}
		result, err = s.forms.Prefill(ctx, filename, data, target)
		if err != nil {
			return s.toolError("anexo1_prefill", err), nil
		}
	} else {
		path := request.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("Informe path ou content."), nil
		}
		result, err = s.forms.PrefillFile(ctx, path, target)
		if err != nil {
			return s.toolError("anexo1_prefill", err), nil
		}
	}

	return jsonResult(result)
}

func (s *Server) handleAnexoPreview(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, payload, errResult := kindAndPayload(request)
	if errResult != nil {
		return errResult, nil
	}

	prepared, err := s.forms.Preview(kind, payload)
	if err != nil {
		return s.toolError("anexo_preview", err), nil
	}
	return jsonResult(prepared)
}

func (s *Server) handleAnexoGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, payload, errResult := kindAndPayload(request)
	if errResult != nil {
		return errResult, nil
	}

	result, err := s.forms.Generate(ctx, kind, payload, request.GetString("format", forms.OutputDOCX))
	if err != nil {
		if result != nil && len(result.Errors) > 0 {
			return mcp.NewToolResultError(formatFieldErrors(errors.UserMessage(err), result)), nil
		}
		return s.toolError("anexo_generate", err), nil
	}

	return mcp.NewToolResultText(formatGenerateResult(result)), nil
}

func (s *Server) handleAssistantDraft(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := anexo.ParseKind(request.GetString("kind", ""))
	if err != nil {
		return mcp.NewToolResultError("Formulário inválido. Use anexo1 ou anexo2."), nil
	}

	draft, err := s.forms.Draft(ctx, kind, request.GetString("text", ""))
	if err != nil {
		return s.toolError("assistant_draft", err), nil
	}
	return jsonResult(draft)
}

func (s *Server) handleAssistantReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := payloadArgument(request)
	if err != nil {
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}

	review, err := s.forms.Review(ctx, request.GetString("kind", ""), payload)
	if err != nil {
		return s.toolError("assistant_review", err), nil
	}
	return jsonResult(review)
}

func (s *Server) handleListSources(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	files, err := s.forms.ListSources(query)
	if err != nil {
		return s.toolError("anexo_list_sources", err), nil
	}

	if len(files) == 0 {
		text := fmt.Sprintf("Nenhum documento encontrado em: %s", s.forms.InputDirectory())
		if query != "" {
			text += fmt.Sprintf(" (busca: %s)", query)
		}
		return mcp.NewToolResultText(text), nil
	}
	return mcp.NewToolResultText(formatSourceList(s.forms.InputDirectory(), query, files)), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.forms.ServerInfo(s.config.ServerName, s.config.Version)
	if err != nil {
		return s.toolError("diarias_server_info", err), nil
	}
	return mcp.NewToolResultText(formatServerInfo(info)), nil
}

// toolError logs the full error and returns only its user message
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	entry := s.log.WithField("tool", tool).WithError(err)
	if errors.Is(err, errors.ErrorTypeUnsupportedInput) || errors.Is(err, errors.ErrorTypeInvalidPayload) {
		entry.Info("Tool call rejected")
	} else {
		entry.Error("Tool call failed")
	}
	return mcp.NewToolResultError(errors.UserMessage(err))
}

func kindAndPayload(request mcp.CallToolRequest) (anexo.Kind, []byte, *mcp.CallToolResult) {
	kind, err := anexo.ParseKind(request.GetString("kind", ""))
	if err != nil {
		return "", nil, mcp.NewToolResultError("Formulário inválido. Use anexo1 ou anexo2.")
	}
	payload, err := payloadArgument(request)
	if err != nil {
		return "", nil, mcp.NewToolResultError(errors.UserMessage(err))
	}
	return kind, payload, nil
}

// payloadArgument accepts the payload as a JSON string or as an object
func payloadArgument(request mcp.CallToolRequest) ([]byte, error) {
	switch v := request.GetArguments()["payload"].(type) {
	case nil:
		return nil, errors.New(errors.ErrorTypeInvalidPayload, "Informe o payload do formulário.")
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, errors.New(errors.ErrorTypeInvalidPayload, "Informe o payload do formulário.")
		}
		return []byte(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(errors.ErrorTypeInvalidPayload, "Payload JSON inválido.", err)
		}
		return data, nil
	}
}

// decodeContent decodes standard base64, tolerating a data URL prefix
func decodeContent(content string) ([]byte, error) {
	if i := strings.Index(content, ";base64,"); i >= 0 && strings.HasPrefix(content, "data:") {
		content = content[i+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(content))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Formatting methods
func formatGenerateResult(result *forms.GenerateResult) string {
	text := fmt.Sprintf("Documento gerado: %s\n", result.Filename)
	text += fmt.Sprintf("Formulário: %s\n", result.Kind)
	text += fmt.Sprintf("Formato: %s\n", result.Format)
	text += fmt.Sprintf("Caminho: %s\n", result.Path)
	text += fmt.Sprintf("Tamanho: %d bytes\n", result.Size)
	if result.Flags != nil {
		if flags, err := json.Marshal(result.Flags); err == nil {
			text += fmt.Sprintf("Flags: %s\n", flags)
		}
	}
	return text
}

func formatFieldErrors(message string, result *forms.GenerateResult) string {
	text := message + "\n"
	for _, e := range result.Errors {
		text += fmt.Sprintf("- %s: %s\n", e.Field, e.Message)
	}
	return text
}

func formatSourceList(dir, query string, files []forms.SourceFile) string {
	text := fmt.Sprintf("%d documento(s) em: %s\n", len(files), dir)
	if query != "" {
		text += fmt.Sprintf("Busca: %s\n", query)
	}
	text += "\nArquivos:\n"

	for i, file := range files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Tipo: %s\n", file.Kind)
		text += fmt.Sprintf("   Tamanho: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modificado: %s\n", file.ModifiedTime)
		if i < len(files)-1 {
			text += "\n"
		}
	}

	return text
}

func formatServerInfo(info *forms.ServerInfo) string {
	text := fmt.Sprintf("%s v%s\n", info.ServerName, info.Version)
	text += fmt.Sprintf("Entrada: %s\n", info.InputDirectory)
	text += fmt.Sprintf("Saída: %s\n", info.DataDirectory)
	text += fmt.Sprintf("Templates: %s\n", info.TemplatesDirectory)
	text += fmt.Sprintf("Tamanho máximo: %d MB\n", info.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("Prazos: %d dias sem passagens, %d dias com passagens, relatório em %d dias\n\n",
		info.Deadlines.WithoutTickets, info.Deadlines.WithTickets, info.Deadlines.Report)

	text += "Templates:\n"
	for _, t := range info.Templates {
		if t.Available {
			text += fmt.Sprintf("  • %s: %s\n", t.Kind, t.File)
		} else {
			text += fmt.Sprintf("  • %s: indisponível (%s)\n", t.Kind, t.Problem)
		}
	}

	if info.TotalSources > 0 {
		text += fmt.Sprintf("\nDocumentos de entrada (%d):\n", info.TotalSources)
		for i, file := range info.Sources {
			text += fmt.Sprintf("  %d. %s (%d bytes)\n", i+1, file.Path, file.Size)
		}
		if more := info.TotalSources - len(info.Sources); more > 0 {
			text += fmt.Sprintf("  ... e mais %d\n", more)
		}
	} else {
		text += "\nDocumentos de entrada: nenhum\n"
	}

	text += "\nFerramentas:\n"
	for _, tool := range info.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Parâmetros: %s\n", tool.Parameters)
	}

	text += "\n" + info.UsageGuidance
	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	switch {
	case s.config.IsServerMode():
		return s.runServerMode(ctx)
	case s.config.IsStdioMode():
		return s.runStdioMode(ctx)
	default:
		return fmt.Errorf("unsupported mode: %s", s.config.Mode)
	}
}

// runStdioMode serves MCP over stdin/stdout until ctx is done or input ends
func (s *Server) runStdioMode(ctx context.Context) error {
	s.log.WithField("input_dir", s.forms.InputDirectory()).Debug("Starting MCP server in stdio mode")

	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, s.stdin, s.stdout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over SSE on the configured address
func (s *Server) runServerMode(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sse := server.NewSSEServer(s.mcpServer)
	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(s.config.Address())
	}()
	s.log.WithField("address", s.config.Address()).Info("Starting MCP server in SSE mode")

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to serve SSE: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sse.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down SSE server: %w", err)
	}
	s.log.Info("MCP server stopped")
	return ctx.Err()
}

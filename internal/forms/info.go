package forms

import (
	"github.com/a3tai/mcp-diarias/internal/anexo"
	"github.com/a3tai/mcp-diarias/internal/config"
	"github.com/a3tai/mcp-diarias/internal/descriptions"
	"github.com/a3tai/mcp-diarias/internal/errors"
)

// maxListedSources caps the source listing in ServerInfo
const maxListedSources = 20

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  string `json:"parameters"`
}

// TemplateStatus tells whether a form template can be rendered
type TemplateStatus struct {
	Kind      anexo.Kind `json:"kind"`
	File      string     `json:"file"`
	Available bool       `json:"available"`
	Problem   string     `json:"problem,omitempty"`
}

// ServerInfo is the overview returned by the server info tool
type ServerInfo struct {
	ServerName         string           `json:"server_name"`
	Version            string           `json:"version"`
	InputDirectory     string           `json:"input_directory"`
	DataDirectory      string           `json:"data_directory"`
	TemplatesDirectory string           `json:"templates_directory"`
	MaxFileSize        int64            `json:"max_file_size"`
	Deadlines          config.Deadlines `json:"deadlines"`
	Templates          []TemplateStatus `json:"templates"`
	Sources            []SourceFile     `json:"sources"`
	TotalSources       int              `json:"total_sources"`
	AvailableTools     []ToolInfo       `json:"available_tools"`
	UsageGuidance      string           `json:"usage_guidance"`
}

// ServerInfo reports the configuration, the template availability and the
// first source documents found
func (s *Service) ServerInfo(serverName, version string) (*ServerInfo, error) {
	sources, err := s.ListSources("")
	if err != nil {
		return nil, err
	}
	total := len(sources)
	if total > maxListedSources {
		sources = sources[:maxListedSources]
	}

	return &ServerInfo{
		ServerName:         serverName,
		Version:            version,
		InputDirectory:     s.inputs.Root(),
		DataDirectory:      s.cfg.DataDirectory,
		TemplatesDirectory: s.cfg.TemplatesDirectory,
		MaxFileSize:        s.cfg.MaxFileSize,
		Deadlines:          s.cfg.Deadlines,
		Templates:          s.templateStatus(),
		Sources:            sources,
		TotalSources:       total,
		AvailableTools:     availableTools(),
		UsageGuidance:      usageGuidance,
	}, nil
}

func (s *Service) templateStatus() []TemplateStatus {
	kinds := []anexo.Kind{anexo.KindAnexo1, anexo.KindAnexo2}
	out := make([]TemplateStatus, 0, len(kinds))
	for _, k := range kinds {
		st := TemplateStatus{Kind: k, File: k.TemplateName(), Available: true}
		if _, err := s.templates.Load(k.TemplateName()); err != nil {
			st.Available = false
			st.Problem = errors.UserMessage(err)
		}
		out = append(out, st)
	}
	return out
}

func availableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "anexo1_prefill",
			Description: descriptions.GetToolDescription("anexo1_prefill"),
			Parameters: "path (optional): source file relative to the input directory, " +
				"content (optional): base64 file content, filename (required with content), " +
				"target (optional): anexo1 or anexo2, default anexo2",
		},
		{
			Name:        "anexo_preview",
			Description: descriptions.GetToolDescription("anexo_preview"),
			Parameters:  "kind (required): anexo1 or anexo2, payload (required): form JSON",
		},
		{
			Name:        "anexo_generate",
			Description: descriptions.GetToolDescription("anexo_generate"),
			Parameters:  "kind (required): anexo1 or anexo2, payload (required): form JSON, format (optional): docx or pdf",
		},
		{
			Name:        "assistant_draft",
			Description: descriptions.GetToolDescription("assistant_draft"),
			Parameters:  "kind (required): anexo1 or anexo2, text (required): free-text account of the trip",
		},
		{
			Name:        "assistant_review",
			Description: descriptions.GetToolDescription("assistant_review"),
			Parameters:  "kind (optional): label of the document, payload (required): form JSON",
		},
		{
			Name:        "anexo_list_sources",
			Description: descriptions.GetToolDescription("anexo_list_sources"),
			Parameters:  "query (optional): substring of the file name",
		},
		{
			Name:        "diarias_server_info",
			Description: descriptions.GetToolDescription("diarias_server_info"),
			Parameters:  "No parameters required",
		},
	}
}

const usageGuidance = `Fluxo sugerido:
1. anexo_list_sources para localizar o Anexo I preenchido.
2. anexo1_prefill com target=anexo2 para iniciar o relatório de viagem.
3. Complete os campos apontados em "warnings" com o usuário.
4. anexo_preview para conferir erros e flags de prazo.
5. anexo_generate no formato docx ou pdf.`

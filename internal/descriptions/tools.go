package descriptions

// Tool descriptions with practical examples and use cases

const (
	Anexo1PrefillDescription = `Digitize a filled Anexo I (travel request) and return a prefill payload for Anexo I or Anexo II.

**When to use:** The user has an Anexo I as PDF, DOCX or DOC and wants the travel report (Anexo II) started from it, or wants to re-edit the request itself.

**Input:** either "path" (relative to the server input directory) or "content" (base64) with "filename". "target" selects anexo2 (default) or anexo1.

**Examples:**
• "Preencha o Anexo II a partir de 2024/anexo1_maria.pdf"
• "Reabra o Anexo I em anexo para corrigir o trecho de retorno"

**Common workflows:**
1. anexo_list_sources → anexo1_prefill → complete the missing fields → anexo_generate
2. anexo1_prefill → assistant_review → anexo_generate

**Best practices:** Read the "warnings" list and ask the user for every field it names. Scanned PDFs have no text and are rejected.`

	AnexoPreviewDescription = `Validate a form payload without rendering it.

**When to use:** Before generating a document, to show the user which fields are missing or inconsistent and which flags (out of deadline, weekend travel, late report) apply.

**Input:** "kind" (anexo1 or anexo2) and "payload" (the form JSON).

**Best practices:** When "fora_do_prazo" or "prestacao_contas_fora_prazo" is true, collect the matching justification before calling anexo_generate.`

	AnexoGenerateDescription = `Render a form payload into the institutional DOCX template, optionally converted to PDF.

**When to use:** The payload is complete and the user wants the document file.

**Input:** "kind" (anexo1 or anexo2), "payload" (the form JSON) and "format" (docx or pdf, default docx).

**Examples:**
• "Gere o Anexo I em PDF com estes dados"
• "Gere o relatório de viagem (Anexo II) em DOCX"

**Best practices:** Run anexo_preview first. A rejected payload returns the field errors to fix.`

	AssistantDraftDescription = `Draft a partial form payload from a free-text account of the trip.

**When to use:** The user describes the trip in their own words and has no Anexo I file to digitize.

**Input:** "kind" (anexo1 or anexo2) and "text".

**Best practices:** The draft never fills personal identifiers. Ask the returned "questions" before generating.`

	AssistantReviewDescription = `Review a form payload for inconsistencies and missing information.

**When to use:** Before submitting a request or report, to catch date conflicts, vague justifications and missing fields.

**Input:** "kind" (free label, e.g. anexo1) and "payload" (the form JSON). Personal identifiers, banking data and contact fields are removed before the review.`

	AnexoListSourcesDescription = `List Anexo I source documents (PDF, DOCX, DOC) under the server input directory.

**When to use:** To find the path to pass to anexo1_prefill.

**Input:** optional "query" matched against file names, ignoring case.`

	ServerInfoDescription = `Get server information: directories, deadlines, template availability and available tools.

**When to use:** At the start of a session, or when a tool reports a missing template or directory.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"anexo1_prefill":      Anexo1PrefillDescription,
	"anexo_preview":       AnexoPreviewDescription,
	"anexo_generate":      AnexoGenerateDescription,
	"assistant_draft":     AssistantDraftDescription,
	"assistant_review":    AssistantReviewDescription,
	"anexo_list_sources":  AnexoListSourcesDescription,
	"diarias_server_info": ServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}

package prefill

import (
	"github.com/a3tai/mcp-diarias/internal/anexo"
	"github.com/a3tai/mcp-diarias/internal/record"
)

// Checklist messages, in the order they are reported
const (
	WarnMissingName          = "Nome do proposto não identificado no Anexo I."
	WarnMissingCPF           = "CPF não identificado ou ilegível no Anexo I."
	WarnMissingSiape         = "SIAPE não encontrado no Anexo I."
	WarnMissingFunding       = "Órgão (débito do recurso) não localizado; selecione manualmente."
	WarnMissingFundingDetail = "Detalhe do órgão para Projetos/Outros não foi identificado."
	WarnIncompleteOutbound   = "Trecho de ida incompleto; revise origem/destino."
	WarnIncompleteReturn     = "Trecho de retorno incompleto; revise origem/destino."
	WarnMissingDates         = "Datas/horários não foram lidos; informe manualmente."
	WarnMissingReason        = "Motivo/atividades não encontrados; escreva o relatório."
)

// View is what the checklist inspects, whatever the target form
type View interface {
	Name() string
	CPF() string
	Siape() string
	Funding() (record.Category, string)
	Itinerary() anexo.Itinerary
	Justification() string
}

// Warnings runs the checklist. Every check is independent; an empty view
// yields every warning.
func Warnings(v View) []string {
	warnings := []string{}

	if v.Name() == "" {
		warnings = append(warnings, WarnMissingName)
	}
	if v.CPF() == "" {
		warnings = append(warnings, WarnMissingCPF)
	}
	if v.Siape() == "" {
		warnings = append(warnings, WarnMissingSiape)
	}

	category, detail := v.Funding()
	switch {
	case category == record.CategoryUnclassified:
		warnings = append(warnings, WarnMissingFunding)
	case category.RequiresDetail() && detail == "":
		warnings = append(warnings, WarnMissingFundingDetail)
	}

	it := v.Itinerary()
	if !complete(it.Outbound) {
		warnings = append(warnings, WarnIncompleteOutbound)
	}
	if !complete(it.Return) {
		warnings = append(warnings, WarnIncompleteReturn)
	}
	first, _ := it.Outbound.First()
	last, _ := it.Return.Last()
	if first.DateTime == "" || last.DateTime == "" {
		warnings = append(warnings, WarnMissingDates)
	}

	if v.Justification() == "" {
		warnings = append(warnings, WarnMissingReason)
	}
	return warnings
}

func complete(legs anexo.Legs) bool {
	if len(legs) == 0 {
		return false
	}
	for _, l := range legs {
		if l.Origin == "" || l.Destination == "" {
			return false
		}
	}
	return true
}

// Anexo2View adapts an Anexo II payload to the checklist
type Anexo2View struct{ anexo.Anexo2 }

func (v Anexo2View) Name() string  { return v.Proposer.Name }
func (v Anexo2View) CPF() string   { return v.Proposer.CPF }
func (v Anexo2View) Siape() string { return v.Proposer.Siape }

func (v Anexo2View) Funding() (record.Category, string) {
	return record.ParseCategoryCode(v.Proposer.Organ.Type), v.Proposer.Organ.Detail
}

func (v Anexo2View) Itinerary() anexo.Itinerary { return v.Absence }
func (v Anexo2View) Justification() string      { return v.Activities }

// Anexo1View adapts an Anexo I payload to the checklist
type Anexo1View struct{ Form anexo.Anexo1 }

func (v Anexo1View) Name() string  { return v.Form.Servant.FullName }
func (v Anexo1View) CPF() string   { return v.Form.Servant.CPF }
func (v Anexo1View) Siape() string { return v.Form.Servant.Siape }

func (v Anexo1View) Funding() (record.Category, string) {
	return record.ParseCategoryCode(v.Form.Funding.Type), v.Form.Funding.Detail
}

func (v Anexo1View) Itinerary() anexo.Itinerary { return v.Form.Itinerary }
func (v Anexo1View) Justification() string      { return v.Form.TravelReason }

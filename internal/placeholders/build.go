// Package placeholders turns a validated form payload into the flat string
// mapping and per-direction row maps consumed by the DOCX renderer.
package placeholders

import (
	"strings"

	"github.com/a3tai/mcp-diarias/internal/anexo"
	"github.com/a3tai/mcp-diarias/internal/record"
)

// Mapping goes from placeholder name to display text. Values are never
// missing; an absent value is "".
type Mapping map[string]string

// Rows holds one placeholder map per itinerary leg, keyed by direction
// ("ida", "retorno")
type Rows map[string][]map[string]string

// Direction keys of Rows
const (
	DirOutbound = "ida"
	DirReturn   = "retorno"
)

func mark(on bool) string {
	if on {
		return "X"
	}
	return ""
}

func when(on bool, text string) string {
	if on {
		return text
	}
	return ""
}

// BuildAnexo1 builds the Anexo I mapping. Justifications are only emitted
// when their flag is set.
func BuildAnexo1(p anexo.Anexo1, f Anexo1Flags) Mapping {
	s := p.Servant
	category := record.ParseCategoryCode(p.Funding.Type)
	detail := strings.TrimSpace(p.Funding.Detail)

	m := Mapping{
		"data_solicitacao": anexo.FormatDate(p.RequestDate),

		"chk_diarias":   mark(p.RequestType == anexo.RequestPerDiem || p.RequestType == anexo.RequestPerDiemAndTickets),
		"chk_passagens": mark(p.WithTickets()),

		"nome_completo":   s.FullName,
		"cargo_funcao":    s.Role,
		"cpf":             s.CPF,
		"rg":              s.RG,
		"data_nascimento": anexo.FormatDate(s.BirthDate),
		"siape":           s.Siape,
		"nome_mae":        s.MotherName,
		"endereco":        s.Address,
		"telefone":        s.Phone,
		"email":           s.Email,
		"banco":           s.Bank.Bank,
		"agencia":         s.Bank.Agency,
		"conta":           s.Bank.Account,

		"motivo_viagem": p.TravelReason,

		"missao_inicio_data_hora":  anexo.FormatDateTime(p.Mission.Start),
		"missao_termino_data_hora": anexo.FormatDateTime(p.Mission.End),

		"chk_recurso_cchsa":   mark(category == record.CategoryCCHSA),
		"chk_recurso_cavn":    mark(category == record.CategoryCAVN),
		"chk_recurso_projeto": mark(category == record.CategoryProject),
		"chk_recurso_outros":  mark(category == record.CategoryOther),
		"recurso_projeto":     when(category == record.CategoryProject, detail),
		"recurso_outros":      when(category == record.CategoryOther, detail),

		"chk_transporte_veiculo_oficial":   mark(p.Transport.Has(anexo.TransportOfficialVehicle)),
		"chk_transporte_empresa_terrestre": mark(p.Transport.Has(anexo.TransportBusCompany)),
		"chk_transporte_empresa_aerea":     mark(p.Transport.Has(anexo.TransportAirline)),
		"chk_transporte_veiculo_proprio":   mark(p.Transport.Has(anexo.TransportOwnVehicle)),

		"justificativa_fds_feriado_dia_anterior": when(f.WeekendHoliday, p.Justifications.WeekendHoliday),
		"justificativa_fora_prazo":               when(f.OutOfDeadline, p.Justifications.OutOfDeadline),
	}
	joinLegs(m, DirOutbound, p.Itinerary.Outbound)
	joinLegs(m, DirReturn, p.Itinerary.Return)
	return m
}

// BuildAnexo2 builds the Anexo II mapping
func BuildAnexo2(p anexo.Anexo2, f Anexo2Flags) Mapping {
	category := record.ParseCategoryCode(p.Proposer.Organ.Type)
	detail := strings.TrimSpace(p.Proposer.Organ.Detail)

	m := Mapping{
		"data_relatorio": anexo.FormatDate(p.ReportDate),

		"nome":  p.Proposer.Name,
		"cpf":   p.Proposer.CPF,
		"siape": p.Proposer.Siape,

		"chk_orgao_cchsa":    mark(category == record.CategoryCCHSA),
		"chk_orgao_cavn":     mark(category == record.CategoryCAVN),
		"chk_orgao_projetos": mark(category == record.CategoryProject),
		"chk_orgao_outros":   mark(category == record.CategoryOther),
		"orgao_projetos":     when(category == record.CategoryProject, detail),
		"orgao_outros":       when(category == record.CategoryOther, detail),

		"atividades_desenvolvidas": p.Activities,

		"justificativa_prestacao_contas_fora_prazo": when(f.LateAccounting, p.LateJustification),

		"chk_viagem_realizada_sim": mark(p.TripCompleted == anexo.TripDone),
		"chk_viagem_realizada_nao": mark(p.TripCompleted == anexo.TripNotDone),
	}
	joinLegs(m, DirOutbound, p.Absence.Outbound)
	joinLegs(m, DirReturn, p.Absence.Return)
	return m
}

// joinLegs fills the <dir>_origem, <dir>_destino and <dir>_data_hora
// placeholders with one line per leg, for templates without a leg table
func joinLegs(m Mapping, dir string, legs anexo.Legs) {
	origins := make([]string, 0, len(legs))
	destinations := make([]string, 0, len(legs))
	times := make([]string, 0, len(legs))
	for _, l := range legs {
		origins = append(origins, l.Origin)
		destinations = append(destinations, l.Destination)
		times = append(times, anexo.FormatDateTime(l.DateTime))
	}
	m[dir+"_origem"] = strings.Join(origins, "\n")
	m[dir+"_destino"] = strings.Join(destinations, "\n")
	m[dir+"_data_hora"] = strings.Join(times, "\n")
}

// BuildRows builds one placeholder map per leg and direction, for templates
// whose leg table is expanded row by row
func BuildRows(it anexo.Itinerary) Rows {
	return Rows{
		DirOutbound: legRows(DirOutbound, it.Outbound),
		DirReturn:   legRows(DirReturn, it.Return),
	}
}

func legRows(dir string, legs anexo.Legs) []map[string]string {
	rows := make([]map[string]string, 0, len(legs))
	for _, l := range legs {
		rows = append(rows, map[string]string{
			dir + "_origem":    l.Origin,
			dir + "_destino":   l.Destination,
			dir + "_data_hora": anexo.FormatDateTime(l.DateTime),
		})
	}
	return rows
}

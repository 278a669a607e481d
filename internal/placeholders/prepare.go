package placeholders

import (
	"strings"
	"time"

	"github.com/a3tai/mcp-diarias/internal/anexo"
	"github.com/a3tai/mcp-diarias/internal/config"
)

// FieldError points at a payload field the reader must fix
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Prepared is a payload checked against the form rules. Placeholders and
// Rows are only set when OK.
type Prepared struct {
	OK           bool         `json:"ok"`
	Errors       []FieldError `json:"errors,omitempty"`
	Flags        any          `json:"flags"`
	Placeholders Mapping      `json:"placeholders,omitempty"`
	Rows         Rows         `json:"rows,omitempty"`
}

type fieldErrors []FieldError

func (e *fieldErrors) add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// checkLegs reports missing directions and legs without a date-time
func checkLegs(errs *fieldErrors, prefix string, it anexo.Itinerary) {
	if len(it.Outbound) == 0 {
		errs.add(prefix+".ida", "Informe ao menos um trecho de ida.")
	}
	if len(it.Return) == 0 {
		errs.add(prefix+".retorno", "Informe ao menos um trecho de retorno.")
	}
	for _, l := range it.Outbound {
		if l.DateTime == "" {
			errs.add(prefix+".ida", "Informe datas/horas válidas para todos os trechos de ida.")
			break
		}
	}
	for _, l := range it.Return {
		if l.DateTime == "" {
			errs.add(prefix+".retorno", "Informe datas/horas válidas para todos os trechos de retorno.")
			break
		}
	}
}

// tripBounds parses the first outbound and last return leg times. A present
// but unparsable bound invalidates both.
func tripBounds(it anexo.Itinerary) (outbound, ret *time.Time, valid bool) {
	if leg, ok := it.Outbound.First(); ok {
		t, ok := anexo.ParseDateTime(leg.DateTime)
		if !ok {
			return nil, nil, false
		}
		outbound = &t
	}
	if leg, ok := it.Return.Last(); ok {
		t, ok := anexo.ParseDateTime(leg.DateTime)
		if !ok {
			return nil, nil, false
		}
		ret = &t
	}
	return outbound, ret, true
}

var validRequestTypes = map[string]bool{
	anexo.RequestPerDiem:           true,
	anexo.RequestTickets:           true,
	anexo.RequestPerDiemAndTickets: true,
}

// PrepareAnexo1 checks an Anexo I payload, derives its flags and, when
// nothing is wrong, builds its placeholders and leg rows
func PrepareAnexo1(p anexo.Anexo1, d config.Deadlines) Prepared {
	var errs fieldErrors

	if !validRequestTypes[p.RequestType] {
		errs.add("tipo_solicitacao", "Selecione o tipo de solicitação.")
	}
	if p.RequestDate == "" {
		errs.add("data_solicitacao", "Informe a data da solicitação.")
	}

	checkLegs(&errs, "trechos", p.Itinerary)
	outbound, ret, ok := tripBounds(p.Itinerary)
	if !ok {
		errs.add("trechos", "Informe datas/horas válidas para os trechos de ida e retorno.")
	} else if outbound != nil && ret != nil && ret.Before(*outbound) {
		errs.add("trechos", "A data/hora de retorno não pode ser anterior à ida.")
	}

	start, okStart := anexo.ParseDateTime(p.Mission.Start)
	end, okEnd := anexo.ParseDateTime(p.Mission.End)
	if !okStart || !okEnd {
		errs.add("missao", "Informe datas/horas válidas para o período da missão.")
	} else {
		if end.Before(start) {
			errs.add("missao", "O término da missão não pode ser anterior ao início.")
		}
		if outbound != nil && start.Before(*outbound) {
			errs.add("missao", "O início da missão não pode ser anterior à partida.")
		}
		if ret != nil && end.After(*ret) {
			errs.add("missao", "O término da missão não pode ser posterior ao retorno.")
		}
	}

	flags := DeriveAnexo1Flags(p, d)
	if flags.OutOfDeadline && strings.TrimSpace(p.Justifications.OutOfDeadline) == "" {
		errs.add("justificativas.justificativa_fora_prazo", "Solicitação fora do prazo. Informe a justificativa.")
	}
	if flags.WeekendHoliday && strings.TrimSpace(p.Justifications.WeekendHoliday) == "" {
		errs.add("justificativas.justificativa_fds_feriado_dia_anterior",
			"Informe a justificativa para viagem em fim de semana/feriado ou saída no dia anterior.")
	}

	if len(errs) > 0 {
		return Prepared{Errors: errs, Flags: flags}
	}
	return Prepared{
		OK:           true,
		Flags:        flags,
		Placeholders: BuildAnexo1(p, flags),
		Rows:         BuildRows(p.Itinerary),
	}
}

// PrepareAnexo2 checks an Anexo II payload, derives its flags and, when
// nothing is wrong, builds its placeholders and leg rows
func PrepareAnexo2(p anexo.Anexo2, d config.Deadlines) Prepared {
	var errs fieldErrors

	checkLegs(&errs, "afastamento", p.Absence)
	outbound, ret, ok := tripBounds(p.Absence)
	if !ok {
		errs.add("afastamento", "Informe datas/horas válidas para ida e retorno.")
	} else if outbound != nil && ret != nil && ret.Before(*outbound) {
		errs.add("afastamento", "A data/hora de retorno não pode ser anterior à ida.")
	}

	flags := DeriveAnexo2Flags(p, d)
	if flags.LateAccounting && strings.TrimSpace(p.LateJustification) == "" {
		errs.add("justificativa_prestacao_contas_fora_prazo",
			"Prestação de contas fora do prazo. Informe a justificativa.")
	}

	if len(errs) > 0 {
		return Prepared{Errors: errs, Flags: flags}
	}
	return Prepared{
		OK:           true,
		Flags:        flags,
		Placeholders: BuildAnexo2(p, flags),
		Rows:         BuildRows(p.Absence),
	}
}

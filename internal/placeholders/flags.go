package placeholders

import (
	"time"

	"github.com/a3tai/mcp-diarias/internal/anexo"
	"github.com/a3tai/mcp-diarias/internal/config"
)

// Anexo1Flags are the resolved business flags of an Anexo I
type Anexo1Flags struct {
	OutOfDeadline  bool `json:"fora_do_prazo"`
	WeekendHoliday bool `json:"envolve_fds_feriado_ou_dia_anterior"`
}

// Anexo2Flags are the resolved business flags of an Anexo II
type Anexo2Flags struct {
	LateAccounting bool `json:"prestacao_contas_fora_prazo"`
}

// DeriveAnexo1Flags computes the Anexo I flags from the first outbound leg.
// The deadline flag is always recomputed when both dates are known; the
// weekend flag only fills in a value the caller left unset, since holidays
// and day-before departures are the caller's call.
func DeriveAnexo1Flags(p anexo.Anexo1, d config.Deadlines) Anexo1Flags {
	f := Anexo1Flags{
		OutOfDeadline:  deref(p.Flags.OutOfDeadline),
		WeekendHoliday: deref(p.Flags.WeekendHoliday),
	}

	outbound, ok := firstDateTime(p.Itinerary.Outbound)
	if !ok {
		return f
	}

	if requested, ok := anexo.ParseDate(p.RequestDate); ok {
		days := d.WithoutTickets
		if p.WithTickets() {
			days = d.WithTickets
		}
		limit := anexo.DateOf(outbound).AddDate(0, 0, -days)
		f.OutOfDeadline = requested.After(limit)
	}

	if p.Flags.WeekendHoliday == nil {
		wd := outbound.Weekday()
		f.WeekendHoliday = wd == time.Saturday || wd == time.Sunday
	}
	return f
}

// DeriveAnexo2Flags computes the late-accounting flag: the report is late
// when filed more than the report deadline after the last return leg.
func DeriveAnexo2Flags(p anexo.Anexo2, d config.Deadlines) Anexo2Flags {
	f := Anexo2Flags{LateAccounting: deref(p.Flags.LateAccounting)}

	ret, ok := lastDateTime(p.Absence.Return)
	if !ok {
		return f
	}
	if report, ok := anexo.ParseDate(p.ReportDate); ok {
		limit := anexo.DateOf(ret).AddDate(0, 0, d.Report)
		f.LateAccounting = report.After(limit)
	}
	return f
}

func firstDateTime(legs anexo.Legs) (time.Time, bool) {
	leg, ok := legs.First()
	if !ok {
		return time.Time{}, false
	}
	return anexo.ParseDateTime(leg.DateTime)
}

func lastDateTime(legs anexo.Legs) (time.Time, bool) {
	leg, ok := legs.Last()
	if !ok {
		return time.Time{}, false
	}
	return anexo.ParseDateTime(leg.DateTime)
}

func deref(b *bool) bool {
	return b != nil && *b
}

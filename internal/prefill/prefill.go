// Package prefill projects a digitized record onto a target form payload and
// lists what the reader still has to fill in by hand.
package prefill

import (
	"fmt"

	"github.com/a3tai/mcp-diarias/internal/anexo"
	"github.com/a3tai/mcp-diarias/internal/record"
)

// Result is the outcome of a digitization: a cleaned payload plus warnings
type Result struct {
	Target   anexo.Kind     `json:"target"`
	Prefill  map[string]any `json:"prefill"`
	Warnings []string       `json:"warnings"`
}

// Build projects rec onto the target form
func Build(rec record.Record, target anexo.Kind) (Result, error) {
	var (
		payload any
		view    View
	)
	switch target {
	case anexo.KindAnexo2:
		p := Anexo2(rec)
		payload, view = p, Anexo2View{p}
	case anexo.KindAnexo1:
		p := Anexo1(rec)
		payload, view = p, Anexo1View{Form: p}
	default:
		return Result{}, fmt.Errorf("unknown target form %q", target)
	}

	m, err := record.ToMap(payload)
	if err != nil {
		return Result{}, fmt.Errorf("encode prefill: %w", err)
	}
	return Result{
		Target:   target,
		Prefill:  m,
		Warnings: Warnings(view),
	}, nil
}

// Anexo2 projects a record onto the travel report form. The trip is assumed
// to have happened.
func Anexo2(rec record.Record) anexo.Anexo2 {
	outbound, ret := legs(rec)
	return anexo.Anexo2{
		Proposer: anexo.Proposer{
			Name:  rec.Person.FullName,
			CPF:   rec.Person.CPF,
			Siape: rec.Person.Siape,
			Organ: anexo.Funding{
				Type:   rec.Funding.Category.Anexo2Code(),
				Detail: detailOf(rec.Funding),
			},
		},
		Absence:       anexo.Itinerary{Outbound: outbound, Return: ret},
		Activities:    rec.TravelReason,
		TripCompleted: anexo.TripDone,
	}
}

// Anexo1 projects a record back onto the request form, for re-editing an
// existing request
func Anexo1(rec record.Record) anexo.Anexo1 {
	p := rec.Person
	outbound, ret := legs(rec)
	return anexo.Anexo1{
		Servant: anexo.Servant{
			FullName:   p.FullName,
			Role:       p.Role,
			CPF:        p.CPF,
			RG:         p.RG,
			BirthDate:  p.BirthDate,
			Siape:      p.Siape,
			MotherName: p.MotherName,
			Address:    p.Address,
			Phone:      p.Phone,
			Email:      p.Email,
			Bank: anexo.BankDetails{
				Bank:    p.Bank.Bank,
				Agency:  p.Bank.Agency,
				Account: p.Bank.Account,
			},
		},
		TravelReason: rec.TravelReason,
		Itinerary:    anexo.Itinerary{Outbound: outbound, Return: ret},
		Mission: anexo.Mission{
			Start: rec.Mission.Start,
			End:   rec.Mission.End,
		},
		Funding: anexo.Funding{
			Type:   rec.Funding.Category.Anexo1Code(),
			Detail: detailOf(rec.Funding),
		},
	}
}

func detailOf(f record.Funding) string {
	if !f.Category.RequiresDetail() {
		return ""
	}
	return f.Detail
}

// legs converts both directions, letting the mission window stand in for
// the leg times that were not captured: the first outbound leg falls back
// to the mission start and the last return leg to the mission end. A
// direction with no leg at all gets a date-only leg when the bound exists.
func legs(rec record.Record) (outbound, ret anexo.Legs) {
	outbound = convertLegs(rec.Outbound)
	ret = convertLegs(rec.Return)

	if start := rec.Mission.Start; start != "" {
		if len(outbound) == 0 {
			outbound = anexo.Legs{{DateTime: start}}
		} else if outbound[0].DateTime == "" {
			outbound[0].DateTime = start
		}
	}
	if end := rec.Mission.End; end != "" {
		if len(ret) == 0 {
			ret = anexo.Legs{{DateTime: end}}
		} else if last := len(ret) - 1; ret[last].DateTime == "" {
			ret[last].DateTime = end
		}
	}
	return outbound, ret
}

func convertLegs(in []record.Leg) anexo.Legs {
	if len(in) == 0 {
		return nil
	}
	out := make(anexo.Legs, 0, len(in))
	for _, l := range in {
		out = append(out, anexo.Leg{
			Origin:      l.Origin,
			Destination: l.Destination,
			DateTime:    l.DateTime,
		})
	}
	return out
}

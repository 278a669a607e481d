// Package anexo defines the JSON payloads of the two travel forms: Anexo I
// (request for per diem and tickets) and Anexo II (post-travel report).
package anexo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies a form
type Kind string

const (
	KindAnexo1 Kind = "anexo1"
	KindAnexo2 Kind = "anexo2"
)

// ParseKind validates a form name
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindAnexo1:
		return KindAnexo1, nil
	case KindAnexo2:
		return KindAnexo2, nil
	default:
		return "", fmt.Errorf("unknown form %q", s)
	}
}

// TemplateName is the DOCX template file for the form
func (k Kind) TemplateName() string {
	return string(k) + "_template.docx"
}

// Request types of Anexo I
const (
	RequestPerDiem           = "diarias"
	RequestTickets           = "passagens"
	RequestPerDiemAndTickets = "diarias_e_passagens"
)

// Transport means of Anexo I
const (
	TransportOfficialVehicle = "veiculo_oficial"
	TransportBusCompany      = "empresa_terrestre"
	TransportAirline         = "empresa_aerea"
	TransportOwnVehicle      = "veiculo_proprio"
)

// Leg is one itinerary segment. DateTime is ISO 8601 local time.
type Leg struct {
	Origin      string `json:"origem,omitempty"`
	Destination string `json:"destino,omitempty"`
	DateTime    string `json:"data_hora,omitempty"`
}

// Legs is an ordered leg list. A single JSON object decodes as a one-leg
// list; anything else decodes as no legs.
type Legs []Leg

// UnmarshalJSON accepts a list of legs or a single leg
func (l *Legs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case data[0] == '{':
		var leg Leg
		if err := json.Unmarshal(data, &leg); err != nil {
			return err
		}
		*l = Legs{leg}
		return nil
	case data[0] == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make(Legs, 0, len(items))
		for _, item := range items {
			item = bytes.TrimSpace(item)
			if len(item) == 0 || item[0] != '{' {
				continue
			}
			var leg Leg
			if err := json.Unmarshal(item, &leg); err != nil {
				return err
			}
			out = append(out, leg)
		}
		*l = out
		return nil
	default:
		*l = nil
		return nil
	}
}

// First returns the first leg, if any
func (l Legs) First() (Leg, bool) {
	if len(l) == 0 {
		return Leg{}, false
	}
	return l[0], true
}

// Last returns the last leg, if any
func (l Legs) Last() (Leg, bool) {
	if len(l) == 0 {
		return Leg{}, false
	}
	return l[len(l)-1], true
}

// Itinerary groups legs by direction
type Itinerary struct {
	Outbound Legs `json:"ida,omitempty"`
	Return   Legs `json:"retorno,omitempty"`
}

// BankDetails of the traveller
type BankDetails struct {
	Bank    string `json:"banco,omitempty"`
	Agency  string `json:"agencia,omitempty"`
	Account string `json:"conta,omitempty"`
}

// Servant is the requesting civil servant of Anexo I
type Servant struct {
	FullName   string      `json:"nome_completo,omitempty"`
	Role       string      `json:"cargo_funcao,omitempty"`
	CPF        string      `json:"cpf,omitempty"`
	RG         string      `json:"rg,omitempty"`
	BirthDate  string      `json:"data_nascimento,omitempty"`
	Siape      string      `json:"siape,omitempty"`
	MotherName string      `json:"nome_mae,omitempty"`
	Address    string      `json:"endereco,omitempty"`
	Phone      string      `json:"telefone,omitempty"`
	Email      string      `json:"email,omitempty"`
	Bank       BankDetails `json:"dados_bancarios"`
}

// Mission window, ISO 8601 local times
type Mission struct {
	Start string `json:"inicio_data_hora,omitempty"`
	End   string `json:"termino_data_hora,omitempty"`
}

// Funding is the "débito do recurso" selection. Type uses the form's own
// code ("projeto" in Anexo I, "projetos" in Anexo II).
type Funding struct {
	Type   string `json:"tipo,omitempty"`
	Detail string `json:"detalhe,omitempty"`
}

// Transport lists the selected means of transport
type Transport struct {
	Means []string `json:"meios,omitempty"`
}

// Has reports whether a mean is selected
func (t Transport) Has(mean string) bool {
	for _, m := range t.Means {
		if m == mean {
			return true
		}
	}
	return false
}

// Justifications of Anexo I, only used when the matching flag is set
type Justifications struct {
	OutOfDeadline  string `json:"justificativa_fora_prazo,omitempty"`
	WeekendHoliday string `json:"justificativa_fds_feriado_dia_anterior,omitempty"`
}

// Anexo1Flags are the business flags of Anexo I. A nil flag was not supplied
// by the caller.
type Anexo1Flags struct {
	OutOfDeadline  *bool `json:"fora_do_prazo,omitempty"`
	WeekendHoliday *bool `json:"envolve_fds_feriado_ou_dia_anterior,omitempty"`
}

// Anexo1 is the request form payload
type Anexo1 struct {
	RequestType    string         `json:"tipo_solicitacao,omitempty"`
	RequestDate    string         `json:"data_solicitacao,omitempty"`
	Servant        Servant        `json:"servidor"`
	TravelReason   string         `json:"motivo_viagem,omitempty"`
	Itinerary      Itinerary      `json:"trechos"`
	Mission        Mission        `json:"missao"`
	Funding        Funding        `json:"debito_recurso"`
	Transport      Transport      `json:"transporte"`
	Justifications Justifications `json:"justificativas"`
	Flags          Anexo1Flags    `json:"flags"`
}

// WithTickets reports whether the request includes tickets
func (a Anexo1) WithTickets() bool {
	return a.RequestType == RequestTickets || a.RequestType == RequestPerDiemAndTickets
}

// Proposer is the traveller section of Anexo II
type Proposer struct {
	Name  string  `json:"nome,omitempty"`
	CPF   string  `json:"cpf,omitempty"`
	Siape string  `json:"siape,omitempty"`
	Organ Funding `json:"orgao"`
}

// Anexo2Flags are the business flags of Anexo II
type Anexo2Flags struct {
	LateAccounting *bool `json:"prestacao_contas_fora_prazo,omitempty"`
}

// Trip outcome values of Anexo II
const (
	TripDone    = "sim"
	TripNotDone = "nao"
)

// Anexo2 is the travel report payload
type Anexo2 struct {
	ReportDate        string      `json:"data_relatorio,omitempty"`
	Proposer          Proposer    `json:"proposto"`
	Absence           Itinerary   `json:"afastamento"`
	Activities        string      `json:"atividades_desenvolvidas,omitempty"`
	LateJustification string      `json:"justificativa_prestacao_contas_fora_prazo,omitempty"`
	TripCompleted     string      `json:"viagem_realizada,omitempty"`
	Flags             Anexo2Flags `json:"flags"`
}

// Package extraction locates the labelled blocks of a normalized Anexo I text
// and pulls their fields out. A field that cannot be found is simply absent;
// nothing in this package returns an error for missing data.
package extraction

import (
	"strings"
)

// Direction of an itinerary leg
type Direction int

const (
	Outbound Direction = iota
	Return
)

// String returns the direction name used in placeholders
func (d Direction) String() string {
	if d == Return {
		return "retorno"
	}
	return "ida"
}

// BankDetails holds the banking fields of the identification block
type BankDetails struct {
	Bank    string `json:"banco,omitempty"`
	Agency  string `json:"agencia,omitempty"`
	Account string `json:"conta,omitempty"`
}

// Identification holds the identification block as captured
type Identification struct {
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

// LegCapture is one itinerary leg as captured; DateTime is still DD/MM/YYYY text
type LegCapture struct {
	Origin      string `json:"local_origem,omitempty"`
	Destination string `json:"local_destino,omitempty"`
	DateTime    string `json:"data_hora,omitempty"`
}

// MissionCapture is the mission window as captured
type MissionCapture struct {
	Start string `json:"inicio,omitempty"`
	End   string `json:"termino,omitempty"`
}

// ParsedDocument aggregates every capture of an Anexo I text
type ParsedDocument struct {
	Identification Identification `json:"identificacao"`
	TravelReason   string         `json:"motivo_viagem,omitempty"`
	Outbound       []LegCapture   `json:"destino_ida,omitempty"`
	Return         []LegCapture   `json:"destino_retorno,omitempty"`
	Mission        MissionCapture `json:"missao"`
	FundingLabel   string         `json:"debito_recurso,omitempty"`
}

// IsEmpty reports whether nothing at all was recognized
func (d ParsedDocument) IsEmpty() bool {
	return d.Identification == (Identification{}) &&
		d.TravelReason == "" &&
		len(d.Outbound) == 0 &&
		len(d.Return) == 0 &&
		d.Mission == (MissionCapture{}) &&
		d.FundingLabel == ""
}

var (
	identificationStopLabel = NewStopLabel(IdentificationLabels)
	legFixedOrder           = NewFixedOrder(LegLabels)
	legStopLabel            = NewStopLabel(LegLabels)
	missionStopLabel        = NewStopLabel(MissionLabels)
)

// Parse runs every block extractor over normalized text
func Parse(text string) ParsedDocument {
	reason, _ := TravelReason(text)
	funding, _ := ClassifyFunding(text)
	return ParsedDocument{
		Identification: ParseIdentification(text),
		TravelReason:   reason,
		Outbound:       Legs(text, Outbound),
		Return:         Legs(text, Return),
		Mission:        Mission(text),
		FundingLabel:   funding,
	}
}

// ParseIdentification extracts the identification block with stop-label capture
func ParseIdentification(text string) Identification {
	block, ok := FindBlock(text, SectionIdentification)
	if !ok {
		return Identification{}
	}
	caps := first(identificationStopLabel.Extract(block))
	return Identification{
		FullName:   caps[KeyFullName],
		Role:       caps[KeyRole],
		CPF:        caps[KeyCPF],
		RG:         caps[KeyRG],
		BirthDate:  caps[KeyBirthDate],
		Siape:      caps[KeySiape],
		MotherName: caps[KeyMotherName],
		Address:    caps[KeyAddress],
		Phone:      caps[KeyPhone],
		Email:      caps[KeyEmail],
		Bank: BankDetails{
			Bank:    caps[KeyBank],
			Agency:  caps[KeyAgency],
			Account: caps[KeyAccount],
		},
	}
}

// TravelReason returns the free-text justification block
func TravelReason(text string) (string, bool) {
	return FindBlock(text, SectionReason)
}

// Legs extracts the itinerary legs of one direction in document order. Each
// "Local de Origem" starts a leg. The fixed-order pattern is preferred; a leg
// it cannot match has each label captured independently instead.
func Legs(text string, dir Direction) []LegCapture {
	section := SectionOutbound
	if dir == Return {
		section = SectionReturn
	}
	block, ok := FindBlock(text, section)
	if !ok {
		return nil
	}

	var legs []LegCapture
	for _, segment := range LegLabels.Segments(block) {
		for _, caps := range extractWithFallback(segment, legFixedOrder, legStopLabel) {
			legs = append(legs, LegCapture{
				Origin:      caps[KeyOrigin],
				Destination: caps[KeyDestination],
				DateTime:    caps[KeyDateTime],
			})
		}
	}
	return legs
}

// Mission extracts the mission window
func Mission(text string) MissionCapture {
	block, ok := FindBlock(text, SectionMission)
	if !ok {
		return MissionCapture{}
	}
	caps := first(missionStopLabel.Extract(block))
	return MissionCapture{
		Start: caps[KeyMissionStart],
		End:   caps[KeyMissionEnd],
	}
}

func first(caps []Captures) Captures {
	if len(caps) == 0 {
		return Captures{}
	}
	return caps[0]
}

// Summary lists the recognized top-level blocks, for logging
func (d ParsedDocument) Summary() string {
	var found []string
	if d.Identification != (Identification{}) {
		found = append(found, SectionIdentification.String())
	}
	if d.TravelReason != "" {
		found = append(found, SectionReason.String())
	}
	if len(d.Outbound) > 0 {
		found = append(found, SectionOutbound.String())
	}
	if len(d.Return) > 0 {
		found = append(found, SectionReturn.String())
	}
	if d.Mission != (MissionCapture{}) {
		found = append(found, SectionMission.String())
	}
	if d.FundingLabel != "" {
		found = append(found, SectionFunding.String())
	}
	if len(found) == 0 {
		return "none"
	}
	return strings.Join(found, ",")
}

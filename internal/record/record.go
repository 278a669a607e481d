// Package record turns raw Anexo I captures into a typed travel record:
// identifiers reduced to digits, dates converted to ISO form and the funding
// label classified.
package record

import (
	"regexp"
	"strings"

	"github.com/a3tai/mcp-diarias/internal/extraction"
)

// BankDetails are copied verbatim from the capture
type BankDetails struct {
	Bank    string
	Agency  string
	Account string
}

// Person is the traveller ("proposto")
type Person struct {
	FullName   string
	Role       string
	CPF        string // digits only
	RG         string
	BirthDate  string // YYYY-MM-DD
	Siape      string // digits only
	MotherName string
	Address    string
	Phone      string // digits only
	Email      string
	Bank       BankDetails
}

// Leg is one itinerary leg. DateTime is YYYY-MM-DDTHH:MM or empty.
type Leg struct {
	Origin      string
	Destination string
	DateTime    string
}

// IsEmpty reports whether the leg carries no data
func (l Leg) IsEmpty() bool {
	return l == Leg{}
}

// Complete reports whether both endpoints are known
func (l Leg) Complete() bool {
	return l.Origin != "" && l.Destination != ""
}

// Mission is the activity window, both ends in YYYY-MM-DDTHH:MM
type Mission struct {
	Start string
	End   string
}

// Record is the structured travel request recovered from an Anexo I
type Record struct {
	Person       Person
	TravelReason string
	Outbound     []Leg
	Return       []Leg
	Mission      Mission
	Funding      Funding
}

var trailingHashes = regexp.MustCompile(`\s*#+\s*$`)

// StripTrailingHashes removes the "###" filler some forms leave after the
// justification text
func StripTrailingHashes(s string) string {
	return strings.TrimSpace(trailingHashes.ReplaceAllString(s, ""))
}

// Assemble converts a parsed document into a record. Values that fail their
// conversion become absent.
func Assemble(doc extraction.ParsedDocument) Record {
	id := doc.Identification
	birth, _ := ISODate(id.BirthDate)

	return Record{
		Person: Person{
			FullName:   id.FullName,
			Role:       id.Role,
			CPF:        digitsOrEmpty(id.CPF),
			RG:         id.RG,
			BirthDate:  birth,
			Siape:      digitsOrEmpty(id.Siape),
			MotherName: id.MotherName,
			Address:    id.Address,
			Phone:      digitsOrEmpty(id.Phone),
			Email:      id.Email,
			Bank: BankDetails{
				Bank:    id.Bank.Bank,
				Agency:  id.Bank.Agency,
				Account: id.Bank.Account,
			},
		},
		TravelReason: StripTrailingHashes(doc.TravelReason),
		Outbound:     assembleLegs(doc.Outbound),
		Return:       assembleLegs(doc.Return),
		Mission: Mission{
			Start: isoDateTimeOrEmpty(doc.Mission.Start),
			End:   isoDateTimeOrEmpty(doc.Mission.End),
		},
		Funding: ClassifyFundingLabel(doc.FundingLabel),
	}
}

func assembleLegs(caps []extraction.LegCapture) []Leg {
	var legs []Leg
	for _, c := range caps {
		leg := Leg{
			Origin:      strings.TrimSpace(c.Origin),
			Destination: strings.TrimSpace(c.Destination),
			DateTime:    isoDateTimeOrEmpty(c.DateTime),
		}
		if leg.IsEmpty() {
			continue
		}
		legs = append(legs, leg)
	}
	return legs
}

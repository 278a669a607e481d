package extraction

import (
	"regexp"
	"strings"
)

// Section identifies a top-level block of the Anexo I form
type Section int

const (
	SectionIdentification Section = iota
	SectionReason
	SectionOutbound
	SectionReturn
	SectionMission
	SectionFunding
)

// String returns the section name
func (s Section) String() string {
	switch s {
	case SectionIdentification:
		return "identificacao"
	case SectionReason:
		return "motivo_viagem"
	case SectionOutbound:
		return "destino_ida"
	case SectionReturn:
		return "destino_retorno"
	case SectionMission:
		return "missao"
	case SectionFunding:
		return "debito_recurso"
	default:
		return "unknown"
	}
}

// sectionAnchors are listed in form order. A block runs from its anchor to the
// first anchor of any later section, or to the end of the text.
var sectionAnchors = []*regexp.Regexp{
	SectionIdentification: regexp.MustCompile(phrasePattern("IDENTIFICAÇÃO") + `\s*:?`),
	SectionReason:         regexp.MustCompile(labelPattern("DESCRIÇÃO DO MOTIVO DA VIAGEM")),
	SectionOutbound:       regexp.MustCompile(labelPattern("DESTINO (Ida)")),
	SectionReturn:         regexp.MustCompile(labelPattern("DESTINO (Retorno)")),
	SectionMission:        regexp.MustCompile(labelPattern("DATA/HORA DA MISSÃO")),
	SectionFunding:        regexp.MustCompile(labelPattern("DÉBITO DO RECURSO")),
}

// FindBlock returns the trimmed body of a section. ok is false when the
// section anchor does not occur or the body is empty.
func FindBlock(text string, section Section) (string, bool) {
	if int(section) < 0 || int(section) >= len(sectionAnchors) {
		return "", false
	}

	loc := sectionAnchors[section].FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	start := loc[1]
	end := len(text)

	for _, anchor := range sectionAnchors[section+1:] {
		if next := anchor.FindStringIndex(text[start:]); next != nil && start+next[0] < end {
			end = start + next[0]
		}
	}

	block := strings.TrimSpace(text[start:end])
	return block, block != ""
}

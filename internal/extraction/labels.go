package extraction

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Label is a field label printed on the form, the key its value is stored
// under, and an optional shape the value must start with.
type Label struct {
	Key    string
	Phrase string
	Shape  *regexp.Regexp

	re *regexp.Regexp
}

// LabelSet is the closed list of labels that may appear inside one block. Both
// extraction strategies for a block share the same set.
type LabelSet []Label

var accentClasses = map[rune]string{
	'a': "[aáàâãä]",
	'e': "[eéèêë]",
	'i': "[iíìîï]",
	'o': "[oóòôõö]",
	'u': "[uúùûü]",
	'c': "[cç]",
	'n': "[nñ]",
}

// fold strips diacritics: "Agência" -> "Agencia".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// phrasePattern builds a case-insensitive, accent-tolerant pattern for a
// phrase. Whitespace may be missing or repeated, "/" is optional and so is "-".
func phrasePattern(phrase string) string {
	var b strings.Builder
	b.WriteString(`(?i)`)
	prevSpace := false
	for _, r := range strings.ToLower(fold(phrase)) {
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteString(`\s*`)
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		switch {
		case r == '/':
			b.WriteString(`\s*/?\s*`)
		case r == '-':
			b.WriteString(`-?`)
		default:
			if class, ok := accentClasses[r]; ok {
				b.WriteString(class)
			} else {
				b.WriteString(regexp.QuoteMeta(string(r)))
			}
		}
	}
	return b.String()
}

// labelPattern matches "<phrase>:" with optional space before the colon.
func labelPattern(phrase string) string {
	return `\b` + phrasePattern(phrase) + `\s*:`
}

func newLabel(key, phrase, shape string) Label {
	l := Label{
		Key:    key,
		Phrase: phrase,
		re:     regexp.MustCompile(labelPattern(phrase)),
	}
	if shape != "" {
		l.Shape = regexp.MustCompile(`^(?:` + shape + `)`)
	}
	return l
}

// value applies the label's shape to a raw segment. Free-text labels get the
// segment with whitespace collapsed.
func (l Label) value(segment string) (string, bool) {
	v := strings.Join(strings.Fields(segment), " ")
	if l.Shape != nil {
		v = strings.TrimSpace(l.Shape.FindString(v))
	}
	return v, v != ""
}

const dateTimeShape = `[0-3]\d/[0-1]\d/\d{4}\s+\d{2}:\d{2}(?::\d{2})?`

// Field keys
const (
	KeyFullName   = "nome_completo"
	KeyRole       = "cargo_funcao"
	KeyCPF        = "cpf"
	KeyRG         = "rg"
	KeyBirthDate  = "data_nascimento"
	KeySiape      = "siape"
	KeyMotherName = "nome_mae"
	KeyAddress    = "endereco"
	KeyPhone      = "telefone"
	KeyEmail      = "email"
	KeyBank       = "banco"
	KeyAgency     = "agencia"
	KeyAccount    = "conta"

	KeyOrigin      = "local_origem"
	KeyDestination = "local_destino"
	KeyDateTime    = "data_hora"

	KeyMissionStart = "inicio"
	KeyMissionEnd   = "termino"
)

// IdentificationLabels is the label set of the identification block. Its
// order on the form is not guaranteed.
var IdentificationLabels = LabelSet{
	newLabel(KeyFullName, "Nome completo", ""),
	newLabel(KeyRole, "Cargo ou Função que Ocupa", ""),
	newLabel(KeyCPF, "CPF", `[0-9.\-]{11,14}`),
	newLabel(KeyRG, "RG", `[0-9][0-9.\-xX]*`),
	newLabel(KeyBirthDate, "Data de Nascimento", `[0-3]\d/[0-1]\d/\d{4}`),
	newLabel(KeySiape, "Siape", `\d+`),
	newLabel(KeyMotherName, "Nome da Mãe", ""),
	newLabel(KeyAddress, "Endereço", ""),
	newLabel(KeyPhone, "Telefone", `[\d()+\-\s]*\d`),
	newLabel(KeyEmail, "E-mail", `[^\s@]+@[^\s@]+`),
	newLabel(KeyBank, "Banco", ""),
	newLabel(KeyAgency, "Agência", `[0-9][0-9\-xX]*`),
	newLabel(KeyAccount, "Conta", `[0-9][0-9.\-xX]*`),
}

// LegLabels is the label set of an itinerary leg, in the order the form
// prints them.
var LegLabels = LabelSet{
	newLabel(KeyOrigin, "Local de Origem", ""),
	newLabel(KeyDestination, "Local de Destino", ""),
	newLabel(KeyDateTime, "Data/Hora", dateTimeShape),
}

// MissionLabels is the label set of the mission window block.
var MissionLabels = LabelSet{
	newLabel(KeyMissionStart, "Data/Hora Início", dateTimeShape),
	newLabel(KeyMissionEnd, "Data/Hora Término", dateTimeShape),
}

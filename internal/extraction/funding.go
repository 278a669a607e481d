package extraction

import (
	"regexp"
	"strings"
)

// Raw funding labels as produced by ClassifyFunding
const (
	FundingCCHSA   = "CCHSA"
	FundingCAVN    = "CAVN"
	FundingProjeto = "PROJETO"
	FundingOutros  = "OUTROS"
)

const checkedBox = `[\(\[]\s*[xX✓✔●]\s*[\)\]]`

var (
	markedCCHSA   = regexp.MustCompile(checkedBox + `\s*CCHSA\b`)
	markedCAVN    = regexp.MustCompile(checkedBox + `\s*CAVN\b`)
	markedProjeto = regexp.MustCompile(`(?i)` + checkedBox + `\s*PROJETOS?\b[ \t]*:?([^\n]*)`)
	markedOutros  = regexp.MustCompile(`(?i)` + checkedBox + `\s*Outros\b[ \t]*:?([^\n]*)`)
	plainOutros   = regexp.MustCompile(`(?i)\bOutros[ \t]*:([^\n]+)`)

	// Another checkbox on the same line ends a free-text detail.
	anyBox = regexp.MustCompile(`[\(\[]\s*[xX✓✔●]?\s*[\)\]]`)
)

// ClassifyFunding reads the funding-source block and returns the raw label of
// the first marker that matches, in priority order CCHSA, CAVN, project,
// marked "Outros", unmarked "Outros: <detail>". Details are appended after a
// colon ("OUTROS: Projeto X").
func ClassifyFunding(text string) (string, bool) {
	block, ok := FindBlock(text, SectionFunding)
	if !ok {
		return "", false
	}

	if markedCCHSA.MatchString(block) {
		return FundingCCHSA, true
	}
	if markedCAVN.MatchString(block) {
		return FundingCAVN, true
	}
	if m := markedProjeto.FindStringSubmatch(block); m != nil {
		return withDetail(FundingProjeto, m[1]), true
	}
	if m := markedOutros.FindStringSubmatch(block); m != nil {
		return withDetail(FundingOutros, m[1]), true
	}
	if m := plainOutros.FindStringSubmatch(block); m != nil {
		if detail := cleanDetail(m[1]); detail != "" {
			return withDetail(FundingOutros, detail), true
		}
	}
	return "", false
}

func withDetail(label, raw string) string {
	if detail := cleanDetail(raw); detail != "" {
		return label + ": " + detail
	}
	return label
}

// cleanDetail cuts a detail at the next checkbox and strips fill-in rules.
func cleanDetail(raw string) string {
	if loc := anyBox.FindStringIndex(raw); loc != nil {
		raw = raw[:loc[0]]
	}
	return strings.Trim(raw, " \t:_.…")
}

// Package textnorm turns text pulled out of a PDF or DOCX into the canonical
// form the field extractor works on: NFC, one space between words, at most one
// blank line in a row, and "label:" lines joined with the value that the
// source layout wrapped onto the next line.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\x{00A0}\x{2000}-\x{200A}\x{202F}\x{205F}\x{3000}]+`)

	// A colon followed by whitespace or the end of the line marks a label,
	// wherever it sits. A merged line always carries one.
	labelColon = regexp.MustCompile(`:(\s|$)`)

	invisible = strings.NewReplacer(
		"\u200B", "",
		"\u200C", "",
		"\u200D", "",
		"\uFEFF", "",
		"\u00AD", "",
	)
)

// Normalize returns the canonical form of raw extracted text. It is
// idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	// Invisible characters go first: dropping one may bring a base letter
	// and a combining mark together.
	s := norm.NFC.String(invisible.Replace(raw))
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	split := strings.Split(s, "\n")
	lines := make([]string, 0, len(split))
	for _, line := range split {
		line = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
		if line == "" && (len(lines) == 0 || lines[len(lines)-1] == "") {
			continue
		}
		lines = append(lines, line)
	}

	lines = mergeLabelLines(lines)
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// mergeLabelLines joins a colon-terminated line with the next one unless the
// next line is blank or looks like a label of its own. Under-merging is
// preferred: two distinct labels must never collapse into one value.
func mergeLabelLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasSuffix(line, ":") && i+1 < len(lines) {
			next := lines[i+1]
			if next != "" && !IsLabelLine(next) {
				out = append(out, line+" "+next)
				i++
				continue
			}
		}
		out = append(out, line)
	}
	return out
}

// IsLabelLine reports whether line holds a colon followed by whitespace or
// the end of the line, as in "Label:" or "Label: value".
func IsLabelLine(line string) bool {
	return labelColon.MatchString(line)
}

package extraction

import (
	"regexp"
	"sort"
	"strings"
)

// Captures holds the values found for one group of labels, keyed by Label.Key.
// Keys that were not found are absent; values are never empty.
type Captures map[string]string

// Strategy pulls label values out of a bounded block
type Strategy interface {
	Name() string
	Extract(block string) []Captures
}

// FixedOrder anchors every label of the set in one pattern, in set order. It
// cannot assign a value to the wrong neighbour, so it is tried first wherever
// the form keeps its field order. The block is cut at each occurrence of the
// first label and every segment yields at most one group.
type FixedOrder struct {
	labels LabelSet
	re     *regexp.Regexp
}

// NewFixedOrder compiles the ordered pattern for labels. The last label must
// carry a shape, otherwise its value is taken up to the end of the line.
func NewFixedOrder(labels LabelSet) *FixedOrder {
	var b strings.Builder
	b.WriteString(`(?s)`)
	for i, l := range labels {
		b.WriteString(labelPattern(l.Phrase))
		b.WriteString(`\s*`)
		switch {
		case i < len(labels)-1:
			b.WriteString(`(.*?)\s*`)
		case l.Shape != nil:
			b.WriteString(`(` + strings.TrimPrefix(l.Shape.String(), `^`) + `)`)
		default:
			b.WriteString(`([^\n]*)`)
		}
	}
	return &FixedOrder{labels: labels, re: regexp.MustCompile(b.String())}
}

// Name returns the strategy name
func (f *FixedOrder) Name() string {
	return "fixed_order"
}

// Extract returns one Captures per matching segment, in document order. A
// match whose value runs over another label of the set is discarded.
func (f *FixedOrder) Extract(block string) []Captures {
	var out []Captures
	for _, segment := range f.labels.Segments(block) {
		m := f.re.FindStringSubmatch(segment)
		if m == nil || f.labels.containsLabel(m[1:]) {
			continue
		}
		caps := make(Captures, len(f.labels))
		for i, l := range f.labels {
			if v, ok := l.value(m[i+1]); ok {
				caps[l.Key] = v
			}
		}
		if len(caps) > 0 {
			out = append(out, caps)
		}
	}
	return out
}

// Segments cuts block before every occurrence of the first label but the
// first one. Text ahead of the first occurrence stays in the first segment.
func (ls LabelSet) Segments(block string) []string {
	if len(ls) == 0 {
		return []string{block}
	}
	locs := ls[0].re.FindAllStringIndex(block, -1)
	if len(locs) < 2 {
		return []string{block}
	}
	segments := make([]string, 0, len(locs))
	start := 0
	for _, loc := range locs[1:] {
		segments = append(segments, block[start:loc[0]])
		start = loc[0]
	}
	return append(segments, block[start:])
}

func (ls LabelSet) containsLabel(values []string) bool {
	for _, v := range values {
		for _, l := range ls {
			if l.re.MatchString(v) {
				return true
			}
		}
	}
	return false
}

// StopLabel captures each label's value up to the next occurrence of any label
// of the set, so a reordered form still yields correct boundaries. Only the
// first occurrence of each label is used.
type StopLabel struct {
	labels LabelSet
}

// NewStopLabel creates a stop-label strategy over labels
func NewStopLabel(labels LabelSet) *StopLabel {
	return &StopLabel{labels: labels}
}

// Name returns the strategy name
func (s *StopLabel) Name() string {
	return "stop_label"
}

type occurrence struct {
	label      Label
	start, end int
}

// Extract returns at most one Captures
func (s *StopLabel) Extract(block string) []Captures {
	var occs []occurrence
	for _, l := range s.labels {
		for _, loc := range l.re.FindAllStringIndex(block, -1) {
			occs = append(occs, occurrence{label: l, start: loc[0], end: loc[1]})
		}
	}
	if len(occs) == 0 {
		return nil
	}

	sort.SliceStable(occs, func(i, j int) bool {
		if occs[i].start != occs[j].start {
			return occs[i].start < occs[j].start
		}
		return occs[i].end > occs[j].end
	})

	// Drop matches nested inside an earlier, longer label.
	kept := []occurrence{occs[0]}
	for _, o := range occs[1:] {
		if o.start < kept[len(kept)-1].end {
			continue
		}
		kept = append(kept, o)
	}

	caps := make(Captures)
	used := make(map[string]bool, len(s.labels))
	for i, o := range kept {
		if used[o.label.Key] {
			continue
		}
		used[o.label.Key] = true
		stop := len(block)
		if i+1 < len(kept) {
			stop = kept[i+1].start
		}
		if v, ok := o.label.value(block[o.end:stop]); ok {
			caps[o.label.Key] = v
		}
	}
	if len(caps) == 0 {
		return nil
	}
	return []Captures{caps}
}

// extractWithFallback runs primary and only falls back when primary found
// nothing. Results of the two strategies are never merged.
func extractWithFallback(block string, primary, fallback Strategy) []Captures {
	if caps := primary.Extract(block); len(caps) > 0 {
		return caps
	}
	return fallback.Extract(block)
}

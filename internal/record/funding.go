package record

import (
	"strings"
)

// Category is the funding-source classification ("débito do recurso")
type Category int

const (
	CategoryUnclassified Category = iota
	CategoryCCHSA
	CategoryCAVN
	CategoryProject
	CategoryOther
)

// String returns the category name
func (c Category) String() string {
	switch c {
	case CategoryCCHSA:
		return "cchsa"
	case CategoryCAVN:
		return "cavn"
	case CategoryProject:
		return "projeto"
	case CategoryOther:
		return "outros"
	default:
		return "unclassified"
	}
}

// Anexo1Code is the value the Anexo I payload uses for the category
func (c Category) Anexo1Code() string {
	if c == CategoryUnclassified {
		return ""
	}
	return c.String()
}

// Anexo2Code is the value the Anexo II payload uses for the category
func (c Category) Anexo2Code() string {
	if c == CategoryProject {
		return "projetos"
	}
	return c.Anexo1Code()
}

// RequiresDetail reports whether the category needs a free-text detail
func (c Category) RequiresDetail() bool {
	return c == CategoryProject || c == CategoryOther
}

// ParseCategoryCode accepts either form's code
func ParseCategoryCode(code string) Category {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "cchsa":
		return CategoryCCHSA
	case "cavn":
		return CategoryCAVN
	case "projeto", "projetos":
		return CategoryProject
	case "outros":
		return CategoryOther
	default:
		return CategoryUnclassified
	}
}

// Funding is a classified funding source
type Funding struct {
	Category Category
	Detail   string
}

var categoryPrefixes = []struct {
	prefix   string
	category Category
}{
	{"CCHSA", CategoryCCHSA},
	{"CAVN", CategoryCAVN},
	{"PROJETO", CategoryProject},
	{"OUTROS", CategoryOther},
}

// ClassifyFundingLabel maps a raw funding label by case-insensitive prefix.
// Text after the first colon becomes the detail for project and other.
func ClassifyFundingLabel(raw string) Funding {
	label := strings.TrimSpace(raw)
	upper := strings.ToUpper(label)
	for _, p := range categoryPrefixes {
		if !strings.HasPrefix(upper, p.prefix) {
			continue
		}
		f := Funding{Category: p.category}
		if p.category.RequiresDetail() {
			if _, detail, found := strings.Cut(label, ":"); found {
				f.Detail = strings.TrimSpace(detail)
			}
		}
		return f
	}
	return Funding{}
}

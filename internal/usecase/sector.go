package usecase

import (
	"strings"

	"github.com/internx/internx/pkg/textx"
)

// SectorOther is reported when no keyword matches.
const SectorOther = "General"

// sectorRules are checked in order; the first rule with a keyword present in
// the listing's title, company or skills wins. skillTerms only match a whole
// required skill, for words too common to trust in a title.
var sectorRules = []struct {
	sector     string
	keywords   []string
	skillTerms []string
}{
	{"FinTech", []string{"fintech", "finance", "financial", "bank", "banking", "payments", "trading", "capital", "invest"}, nil},
	{"AI/ML", []string{"machine learning", "deep learning", "ai", "ml", "nlp", "llm", "computer vision", "tensorflow", "pytorch"}, nil},
	{"HealthTech", []string{"health", "healthcare", "medical", "clinical", "biotech", "pharma"}, nil},
	{"E-commerce", []string{"e-commerce", "ecommerce", "retail", "shop", "marketplace"}, nil},
	{"Design", []string{"design", "ux", "ui", "ux/ui", "figma", "product design"}, nil},
	{"Cloud", []string{"cloud", "aws", "azure", "gcp", "devops", "kubernetes", "docker", "terraform"}, nil},
	{"Data", []string{"data", "analytics", "pandas", "sql", "bi", "data science"}, nil},
	{"Frontend", []string{"frontend", "front-end", "react", "javascript", "typescript", "css", "vue"}, nil},
	{"Backend", []string{"backend", "back-end", "api", "apis", "rest apis", "flask", "django", "golang", "java", "python"}, []string{"go"}},
}

// InferSector returns explicit when set, otherwise a sector guessed from the
// listing's text.
func InferSector(explicit, title, company string, skills []string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return s
	}
	tokens := tokenize(title + " " + company + " " + strings.Join(skills, " | "))
	for _, rule := range sectorRules {
		for _, kw := range rule.keywords {
			if containsPhrase(tokens, tokenize(kw)) {
				return rule.sector
			}
		}
		for _, term := range rule.skillTerms {
			for _, sk := range skills {
				if textx.Fold(sk) == term {
					return rule.sector
				}
			}
		}
	}
	return SectorOther
}

// tokenize lowercases s and splits it on anything that is not a letter,
// digit, '+' or '#'.
func tokenize(s string) []string {
	return strings.FieldsFunc(textx.Fold(s), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '+', r == '#':
			return false
		case r > 127:
			return false
		}
		return true
	})
}

// containsPhrase reports whether needle occurs as a contiguous token run.
func containsPhrase(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return true
	}
	return false
}

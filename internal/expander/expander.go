// Package expander generates bounded sets of semantically equivalent
// query variants from a synonym table.
package expander

import (
	"regexp"
	"strings"
)

// Variant generation methods.
const (
	MethodOriginal = "original"
	MethodSynonym  = "synonym"
)

// Variant is one normalized query string derived from the original query.
type Variant struct {
	Text   string
	Method string
}

// tokenPattern matches Han-script runs and ASCII alphanumeric runs, the
// token shapes the corpus domain uses.
var tokenPattern = regexp.MustCompile(`[\p{Han}]+|[a-zA-Z0-9]+`)

// Expander substitutes synonyms one token at a time. It never fails: an
// empty or unmatched query expands to just the original.
type Expander struct {
	synonyms map[string][]string
}

// New creates an expander over the given synonym table. A nil table is
// valid and produces original-only expansions.
func New(synonyms map[string][]string) *Expander {
	if synonyms == nil {
		synonyms = map[string][]string{}
	}
	return &Expander{synonyms: synonyms}
}

// Normalize canonicalizes a query for matching and cache keying: trims,
// collapses internal whitespace and lowercases ASCII letters.
func Normalize(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Expand returns up to maxVariants variants of query, the normalized
// original always first. For each query token present in the synonym
// table, one variant per synonym is generated by substituting that
// single token; variants are deduplicated and generation stops at the
// bound. Deterministic for a fixed table and input.
func (e *Expander) Expand(query string, maxVariants int) []Variant {
	original := Normalize(query)
	if maxVariants < 1 {
		maxVariants = 1
	}

	variants := []Variant{{Text: original, Method: MethodOriginal}}
	seen := map[string]struct{}{original: {}}

	if len(variants) >= maxVariants {
		return variants
	}

	for _, token := range tokenPattern.FindAllString(original, -1) {
		syns, ok := e.synonyms[token]
		if !ok {
			continue
		}
		for _, syn := range syns {
			if syn == "" || syn == token {
				continue
			}
			candidate := strings.Replace(original, token, syn, 1)
			if _, dup := seen[candidate]; dup {
				continue
			}
			seen[candidate] = struct{}{}
			variants = append(variants, Variant{Text: candidate, Method: MethodSynonym})
			if len(variants) >= maxVariants {
				return variants
			}
		}
	}

	return variants
}

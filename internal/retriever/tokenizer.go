package retriever

import (
	"regexp"
	"strings"
)

// runPattern matches Han-script runs and ASCII alphanumeric runs. This
// mirrors the tokenization the material corpus was written for: Chinese
// text has no word boundaries, so Han runs are additionally broken into
// character bigrams below.
var runPattern = regexp.MustCompile(`[\p{Han}]+|[a-zA-Z0-9]+`)

// Tokenize splits text into search terms: lowercased alphanumeric runs,
// plus for each Han run the run itself and its character bigrams, so
// multi-character compounds can match partially.
func Tokenize(text string) []string {
	runs := runPattern.FindAllString(strings.ToLower(text), -1)
	if len(runs) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(runs))
	for _, run := range runs {
		tokens = append(tokens, run)
		r := []rune(run)
		if !isHan(r[0]) || len(r) <= 2 {
			continue
		}
		for i := 0; i+2 <= len(r); i++ {
			tokens = append(tokens, string(r[i:i+2]))
		}
	}
	return tokens
}

func isHan(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

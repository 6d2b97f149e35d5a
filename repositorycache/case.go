package repositorycache

import (
	"strings"
	"unicode"
)

// toSnake turns a Go type name into a snake_case namespace. Anything that is
// not a letter or digit separates words, so "*model.Employee" becomes
// "model_employee".
func toSnake(s string) string {
	var words []string
	var word []rune

	flush := func() {
		if len(word) > 0 {
			words = append(words, strings.ToLower(string(word)))
			word = word[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(word) > 0 {
			prev := word[len(word)-1]
			acronymEnd := unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !unicode.IsUpper(prev) || acronymEnd {
				flush()
			}
		}
		word = append(word, r)
	}
	flush()

	return strings.Join(words, "_")
}

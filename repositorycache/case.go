package repositorycache

import (
	"strings"
	"unicode"
)

// toSnake lowercases the words of s and joins them with underscores, so a
// configured namespace such as "GameConfig" or "game-config v2" becomes a
// clean key segment ("game_config", "game_config_v2").
func toSnake(s string) string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// splitWords breaks s at anything that is not a letter or digit, at a
// lower-to-upper change and before the last capital of an acronym
// ("HTTPCache" gives HTTP and Cache). Digits stay with the word before them.
func splitWords(s string) []string {
	runes := []rune(s)
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()

	return words
}

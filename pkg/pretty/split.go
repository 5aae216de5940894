package pretty

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const customCategory = "custom"

// upperWords stay upper case in labels.
var upperWords = map[string]bool{"cpu": true, "os": true, "sha": true}

// splitKey turns VERGEN_GIT_COMMIT_DATE into ("git", "Commit Date"). Keys
// outside the VERGEN_ namespace, or too short to carry a category, land in
// the custom category with their lower-cased name as label.
func splitKey(key string) (category, label string) {
	lower := strings.ToLower(key)
	if !strings.HasPrefix(lower, "vergen") {
		return customCategory, lower
	}
	var parts []string
	for _, p := range strings.Split(lower, "_") {
		if p != "vergen" && p != "" {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return customCategory, lower
	case 1:
		return customCategory, parts[0]
	}
	words := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		words = append(words, properCase(p))
	}
	return parts[0], strings.Join(words, " ")
}

func properCase(word string) string {
	if upperWords[word] {
		return strings.ToUpper(word)
	}
	return cases.Title(language.English).String(word)
}

// fieldName is the serialized name of a var: category plus snake-cased label.
func fieldName(category, label string) string {
	return category + "_" + strings.ToLower(strings.ReplaceAll(label, " ", "_"))
}

package businessflow

import (
	"regexp"
	"strings"

	"github.com/amirphl/mini-crm/utils"
)

// namePlaceholder matches {name} and [[name]] with optional interior whitespace
var namePlaceholder = regexp.MustCompile(`\{\s*name\s*\}|\[\[\s*name\s*\]\]`)

// Personalize replaces the highest-priority name placeholder in template with name.
// Priority: {name}, then spaced braces, then [[name]], then spaced brackets; among equals the
// earliest occurrence wins. Every occurrence of the chosen token is replaced, other forms are
// left as written. ok is false when the template has no placeholder.
func Personalize(template, name string) (text string, ok bool) {
	tokens := namePlaceholder.FindAllString(template, -1)
	if len(tokens) == 0 {
		return template, false
	}

	chosen := tokens[0]
	for _, token := range tokens[1:] {
		if placeholderRank(token) < placeholderRank(chosen) {
			chosen = token
		}
	}

	return strings.ReplaceAll(template, chosen, name), true
}

func placeholderRank(token string) int {
	rank := 0
	if strings.HasPrefix(token, "[[") {
		rank = 2
	}
	if token != "{name}" && token != "[[name]]" {
		rank++
	}
	return rank
}

// ResolveDisplayName returns name, or the fallback greeting when name is blank
func ResolveDisplayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return utils.FallbackDisplayName
	}
	return name
}

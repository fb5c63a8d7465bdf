package utils

import (
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeTags slugifies tags ("High Protein" -> "high-protein") and drops
// empties and duplicates while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		s := slug.Make(strings.TrimSpace(t))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// TagLabel turns a slug back into a display label ("high-protein" -> "High Protein").
func TagLabel(tag string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(tag, "-", " "))
}

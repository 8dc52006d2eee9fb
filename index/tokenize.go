package index

import "strings"

// tokenize splits text into the normalized tokens the inverted index is
// keyed by: lowercased, split on runs of non-alphanumeric characters,
// with tokens shorter than 2 characters dropped (spec §4.F "Indices").
func tokenize(text string) []string {
	lower := strings.ToLower(text)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		return !isAlnum
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

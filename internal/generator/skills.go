package generator

import "strings"

// ParseSkills splits a free-form skills line on commas, semicolons and
// newlines. Entries are trimmed, blanks dropped and duplicates removed
// case-insensitively, keeping the first spelling.
func ParseSkills(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})

	seen := make(map[string]bool, len(fields))
	skills := make([]string, 0, len(fields))
	for _, f := range fields {
		s := strings.TrimSpace(f)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, s)
	}
	return skills
}

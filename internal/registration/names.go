package registration

import "strings"

// ParseGameNames splits a comma-separated list, trims each name and drops empties.
// Duplicates are kept; each one is registered as its own entry.
func ParseGameNames(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

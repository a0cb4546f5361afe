package reports

import (
	"regexp"
	"strings"
)

// Metadata carries key/value pairs recovered from a report's header line.
// Keys are lower-cased with spaces replaced by underscores.
type Metadata map[string]string

// Get returns the value for key or fallback when absent.
func (m Metadata) Get(key, fallback string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Key="Value" or Key=["Value"], key of one or two words.
var metadataRe = regexp.MustCompile(`(?i)([a-z0-9_]+(?:\s+[a-z0-9_]+)?)\s*=\s*\[?"([^"]+)"\]?`)

// ParseMetadata extracts Key="Value" tokens from a header line. Text that
// does not match the pattern is ignored.
func ParseMetadata(line string) Metadata {
	md := Metadata{}
	line = strings.ReplaceAll(line, `""`, `"`)
	for _, m := range metadataRe.FindAllStringSubmatch(line, -1) {
		key := strings.ToLower(strings.Join(strings.Fields(m[1]), "_"))
		md[key] = m[2]
	}
	return md
}

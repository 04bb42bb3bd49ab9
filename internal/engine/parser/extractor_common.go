package parser

import (
	"strings"
)

const (
	defaultSpecifier   = "default"
	namespaceSpecifier = "*"
)

func trimQuoted(value string) string {
	value = strings.TrimSpace(value)
	return strings.Trim(value, "\"'`")
}

func appendUnique(values []string, seen map[string]bool, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return values
	}
	if seen[value] {
		return values
	}
	seen[value] = true
	return append(values, value)
}

func isPrivatePythonName(name string) bool {
	return strings.HasPrefix(name, "_")
}

package util

import (
	"regexp"
	"strings"
)

var reInnerSpace = regexp.MustCompile(`[ \t]+`)

func StringPtr(v string) *string { return &v }

// SplitLines keeps empty lines so line numbers match the source text.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// HyphenateSpaces turns "V 123" into "V-123".
func HyphenateSpaces(input string) string {
	return reInnerSpace.ReplaceAllString(input, "-")
}

func HasSuffixFold(name string, suffixes ...string) bool {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

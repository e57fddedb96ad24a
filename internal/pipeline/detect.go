package pipeline

import (
	"regexp"
	"strings"

	"pedidos/internal"
	"pedidos/internal/util"
)

var (
	variantMarker = regexp.MustCompile(`(?i)V[-\s]`)

	customerPattern = regexp.MustCompile(`(?i)CLIENTE:\s*\d*\s*-?\s*(.+)`)

	// Tried in order; the first pattern with a match wins.
	deliveryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Previs[ãa]o de entrega.*?(\d{2}/\d{2}/\d{4})`),
		regexp.MustCompile(`(?i)Entrega:\s*(\d{2}/\d{2}/\d{4})`),
	}
)

// IsCandidateLine reports whether a physical line looks like an order item:
// it must carry a variant marker ("V-" or "V "), "mm" and "kg" together.
func IsCandidateLine(line string) bool {
	if !variantMarker.MatchString(line) {
		return false
	}
	lower := strings.ToLower(line)
	return strings.Contains(lower, "mm") && strings.Contains(lower, "kg")
}

func DetectDocumentMeta(text string) internal.DocumentMeta {
	var meta internal.DocumentMeta

	if m := customerPattern.FindStringSubmatch(text); len(m) > 1 {
		// Only surrounding whitespace is trimmed; inner spacing is kept as printed.
		if customer := strings.TrimSpace(m[1]); customer != "" {
			meta.Customer = util.StringPtr(customer)
		}
	}

	for _, re := range deliveryPatterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			meta.DeliveryDate = util.StringPtr(m[1])
			break
		}
	}

	return meta
}

func CountCandidateLines(text string) int {
	count := 0
	for _, line := range util.SplitLines(text) {
		if IsCandidateLine(line) {
			count++
		}
	}
	return count
}

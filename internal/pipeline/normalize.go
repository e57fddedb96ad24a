package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"pedidos/internal"
	"pedidos/internal/util"
)

var (
	barCodePattern  = regexp.MustCompile(`(?i)V[-\s]?[\d,]+`)
	materialPattern = regexp.MustCompile(`(?i)FIO DE\s+([A-ZÇÃÕÊÉÍ]+)`)
	measurePattern  = regexp.MustCompile(`(?i)([\d,]+\s*[xX]\s*[\d,]+)\s*mm`)
	weightPattern   = regexp.MustCompile(`(?i)([\d.,]+)\s*kg`)
	measureSplit    = regexp.MustCompile(`[xX]`)
)

// parseOrderLine probes each field independently. Only the weight is
// strict: an unparseable weight rejects the line.
func parseOrderLine(line string, meta internal.DocumentMeta) (internal.OrderItem, error) {
	item := internal.OrderItem{
		RawLine:      line,
		Customer:     meta.Customer,
		DeliveryDate: meta.DeliveryDate,
	}

	if code := barCodePattern.FindString(line); code != "" {
		item.BarCode = util.StringPtr(util.HyphenateSpaces(code))
	}

	if m := materialPattern.FindStringSubmatch(line); len(m) > 1 {
		item.Material = util.StringPtr(m[1])
	}

	if m := measurePattern.FindStringSubmatch(line); len(m) > 1 {
		diameter, length := splitMeasures(m[1])
		item.Diameter = util.StringPtr(diameter)
		item.Length = util.StringPtr(length)
	}

	weightRaw := internal.MissingMeasure
	if m := weightPattern.FindStringSubmatch(line); len(m) > 1 {
		weightRaw = m[1]
	}
	weight, err := util.ParseLocaleFloat(weightRaw)
	if err != nil {
		return internal.OrderItem{}, fmt.Errorf("%w: %v", ErrWeightParse, err)
	}
	item.Weight = weight

	return item, nil
}

// splitMeasures turns "12,5 x 6000" into ("12.5", "6000").
func splitMeasures(combined string) (string, string) {
	parts := measureSplit.Split(strings.ReplaceAll(combined, ",", "."), 2)
	if len(parts) != 2 {
		return internal.MissingMeasure, internal.MissingMeasure
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

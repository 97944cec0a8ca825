package render

import (
	"fmt"
	"strconv"
	"strings"
)

// formatCount renders an integer with comma-grouped thousands, e.g. 12,480.
func formatCount(value int) string {
	negative := value < 0
	if negative {
		value = -value
	}
	digits := strconv.Itoa(value)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	formatted := strings.Join(groups, ",")
	if negative {
		return "-" + formatted
	}
	return formatted
}

// formatPercent renders a percentage with one decimal place.
func formatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

package output

import (
	"fmt"
	"strings"
)

// SurvivalBar renders a visual bar for a 0-100 survival rate.
// Example: "████████░░ 80%"
func SurvivalBar(rate float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int((rate / 100.0) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	var style func(string) string
	switch {
	case rate >= 70:
		style = func(s string) string { return StyleSuccess.Render(s) }
	case rate >= 40:
		style = func(s string) string { return StyleWarning.Render(s) }
	default:
		style = func(s string) string { return StyleError.Render(s) }
	}

	return fmt.Sprintf("%s %s", style(bar), StyleMuted.Render(fmt.Sprintf("%.0f%%", rate)))
}

// GradeBadge returns a styled letter grade.
func GradeBadge(grade string) string {
	switch grade {
	case "A", "B":
		return StyleSuccess.Render(grade)
	case "C":
		return StyleWarning.Render(grade)
	case "D", "F":
		return StyleError.Render(grade)
	default:
		return StyleMuted.Render(grade)
	}
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

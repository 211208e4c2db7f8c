package render

import (
	"regexp"
	"strings"

	"lifecoo/internal/domain"
)

var (
	newlines    = regexp.MustCompile(`[\r\n]+`)
	whitespace  = regexp.MustCompile(`\s+`)
	doubledDots = regexp.MustCompile(`\.\s*\.`)
)

// Summary is the short narration of a result: top recap, best and alternate
// options, the overall risk level and the key risks.
func Summary(result domain.OptimizeResult) string {
	var pieces []string

	if len(result.ExecRecapBullets) > 0 {
		pieces = append(pieces, strings.Join(firstN(result.ExecRecapBullets, 2), ". "))
	}
	if len(result.RoutingOptions) > 0 {
		pieces = append(pieces, "Best option: "+optionText(result.RoutingOptions[0], "Best option"))
	}
	if len(result.RoutingOptions) > 1 {
		pieces = append(pieces, "Alternate option: "+optionText(result.RoutingOptions[1], "Alternate option"))
	}

	pieces = append(pieces, "Overall risk level: "+string(domain.NormalizeRiskLevel(result.RiskLevel))+".")
	if len(result.RiskRadarBullets) > 0 {
		pieces = append(pieces, "Key risks: "+strings.Join(firstN(result.RiskRadarBullets, 3), ". "))
	}

	summary := strings.Join(pieces, ". ")
	summary = newlines.ReplaceAllString(summary, " ")
	summary = whitespace.ReplaceAllString(summary, " ")
	summary = doubledDots.ReplaceAllString(summary, ".")
	return strings.TrimSpace(summary)
}

func optionText(option domain.RoutingOption, fallback string) string {
	text := strings.TrimSpace(option.Title)
	if text == "" {
		text = fallback
	}
	if len(option.Bullets) > 0 {
		text += ". " + strings.Join(firstN(option.Bullets, 2), ". ")
	}
	return text
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

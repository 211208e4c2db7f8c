// Package render projects optimizer results onto display-ready views.
package render

import (
	"strings"

	"lifecoo/internal/domain"
)

const (
	defaultOptionTitle = "Option"

	noRecapYet     = "No recap yet."
	noOptionsYet   = "No routing options yet."
	noRisksYet     = "No risk details yet."
	noRecapReturn  = "No recap returned."
	noOptionReturn = "No routing options returned."
	noRiskReturn   = "No risk details returned."
)

// Empty is the view shown before any optimize call has succeeded.
func Empty() domain.ResultView {
	return domain.ResultView{
		Recap:              []string{noRecapYet},
		Options:            []domain.OptionBlock{},
		OptionsPlaceholder: noOptionsYet,
		Risks:              []string{noRisksYet},
		Risk:               Indicator(domain.RiskMedium),
	}
}

// Render builds the view for result. It never mutates result and the same
// input always yields an equal view.
func Render(result domain.OptimizeResult) domain.ResultView {
	view := domain.ResultView{
		Recap:   bulletsOrPlaceholder(result.ExecRecapBullets, noRecapReturn),
		Options: make([]domain.OptionBlock, 0, len(result.RoutingOptions)),
		Risks:   bulletsOrPlaceholder(result.RiskRadarBullets, noRiskReturn),
		Risk:    Indicator(domain.NormalizeRiskLevel(result.RiskLevel)),
	}

	for _, option := range result.RoutingOptions {
		title := strings.TrimSpace(option.Title)
		if title == "" {
			title = defaultOptionTitle
		}
		view.Options = append(view.Options, domain.OptionBlock{
			Title:   title,
			Bullets: append([]string{}, option.Bullets...),
		})
	}
	if len(view.Options) == 0 {
		view.OptionsPlaceholder = noOptionReturn
	}

	return view
}

// Indicator highlights exactly one risk pill.
func Indicator(level domain.RiskLevel) domain.RiskIndicator {
	level = domain.NormalizeRiskLevel(string(level))
	return domain.RiskIndicator{
		Level:  level,
		Low:    level == domain.RiskLow,
		Medium: level == domain.RiskMedium,
		High:   level == domain.RiskHigh,
	}
}

func bulletsOrPlaceholder(bullets []string, placeholder string) []string {
	if len(bullets) == 0 {
		return []string{placeholder}
	}
	return append([]string{}, bullets...)
}

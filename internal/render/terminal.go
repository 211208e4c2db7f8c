package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lifecoo/internal/domain"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	optionStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	pillStyles   = map[domain.RiskLevel]lipgloss.Style{
		domain.RiskLow:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		domain.RiskMedium: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		domain.RiskHigh:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
)

// Terminal formats a view for a text terminal.
func Terminal(view domain.ResultView) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("Executive recap"))
	b.WriteString("\n")
	writeBullets(&b, view.Recap, "  ")

	b.WriteString("\n")
	b.WriteString(headingStyle.Render("Routing options"))
	b.WriteString("\n")
	if len(view.Options) == 0 {
		b.WriteString("  " + mutedStyle.Render(view.OptionsPlaceholder) + "\n")
	}
	for _, option := range view.Options {
		b.WriteString("  " + optionStyle.Render(option.Title) + "\n")
		writeBullets(&b, option.Bullets, "    ")
	}

	b.WriteString("\n")
	b.WriteString(headingStyle.Render("Risk radar") + "  " + riskPills(view.Risk))
	b.WriteString("\n")
	writeBullets(&b, view.Risks, "  ")

	return b.String()
}

func riskPills(indicator domain.RiskIndicator) string {
	pills := make([]string, 0, 3)
	for _, level := range []domain.RiskLevel{domain.RiskLow, domain.RiskMedium, domain.RiskHigh} {
		label := "[" + string(level) + "]"
		if level == indicator.Level {
			pills = append(pills, pillStyles[level].Render(label))
			continue
		}
		pills = append(pills, mutedStyle.Render(label))
	}
	return strings.Join(pills, " ")
}

func writeBullets(b *strings.Builder, bullets []string, indent string) {
	for _, bullet := range bullets {
		b.WriteString(indent + "• " + bullet + "\n")
	}
}

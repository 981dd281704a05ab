package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sorynlabs/soryn/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#626262", Dark: "#9E9E9E"}).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	sidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#B8A8F0", Dark: "#4E3A99"}).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#626262"})

	selectedOptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#7D56F4"))

	userRoleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF00"))

	assistantRoleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#00BFFF"))

	errorTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	toastInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2E8B57")).
			Padding(0, 1)

	toastErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#B22222")).
			Padding(0, 1)

	winnerBadgeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#1C1C1C")).
				Background(lipgloss.Color("#FFD700")).
				Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#C4C4C4", Dark: "#4A4A4A"}).
			Padding(0, 1)

	selectedCardStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#7D56F4")).
				Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(1, 2)
)

var providerColors = map[string]lipgloss.Color{
	domain.ProviderOllama: lipgloss.Color("#36BCB4"),
	domain.ProviderOpenAI: lipgloss.Color("#10A37F"),
	domain.ProviderGemini: lipgloss.Color("#4285F4"),
}

// providerBadge renders a provider name in its brand color. Not for use
// inside list items, where embedded escapes break the delegate's
// truncation.
func providerBadge(provider string) string {
	c, ok := providerColors[provider]
	if !ok {
		c = lipgloss.Color("#626262")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c).Render(provider)
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors - optimized for dark terminals
var (
	colorPrimary = lipgloss.Color("205") // Pink/Magenta
	colorSuccess = lipgloss.Color("42")  // Green
	colorWarning = lipgloss.Color("220") // Yellow
	colorError   = lipgloss.Color("196") // Red
	colorMuted   = lipgloss.Color("245") // Gray (brighter for dark terminals)
	colorHeader  = lipgloss.Color("220") // Yellow for headers
)

// Title and header styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHeader).
			Padding(0, 1)

	progressStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// Status indicators
var (
	enabledStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)
)

// Help
var (
	helpDescStyle = lipgloss.NewStyle().
		Foreground(colorMuted)
)

// Message styles
var (
	errorMsgStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true).
			MarginTop(1)

	successTextStyle = lipgloss.NewStyle().
				Foreground(colorSuccess).
				Bold(true)

	warningTextStyle = lipgloss.NewStyle().
				Foreground(colorWarning)
)

// Form styles
var (
	inputLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	inputFocusStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)
)

// Success renders text as a success status line.
func Success(text string) string {
	return successTextStyle.Render(text)
}

// Warning renders text as a warning status line.
func Warning(text string) string {
	return warningTextStyle.Render(text)
}

// Muted renders secondary text.
func Muted(text string) string {
	return helpDescStyle.Render(text)
}

// Indicator returns the bullet shown before a blocked or collected hostname.
func Indicator() string {
	return enabledStyle.Render("●")
}

// WrapHelpText wraps help text to fit within maxWidth, splitting on bullet separators.
// If maxWidth is 0 or negative, returns the original text.
func WrapHelpText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return helpDescStyle.Render(text)
	}

	const separator = " • "
	parts := strings.Split(text, separator)

	var lines []string
	var currentLine string
	var currentWidth int

	for _, part := range parts {
		partWidth := lipgloss.Width(part)

		newWidth := currentWidth + partWidth
		if currentWidth > 0 {
			newWidth += lipgloss.Width(separator)
		}

		if newWidth > maxWidth && currentWidth > 0 {
			lines = append(lines, currentLine)
			currentLine = part
			currentWidth = partWidth
			continue
		}

		if currentWidth > 0 {
			currentLine += separator
		}
		currentLine += part
		currentWidth = newWidth
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	result := make([]string, len(lines))
	for i, line := range lines {
		result[i] = helpDescStyle.Render(line)
	}

	return strings.Join(result, "\n")
}

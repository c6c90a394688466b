package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mosaic-lumen/threshold/internal/anomaly"
	"github.com/mosaic-lumen/threshold/internal/gate"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	elizaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	faintStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	revealStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Italic(true)
	blockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	tripleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	fontBleedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Italic(true)
	zalgoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	tokenCursorStyle   = lipgloss.NewStyle().Reverse(true)
	tokenSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Underline(true)
	panelStyle         = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("5")).
				Padding(1, 2)
)

var spanRe = regexp.MustCompile(`(?s)<span data-anomaly="([^"]*)">(.*?)</span>`)

// renderAnomalyText converts markup spans to terminal styling. Text outside
// spans passes through unchanged.
func renderAnomalyText(s string) string {
	var b strings.Builder
	last := 0
	for _, m := range spanRe.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(s[last:m[0]])
		algo := s[m[2]:m[3]]
		inner := s[m[4]:m[5]]
		b.WriteString(anomalyStyle(algo).Render(inner))
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func anomalyStyle(algo string) lipgloss.Style {
	switch anomaly.Algorithm(algo) {
	case anomaly.AlgoFontBleed:
		return fontBleedStyle
	case anomaly.AlgoZalgo:
		return zalgoStyle
	default:
		return tripleStyle
	}
}

// renderSelectionParagraph lays out puzzle tokens with the cursor and the
// current selection highlighted.
func renderSelectionParagraph(tokens []gate.Token, selected []int, cursor int) string {
	isSelected := make(map[int]bool, len(selected))
	for _, i := range selected {
		isSelected[i] = true
	}
	var b strings.Builder
	for _, t := range tokens {
		switch {
		case t.IsWord && t.Idx == cursor:
			b.WriteString(tokenCursorStyle.Render(t.Text))
		case t.IsWord && isSelected[t.Idx]:
			b.WriteString(tokenSelectedStyle.Render(t.Text))
		default:
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

// puzzleStatusLine summarizes the gate for the footer of the puzzle panel.
func puzzleStatusLine(st gate.State) string {
	switch {
	case st.ErrorMsg != "":
		return errorStyle.Render(st.ErrorMsg)
	case st.Phase == gate.PhaseSolved:
		return revealStyle.Render("solved. press enter to confirm.")
	case st.Attempt != "":
		return faintStyle.Render(fmt.Sprintf("attempt: %s", st.Attempt))
	default:
		return ""
	}
}

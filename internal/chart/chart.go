// Package chart renders journal summaries for the terminal.
package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pbaille/moodjournal/internal/domain"
	"github.com/pbaille/moodjournal/internal/journal"
)

var (
	ColorPink     = lipgloss.Color("#FFC0CB")
	ColorDeepPink = lipgloss.Color("#FF1493")
	ColorGray     = lipgloss.Color("#666666")
	ColorCyan     = lipgloss.Color("#00FFFF")
	ColorYellow   = lipgloss.Color("#FFFF00")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	LabelStyle = lipgloss.NewStyle().
			Width(labelWidth)

	BarStyle = lipgloss.NewStyle().
			Foreground(ColorPink)

	MarkerStyle = lipgloss.NewStyle().
			Foreground(ColorDeepPink).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	EmotionStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)
)

const (
	labelWidth = 10
	barChar    = "█"
	marker     = "●"
	gridDot    = "·"
)

// Frequency draws a horizontal bar per label, zero-filled in label order.
// The longest bar is maxWidth cells.
func Frequency(counts journal.FrequencyCount, maxWidth int) string {
	if maxWidth < 1 {
		maxWidth = 1
	}
	filled := counts.Filled()
	top := 0
	for _, c := range filled {
		if c > top {
			top = c
		}
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Emotion Distribution"))
	sb.WriteString("\n")
	for i, e := range domain.Emotions {
		n := filled[i]
		width := 0
		if top > 0 {
			width = n * maxWidth / top
		}
		if n > 0 && width == 0 {
			width = 1
		}
		sb.WriteString(LabelStyle.Render(string(e)))
		sb.WriteString(" ")
		sb.WriteString(BarStyle.Render(strings.Repeat(barChar, width)))
		sb.WriteString(" ")
		sb.WriteString(DimStyle.Render(fmt.Sprintf("%d", n)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Timeline plots one column per entry against one row per label, oldest on the left.
// Only the most recent maxPoints entries are drawn.
func Timeline(points []journal.TimelinePoint, maxPoints int) string {
	if maxPoints > 0 && len(points) > maxPoints {
		points = points[len(points)-maxPoints:]
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Emotion Over Time"))
	sb.WriteString("\n")
	if len(points) == 0 {
		sb.WriteString(DimStyle.Render("no entries yet"))
		sb.WriteString("\n")
		return sb.String()
	}

	for row := len(domain.Emotions) - 1; row >= 0; row-- {
		e := domain.Emotions[row]
		sb.WriteString(LabelStyle.Render(string(e)))
		sb.WriteString(" ")
		for _, p := range points {
			if p.Emotion == e {
				sb.WriteString(MarkerStyle.Render(marker))
			} else {
				sb.WriteString(DimStyle.Render(gridDot))
			}
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}

	first, last := points[0].Timestamp, points[len(points)-1].Timestamp
	sb.WriteString(DimStyle.Render(fmt.Sprintf("%s  %s → %s (%d entries)",
		strings.Repeat(" ", labelWidth-1), first, last, len(points))))
	sb.WriteString("\n")
	return sb.String()
}

// History lists entries as time, emotion and a one-line excerpt of the text
func History(entries []domain.Entry, textWidth int) string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Your Personal Emotion Journal"))
	sb.WriteString("\n")
	for _, e := range entries {
		sb.WriteString(DimStyle.Render(e.Timestamp))
		sb.WriteString("  ")
		sb.WriteString(EmotionStyle.Width(labelWidth).Render(string(e.Emotion)))
		sb.WriteString(" ")
		sb.WriteString(truncate(e.Text, textWidth))
		sb.WriteString("\n")
	}
	return sb.String()
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

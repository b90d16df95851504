package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/marketbrief/marketbrief/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// RenderReport builds the end-of-run terminal summary.
func RenderReport(r *models.RunReport) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("marketbrief run report"))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Final state: %s\n", stateStyle(r.State).Render(string(r.State)))
	fmt.Fprintf(&sb, "Duration:    %s\n\n", dimStyle.Render(r.FinishedAt.Sub(r.StartedAt).Round(1e6).String()))

	sb.WriteString("Stages:\n")
	for _, s := range r.Stages {
		mark := okStyle.Render("ok")
		if s.Error != "" {
			mark = failStyle.Render("failed")
		} else if s.Degraded {
			mark = warnStyle.Render("degraded")
		}
		fmt.Fprintf(&sb, "  %-18s %s  attempts=%d\n", s.Stage, mark, s.Attempts)
	}

	if len(r.Deliveries) > 0 {
		sb.WriteString("\nDeliveries:\n")
		for _, d := range r.Deliveries {
			if d.Success {
				fmt.Fprintf(&sb, "  %-8s %s  message_id=%d\n", d.Locale.Name(), okStyle.Render("sent"), d.MessageID)
			} else {
				fmt.Fprintf(&sb, "  %-8s %s  %s\n", d.Locale.Name(), failStyle.Render("failed"), dimStyle.Render(d.Error))
			}
		}
	}

	if len(r.FailedLocales) > 0 {
		names := make([]string, 0, len(r.FailedLocales))
		for _, l := range r.FailedLocales {
			names = append(names, l.Name())
		}
		fmt.Fprintf(&sb, "\n%s %s\n", warnStyle.Render("Fallback content used for:"), strings.Join(names, ", "))
	}

	return sb.String()
}

func stateStyle(state models.RunState) lipgloss.Style {
	switch state {
	case models.StateDone:
		return okStyle
	case models.StatePartialFailure:
		return warnStyle
	default:
		return failStyle
	}
}

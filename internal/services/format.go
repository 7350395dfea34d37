package services

import (
	"fmt"
	"strings"

	"github.com/kalpitg/dipwatch-go/internal/models"
)

// alertContext carries everything the message template needs for one
// triggered level.
type alertContext struct {
	Symbol       string
	Level        models.Level
	Price        float64
	Peak         float64
	Drawdown     float64
	Threshold    float64
	Volatility   float64
	VolThreshold float64
	Confirmation models.Confirmation
	TestMode     bool
}

// formatAlertMessage renders the operator-facing alert text: what
// happened, why it was trusted, and what the pre-decided plan says to do.
func formatAlertMessage(a alertContext) string {
	prefix := ""
	if a.TestMode {
		prefix = "[TEST] "
	}

	emoji := a.Level.Emoji()

	// Approximate drop from the rolling peak in points, for intuition.
	pointsDown := a.Peak - a.Price

	persistenceText := "N/A (instant trigger at this level)"
	if a.Level.PersistenceDays > 0 {
		persistenceText = fmt.Sprintf("%d day(s) below threshold", a.Level.PersistenceDays)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s MARKET OPPORTUNITY ALERT %s\n\n", prefix, emoji, emoji)
	fmt.Fprintf(&b, "Index: %s\n", a.Symbol)
	fmt.Fprintf(&b, "Current price: %.2f\n", a.Price)
	fmt.Fprintf(&b, "Reference period: %s\n", a.Level.Period)
	fmt.Fprintf(&b, "Rolling peak (%s): %.2f\n", a.Level.Period, a.Peak)
	fmt.Fprintf(&b, "Correction: %.2f%% (~%.0f points below peak)\n", a.Drawdown, pointsDown)
	fmt.Fprintf(&b, "Level hit: %d%% drawdown\n", a.Level.Percent)
	fmt.Fprintf(&b, "Volatility: %.2f\n\n", a.Volatility)
	b.WriteString("Trigger logic:\n")
	fmt.Fprintf(&b, "- Threshold price: %.2f\n", a.Threshold)
	fmt.Fprintf(&b, "- Persistence rule: %s\n", persistenceText)
	fmt.Fprintf(&b, "- Volatility override: reading >= %.0f\n", a.VolThreshold)
	fmt.Fprintf(&b, "- Confirmed by: %s\n\n", a.Confirmation.Label())
	fmt.Fprintf(&b, "%s\n\n", a.Level.Zone())
	fmt.Fprintf(&b, "%s\n\n", formatAction(a.Level.Plan))
	b.WriteString("Checklist before acting:\n")
	b.WriteString("- Are you following your pre-decided asset allocation?\n")
	b.WriteString("- Is your emergency fund and short-term cash fully safe?\n")
	b.WriteString("- Are you comfortable staying invested for 5+ years?\n")

	return b.String()
}

// formatAction renders the deployment plan block, falling back to a
// generic nudge when a level has no plan configured.
func formatAction(plan models.DeploymentPlan) string {
	if plan.Title == "" && plan.Action == "" {
		return "➡️ Execute your pre-defined deployment plan."
	}

	lines := []string{
		fmt.Sprintf("Suggested action: %s", plan.Title),
		plan.Action,
	}
	if plan.Allocation != "" {
		lines = append(lines, fmt.Sprintf("Allocation hint: %s", plan.Allocation))
	}

	return "➡️ " + strings.Join(lines, "\n➡️ ")
}

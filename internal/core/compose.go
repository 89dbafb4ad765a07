package core

import (
	"fmt"
	"strings"

	"care-companion/pkg"
)

// HistoryWindow is the number of most recent turns included in a prompt.
// Older turns are dropped.
const HistoryWindow = 6

// Compose builds the generation prompt.  history must not contain
// userMessage; it is appended once after the history window.
func Compose(userMessage string, history []pkg.Turn, medicationsText string) string {
	var b strings.Builder
	b.WriteString(SystemPrompt)
	b.WriteString("\n\nMEDICATIONS:\n")
	b.WriteString(medicationsText)
	b.WriteString("\n\nConversation:\n")
	for _, t := range RecentTurns(history) {
		fmt.Fprintf(&b, "%s: %s\n", roleLabel(t.Role), t.Content)
	}
	fmt.Fprintf(&b, "User: %s\n%s", userMessage, AssistantCue)
	return b.String()
}

// RecentTurns returns the last HistoryWindow turns in chronological order.
func RecentTurns(history []pkg.Turn) []pkg.Turn {
	if len(history) > HistoryWindow {
		return history[len(history)-HistoryWindow:]
	}
	return history
}

// FormatMedications renders the medication list for the prompt.
func FormatMedications(records []pkg.MedicationRecord) string {
	if len(records) == 0 {
		return NoMedicationsText
	}
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, "Current medications:")
	for _, m := range records {
		line := fmt.Sprintf("- %s: %s at %s", m.Name, m.Dosage, strings.Join(m.Times, ", "))
		if m.WithFood {
			line += " (take with food)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatTranscript renders turns as "label: content" lines.
func FormatTranscript(turns []pkg.Turn) string {
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = roleLabel(t.Role) + ": " + t.Content
	}
	return strings.Join(lines, "\n")
}

func roleLabel(r pkg.TurnRole) string {
	if r == pkg.RoleAssistant {
		return "Care Companion"
	}
	return "User"
}

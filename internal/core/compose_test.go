package core_test

import (
	"fmt"
	"strings"
	"testing"

	"care-companion/internal/core"
	"care-companion/pkg"
)

func TestFormatMedications(t *testing.T) {
	got := core.FormatMedications([]pkg.MedicationRecord{
		{Name: "Aspirin", Dosage: "1 tablet", Times: []string{"08:00"}},
		{Name: "Metformin", Dosage: "500mg", Times: []string{"08:00", "18:00"}, WithFood: true},
	})
	want := "Current medications:\n" +
		"- Aspirin: 1 tablet at 08:00\n" +
		"- Metformin: 500mg at 08:00, 18:00 (take with food)"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatMedications_Empty(t *testing.T) {
	if got := core.FormatMedications(nil); got != core.NoMedicationsText {
		t.Fatalf("got %q", got)
	}
}

func TestCompose_Layout(t *testing.T) {
	history := []pkg.Turn{
		{Role: pkg.RoleUser, Content: "hello"},
		{Role: pkg.RoleAssistant, Content: "hi there"},
	}
	p := core.Compose("how are you?", history, "MEDS-BLOCK")

	if !strings.HasPrefix(p, core.SystemPrompt) {
		t.Fatal("prompt must start with the preamble")
	}
	if !strings.HasSuffix(p, "User: how are you?\n"+core.AssistantCue) {
		t.Fatalf("prompt must end with the user message and cue, got tail %q", p[len(p)-40:])
	}
	order := []string{core.SystemPrompt, "MEDS-BLOCK", "User: hello", "Care Companion: hi there", "User: how are you?"}
	last := -1
	for _, s := range order {
		i := strings.Index(p, s)
		if i <= last {
			t.Fatalf("%q out of order in prompt:\n%s", s, p)
		}
		last = i
	}
}

func TestCompose_KeepsOnlyLastSixTurns(t *testing.T) {
	var history []pkg.Turn
	for i := 0; i < 10; i++ {
		role := pkg.RoleUser
		if i%2 == 1 {
			role = pkg.RoleAssistant
		}
		history = append(history, pkg.Turn{Role: role, Content: fmt.Sprintf("turn-%02d", i)})
	}
	p := core.Compose("new message", history, core.NoMedicationsText)

	for i := 0; i < 4; i++ {
		if strings.Contains(p, fmt.Sprintf("turn-%02d", i)) {
			t.Fatalf("turn-%02d should have been dropped", i)
		}
	}
	for i := 4; i < 10; i++ {
		if !strings.Contains(p, fmt.Sprintf("turn-%02d", i)) {
			t.Fatalf("turn-%02d missing", i)
		}
	}
	if n := strings.Count(p, "new message"); n != 1 {
		t.Fatalf("new message appears %d times", n)
	}
	if strings.Index(p, "turn-04") > strings.Index(p, "turn-09") {
		t.Fatal("history must be chronological")
	}
}

func TestRecentTurns_ShortHistory(t *testing.T) {
	h := []pkg.Turn{{Role: pkg.RoleUser, Content: "a"}}
	if got := core.RecentTurns(h); len(got) != 1 {
		t.Fatalf("got %d turns", len(got))
	}
}

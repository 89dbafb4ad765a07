package core

import (
	"strings"

	"care-companion/pkg"
)

// Emergency phrases take priority over urgent ones.  Matching is plain
// substring containment on the lower-cased message.
var (
	emergencyPhrases = []string{
		"chest pain", "can't breathe", "heart attack", "stroke",
		"bleeding heavily", "unconscious", "choking", "seizure",
	}
	urgentPhrases = []string{
		"fell", "fall", "hurt", "pain", "dizzy", "confused",
		"vomit", "stuck", "help me", "can't move",
	}
)

var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

// Detect classifies a message as an emergency, urgent, or no concern.
func Detect(message string) pkg.Concern {
	lower := apostrophes.Replace(strings.ToLower(message))
	if containsAny(lower, emergencyPhrases) {
		return pkg.ConcernEmergency
	}
	if containsAny(lower, urgentPhrases) {
		return pkg.ConcernUrgent
	}
	return pkg.ConcernNone
}

// CannedReply returns the fixed reply for a concern, or "" for none.
func CannedReply(c pkg.Concern) string {
	switch c {
	case pkg.ConcernEmergency:
		return EmergencyReply
	case pkg.ConcernUrgent:
		return UrgentReply
	}
	return ""
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

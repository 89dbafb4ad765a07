package pkg

import "time"

// MedicationRecord is a single entry in the user's medication list.  Names
// are not unique; ID is the stable key used for removal.
type MedicationRecord struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Dosage   string   `json:"dosage"`
	Times    []string `json:"times"`
	WithFood bool     `json:"with_food"`
}

// TurnRole describes who authored a turn.  Only two roles exist: the user
// and the assistant.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Turn is one message in a session.  Turns are never edited once appended.
type Turn struct {
	Role    TurnRole `json:"role"`
	Content string   `json:"content"`
}

// Concern is the outcome of safety triage for a single message.
type Concern string

const (
	ConcernNone      Concern = ""
	ConcernUrgent    Concern = "URGENT"
	ConcernEmergency Concern = "EMERGENCY"
)

// String returns "NONE" for the empty concern so logs stay readable.
func (c Concern) String() string {
	if c == ConcernNone {
		return "NONE"
	}
	return string(c)
}

// Reply is returned for every handled user message.  Notice is a soft,
// user-visible warning (model unavailable, alert not delivered) and is empty
// on the happy path.
type Reply struct {
	Session string  `json:"session"`
	Concern Concern `json:"concern,omitempty"`
	Content string  `json:"content"`
	Notice  string  `json:"notice,omitempty"`
}

// Alert is raised for a caregiver when a message is triaged as urgent or
// an emergency.
type Alert struct {
	ID          string    `json:"id"`
	Session     string    `json:"session"`
	Concern     Concern   `json:"concern"`
	Message     string    `json:"message"`
	ProfileName string    `json:"profile_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary is the caregiver-facing recap of a session.
type Summary struct {
	Session   string    `json:"session"`
	Text      string    `json:"text"`
	Turns     int       `json:"turns"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MedicationRequest carries the medication form fields.  Times is the raw
// comma separated list as typed by the user, e.g. "08:00, 20:00".
type MedicationRequest struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage"`
	Times    string `json:"times"`
	WithFood bool   `json:"with_food"`
}

// ChatRequest represents a request to send a message from the user.
type ChatRequest struct {
	Content string `json:"content"`
}

// SessionList is returned when listing sessions.
type SessionList struct {
	Active   string   `json:"active"`
	Sessions []string `json:"sessions"`
}

// Profile holds the display name typed into the profile field.
type Profile struct {
	Name string `json:"name"`
}

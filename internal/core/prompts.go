package core

// prompts.go holds the fixed texts used by the chat pipeline and the
// summariser.  Keeping them in one file makes them easy to tweak without
// touching the rest of the code.

const (
	// SystemPrompt is the persona and safety preamble placed at the top of
	// every generation prompt.  It is policy text and never derived from
	// user input.
	SystemPrompt = `You are Care Companion, a warm and caring AI assistant for elderly users.

PERSONALITY:
- Warm, patient, and empathetic
- Speak simply and clearly
- Be kind, supportive, and concise

ROLE:
- Provide emotional support
- Help with medication reminders
- Monitor for safety concerns
- Engage in pleasant conversation

SAFETY RULES:
If user mentions pain, falling, breathing trouble, or confusion:
- Show concern
- Recommend calling caregiver or 911 calmly`

	// AssistantCue ends the prompt so the model continues as the assistant.
	AssistantCue = "Care Companion:"

	// NoMedicationsText replaces the medication block when the list is empty.
	NoMedicationsText = "No medications on file."

	// EmergencyReply is returned without calling the model when a message
	// contains an emergency phrase.
	EmergencyReply = "🚨 This sounds serious! Please call 911 immediately or contact your caregiver."

	// UrgentReply is returned without calling the model when a message
	// contains an urgent phrase.
	UrgentReply = "⚠️ I'm very concerned. Please reach your caregiver as soon as possible."

	// GreetingFallback replaces an empty model response.
	GreetingFallback = "I'm here with you."

	// ApologyFallback replaces the reply when the model call fails.
	ApologyFallback = "I'm having trouble connecting right now. Please try again in a moment."

	// GenerationNotice is shown next to ApologyFallback.
	GenerationNotice = "The assistant could not be reached; a fallback reply was used."

	// AlertNotice is shown when a caregiver alert could not be recorded.
	AlertNotice = "Your caregiver could not be notified automatically. Please contact them directly."

	// SaveNotice is shown when the conversation could not be written to disk.
	SaveNotice = "This conversation could not be saved."

	// SummarizationInstruction asks the model for a short caregiver-facing
	// recap of a conversation.
	SummarizationInstruction = "Summarize the following conversation between an elderly user and their care assistant for a family caregiver. " +
		"Use at most five short sentences. Mention any health complaints, falls, pain, confusion, missed or questioned medications, and the user's mood. " +
		"Do not add advice or a diagnosis."

	// SummaryFallback is used when the summary could not be generated.
	SummaryFallback = "Summary unavailable right now."

	// EmptySummary is used for sessions without any turns.
	EmptySummary = "No conversation yet."
)

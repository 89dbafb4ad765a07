package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"care-companion/internal/store"
	"care-companion/pkg"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrEmptyMessage is returned for blank chat input.
var ErrEmptyMessage = errors.New("empty message")

const alertTimeout = 5 * time.Second

// Companion is the application state shared by every request handler: the
// two stores, the active session, the profile name and the collaborators
// of the message pipeline.  Methods are serialised by a mutex so a single
// message is processed at a time.
type Companion struct {
	mu sync.Mutex

	meds       *store.MedicationStore
	sessions   *store.SessionStore
	chat       *ChatService
	summarizer *Summarizer
	alerts     AlertSink
	logger     *slog.Logger
	concerns   metric.Int64Counter

	active  string
	profile string
	now     func() time.Time
}

// Config wires the collaborators of a Companion.  Alerts may be nil.
type Config struct {
	Medications *store.MedicationStore
	Sessions    *store.SessionStore
	Chat        *ChatService
	Summarizer  *Summarizer
	Alerts      AlertSink
	Logger      *slog.Logger
}

// NewCompanion constructs a Companion.  Call Load before serving requests.
func NewCompanion(cfg Config) *Companion {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concerns, _ := meter().Int64Counter("companion.concerns",
		metric.WithDescription("Messages classified by safety triage"))
	return &Companion{
		meds:       cfg.Medications,
		sessions:   cfg.Sessions,
		chat:       cfg.Chat,
		summarizer: cfg.Summarizer,
		alerts:     cfg.Alerts,
		logger:     logger,
		concerns:   concerns,
		active:     store.DefaultSession,
		now:        time.Now,
	}
}

// Load reads both stores.  Unreadable files fall back to defaults; the
// returned error reports them so the caller can warn about it.
func (c *Companion) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, medErr := c.meds.Load()
	_, sessErr := c.sessions.Load()
	c.repairActive()
	return errors.Join(medErr, sessErr)
}

// HandleMessage runs the pipeline for one user message: triage, canned
// reply or model generation, then append and persist both turns.
func (c *Companion) HandleMessage(ctx context.Context, text string) (pkg.Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return pkg.Reply{}, ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := tracer.Start(ctx, "handle_message")
	defer span.End()

	concern := Detect(text)
	span.SetAttributes(attribute.String("concern", concern.String()))
	if c.concerns != nil {
		c.concerns.Add(ctx, 1, metric.WithAttributes(attribute.String("level", concern.String())))
	}

	reply := pkg.Reply{Session: c.active, Concern: concern}
	if canned := CannedReply(concern); canned != "" {
		reply.Content = canned
	} else {
		history, _ := c.sessions.Turns(c.active)
		prompt := Compose(text, history, FormatMedications(c.meds.List()))
		content, err := c.chat.Generate(ctx, prompt)
		if err != nil {
			// The caller is gone; keep the fallback out of the transcript.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return reply, fmt.Errorf("generate: %w", ctxErr)
			}
			reply.Notice = GenerationNotice
		}
		reply.Content = content
	}

	// Safety replies and alerts go out even when the transcript cannot be
	// saved.
	err := c.sessions.Append(c.active,
		pkg.Turn{Role: pkg.RoleUser, Content: text},
		pkg.Turn{Role: pkg.RoleAssistant, Content: reply.Content},
	)
	if err != nil {
		c.logger.Error("save session failed", "session", c.active, "error", err)
		reply.Notice = joinNotice(reply.Notice, SaveNotice)
	}

	if concern != pkg.ConcernNone {
		c.logger.Warn("safety concern detected", "session", c.active, "concern", concern.String())
		if err := c.raiseAlert(context.WithoutCancel(ctx), concern, text); err != nil {
			c.logger.Error("caregiver alert failed", "session", c.active, "error", err)
			reply.Notice = joinNotice(reply.Notice, AlertNotice)
		}
	}
	return reply, nil
}

func joinNotice(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}

func (c *Companion) raiseAlert(ctx context.Context, concern pkg.Concern, text string) error {
	if c.alerts == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, alertTimeout)
	defer cancel()
	return c.alerts.Alert(ctx, pkg.Alert{
		ID:          uuid.NewString(),
		Session:     c.active,
		Concern:     concern,
		Message:     text,
		ProfileName: c.profile,
		CreatedAt:   c.now().UTC(),
	})
}

// NewChat creates a session and makes it active.  An empty name gets a
// timestamped one.
func (c *Companion) NewChat(name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = "chat-" + c.now().Format("20060102-150405")
	}
	if err := c.sessions.Create(name); err != nil {
		return "", err
	}
	c.active = name
	return name, nil
}

// SwitchSession makes an existing session active.
func (c *Companion) SwitchSession(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.sessions.Has(name) {
		return fmt.Errorf("session %q: %w", name, store.ErrNotFound)
	}
	c.active = name
	return nil
}

// DeleteSession removes a session and returns the active session after
// the deletion.
func (c *Companion) DeleteSession(name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	active, err := c.sessions.Delete(name, c.active)
	if err != nil {
		return c.active, err
	}
	c.active = active
	return active, nil
}

// ActiveSession returns the name of the active session.
func (c *Companion) ActiveSession() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Sessions lists the session names and the active one.
func (c *Companion) Sessions() pkg.SessionList {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pkg.SessionList{Active: c.active, Sessions: c.sessions.Names()}
}

// History returns the turns of a session; an empty name means the active
// session.
func (c *Companion) History(name string) ([]pkg.Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == "" {
		name = c.active
	}
	return c.sessions.Turns(name)
}

// SetProfileName stores the display name.
func (c *Companion) SetProfileName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = strings.TrimSpace(name)
}

// ProfileName returns the display name.
func (c *Companion) ProfileName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

// Medications returns the current medication list.
func (c *Companion) Medications() []pkg.MedicationRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meds.List()
}

// AddMedication validates the form and stores the new record.
func (c *Companion) AddMedication(req pkg.MedicationRequest) (pkg.MedicationRecord, error) {
	rec, err := store.ParseMedicationForm(req)
	if err != nil {
		return pkg.MedicationRecord{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meds.Add(rec)
}

// RemoveMedication deletes a record by ID.
func (c *Companion) RemoveMedication(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meds.RemoveByID(id)
}

// RemoveMedicationsByName deletes every record with the given name.
func (c *Companion) RemoveMedicationsByName(name string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meds.Remove(name)
}

// Summarize recaps a session for a caregiver; an empty name means the
// active session.  The model call runs without holding the state lock.
func (c *Companion) Summarize(ctx context.Context, name string) (*pkg.Summary, error) {
	c.mu.Lock()
	if name == "" {
		name = c.active
	}
	turns, err := c.sessions.Turns(name)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c.summarizer.Summarize(ctx, name, turns)
}

// repairActive re-establishes that the active session exists.
func (c *Companion) repairActive() {
	if c.sessions.Has(c.active) {
		return
	}
	if c.sessions.Has(store.DefaultSession) {
		c.active = store.DefaultSession
		return
	}
	c.active = c.sessions.Names()[0]
}

package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"care-companion/pkg"

	"github.com/lib/pq"
)

// DefaultChannel is the NOTIFY channel used when none is configured.
const DefaultChannel = "caregiver_alerts"

// maxPayloadMessage keeps NOTIFY payloads well under PostgreSQL's 8000 byte
// limit.
const maxPayloadMessage = 1000

// Notifier records alerts and publishes them with NOTIFY so caregiver
// dashboards can stream them.  It implements core.AlertSink.
type Notifier struct {
	Repo    *Repository
	DSN     string
	Channel string
	Logger  *slog.Logger
}

// NewNotifier constructs a Notifier.  The DSN is only used by Listen, which
// needs a dedicated connection.
func NewNotifier(repo *Repository, dsn, channel string, logger *slog.Logger) *Notifier {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{Repo: repo, DSN: dsn, Channel: channel, Logger: logger}
}

// Alert stores the alert and sends it on the channel.
func (n *Notifier) Alert(ctx context.Context, a pkg.Alert) error {
	if err := n.Repo.InsertAlert(ctx, &a); err != nil {
		return err
	}
	payload, err := EncodePayload(a)
	if err != nil {
		return err
	}
	if _, err := n.Repo.DB.ExecContext(ctx, `SELECT pg_notify($1, $2)`, n.Channel, payload); err != nil {
		return fmt.Errorf("notify %s: %w", n.Channel, err)
	}
	return nil
}

// Listen subscribes to the channel and yields alerts until ctx is done.
// The returned channel is closed when the listener stops.
func (n *Notifier) Listen(ctx context.Context) (<-chan pkg.Alert, error) {
	listener := pq.NewListener(n.DSN, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			n.Logger.Warn("alert listener event", "event", ev, "error", err)
		}
	})
	if err := listener.Listen(n.Channel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("listen %s: %w", n.Channel, err)
	}

	ch := make(chan pkg.Alert)
	go func() {
		defer func() {
			_ = listener.Close()
			close(ch)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case note := <-listener.Notify:
				// nil is sent after the connection was re-established
				if note == nil {
					continue
				}
				a, err := DecodePayload(note.Extra)
				if err != nil {
					n.Logger.Warn("dropping malformed alert payload", "error", err)
					continue
				}
				select {
				case ch <- a:
				case <-ctx.Done():
					return
				}
			case <-time.After(90 * time.Second):
				go func() { _ = listener.Ping() }()
			}
		}
	}()
	return ch, nil
}

// EncodePayload serialises an alert for NOTIFY, truncating long messages.
func EncodePayload(a pkg.Alert) (string, error) {
	if len(a.Message) > maxPayloadMessage {
		cut := maxPayloadMessage
		for cut > 0 && !utf8.RuneStart(a.Message[cut]) {
			cut--
		}
		a.Message = a.Message[:cut] + "…"
	}
	b, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encode alert: %w", err)
	}
	return string(b), nil
}

// DecodePayload parses a NOTIFY payload produced by EncodePayload.
func DecodePayload(s string) (pkg.Alert, error) {
	var a pkg.Alert
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return pkg.Alert{}, fmt.Errorf("decode alert: %w", err)
	}
	return a, nil
}

package core

import (
	"context"
	"errors"
	"log/slog"

	"care-companion/pkg"
)

// AlertSink receives caregiver alerts.  Delivery is best effort.
type AlertSink interface {
	Alert(ctx context.Context, a pkg.Alert) error
}

// LogSink writes alerts to the structured log.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Alert(_ context.Context, a pkg.Alert) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("caregiver alert",
		"alert_id", a.ID,
		"session", a.Session,
		"concern", a.Concern.String(),
		"profile", a.ProfileName,
	)
	return nil
}

// MultiSink fans an alert out to every sink and joins their errors.
type MultiSink []AlertSink

func (m MultiSink) Alert(ctx context.Context, a pkg.Alert) error {
	var errs []error
	for _, s := range m {
		if err := s.Alert(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

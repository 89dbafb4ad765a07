// Package db stores caregiver alerts in PostgreSQL and publishes them on a
// LISTEN/NOTIFY channel.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"care-companion/pkg"

	"github.com/google/uuid"
)

// Repository wraps database operations for caregiver alerts.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a new Repository from an existing sql.DB.
// The caller is responsible for managing the DB connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// InsertAlert stores an alert, assigning an ID when it has none.
func (r *Repository) InsertAlert(ctx context.Context, a *pkg.Alert) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return fmt.Errorf("alert id %q: %w", a.ID, err)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO alerts (id, session_name, concern, message, profile_name, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		id, a.Session, string(a.Concern), a.Message, a.ProfileName, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// ListAlerts returns the most recent alerts, newest first.
func (r *Repository) ListAlerts(ctx context.Context, limit int) ([]pkg.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, session_name, concern, message, profile_name, created_at
         FROM alerts
         ORDER BY created_at DESC
         LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	alerts := []pkg.Alert{}
	for rows.Next() {
		var a pkg.Alert
		var concern string
		if err := rows.Scan(&a.ID, &a.Session, &concern, &a.Message, &a.ProfileName, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Concern = pkg.Concern(concern)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

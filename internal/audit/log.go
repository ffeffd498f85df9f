// internal/audit/log.go

// Package audit appends application lifecycle events to the relational audit
// log. Writes here are advisory; callers treat failures as non-fatal.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"voluntra-backend/internal/common/logger"
)

// Log writes audit rows through a shared *sql.DB.
type Log struct {
	db     *sql.DB
	logger logger.Logger
}

func NewLog(db *sql.DB, log logger.Logger) *Log {
	return &Log{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "audit-log"}),
	}
}

// Record inserts one audit row. Details are stored as JSON; a detail map that
// cannot be marshaled degrades to an empty object rather than losing the row.
func (l *Log) Record(ctx context.Context, eventType, resourceType, resourceID string, details map[string]interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		l.logger.Warn("failed to marshal audit details", map[string]interface{}{
			"error":     err,
			"eventType": eventType,
		})
		detailsJSON = []byte("{}")
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventType,
		resourceType,
		resourceID,
		detailsJSON,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	l.logger.Debug("audit event recorded", map[string]interface{}{
		"eventType":  eventType,
		"resourceId": resourceID,
	})
	return nil
}

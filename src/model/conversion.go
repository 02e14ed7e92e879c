package model

import (
	"context"
	"database/sql"
	"time"

	"github.com/username/bankconv/src/logger"
)

// Conversion status values stored in the conversions table.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Conversion represents a row in the conversions table: one upload that reached the converter.
type Conversion struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"request_id"`
	Filename   string    `json:"filename"`
	Format     string    `json:"format"`
	Profile    string    `json:"profile"`
	Rows       int       `json:"rows"`
	NetAmount  string    `json:"net_amount"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// InsertConversion stores one audit row and returns its id.
func InsertConversion(db *sql.DB, c Conversion) (int64, error) {
	query := `
		INSERT INTO conversions (request_id, filename, format, profile, row_count, net_amount, status, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	netAmount := c.NetAmount
	if netAmount == "" {
		netAmount = "0"
	}
	res, err := db.Exec(query, c.RequestID, c.Filename, c.Format, c.Profile, c.Rows, netAmount, c.Status, c.Error, c.DurationMS, createdAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRecentConversions returns up to limit audit rows, newest first.
func ListRecentConversions(db *sql.DB, limit int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, request_id, filename, format, profile, row_count, net_amount, status, error, duration_ms, created_at
		FROM conversions ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversions := []Conversion{}
	for rows.Next() {
		var c Conversion
		if err := rows.Scan(
			&c.ID,
			&c.RequestID,
			&c.Filename,
			&c.Format,
			&c.Profile,
			&c.Rows,
			&c.NetAmount,
			&c.Status,
			&c.Error,
			&c.DurationMS,
			&c.CreatedAt,
		); err != nil {
			logger.FromContext(context.TODO()).Error("Error scanning conversion row", "error", err)
			return nil, err
		}
		conversions = append(conversions, c)
	}
	return conversions, rows.Err()
}

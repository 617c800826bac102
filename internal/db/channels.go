package db

import (
	"fmt"
	"strings"
)

// ListChannels returns the channels of a contact in creation order
func (db *DB) ListChannels(contactID int64) ([]Channel, error) {
	query := `
		SELECT id, contact_id, type, value, verified, verified_at, created_at
		FROM channels
		WHERE contact_id = ?
		ORDER BY id
	`

	rows, err := db.conn.Query(query, contactID)
	if err != nil {
		return nil, fmt.Errorf("querying channels: %w", err)
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		var ch Channel
		err := rows.Scan(
			&ch.ID, &ch.ContactID, &ch.Type, &ch.Value,
			&ch.Verified, &ch.VerifiedAt, &ch.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning channel: %w", err)
		}
		channels = append(channels, ch)
	}

	return channels, rows.Err()
}

// CountUnverifiedChannels returns how many channels are not verified yet
func (db *DB) CountUnverifiedChannels() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM channels WHERE verified = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting channels: %w", err)
	}
	return n, nil
}

// AddChannel creates a new channel for ch.ContactID
func (db *DB) AddChannel(ch Channel) (int64, error) {
	if ch.ContactID <= 0 {
		return 0, fmt.Errorf("channel must belong to a contact")
	}
	value := strings.TrimSpace(ch.Value)
	if value == "" {
		return 0, fmt.Errorf("channel value cannot be empty")
	}

	query := `
		INSERT INTO channels (contact_id, type, value, verified, created_at)
		VALUES (?, ?, ?, 0, CURRENT_TIMESTAMP)
	`
	result, err := db.conn.Exec(query, ch.ContactID, ch.Type, value)
	if err != nil {
		return 0, fmt.Errorf("inserting channel: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting insert ID: %w", err)
	}
	return id, nil
}

// UpdateChannel changes the type and value of a channel. A changed
// value is no longer verified.
func (db *DB) UpdateChannel(ch Channel) error {
	value := strings.TrimSpace(ch.Value)
	if value == "" {
		return fmt.Errorf("channel value cannot be empty")
	}

	query := `
		UPDATE channels
		SET type = ?,
		    verified = CASE WHEN value = ? THEN verified ELSE 0 END,
		    verified_at = CASE WHEN value = ? THEN verified_at ELSE NULL END,
		    value = ?
		WHERE id = ?
	`
	if _, err := db.conn.Exec(query, ch.Type, value, value, value, ch.ID); err != nil {
		return fmt.Errorf("updating channel: %w", err)
	}
	return nil
}

// DeleteChannels deletes channels by ID
func (db *DB) DeleteChannels(channelIDs []int64) error {
	if len(channelIDs) == 0 {
		return nil
	}

	query := `DELETE FROM channels WHERE id IN (` + placeholders(len(channelIDs)) + `)`
	if _, err := db.conn.Exec(query, int64Args(channelIDs)...); err != nil {
		return fmt.Errorf("deleting channels: %w", err)
	}
	return nil
}

// VerifyChannels marks channels as verified now
func (db *DB) VerifyChannels(channelIDs []int64) error {
	if len(channelIDs) == 0 {
		return nil
	}

	query := `
		UPDATE channels
		SET verified = 1,
		    verified_at = CURRENT_TIMESTAMP
		WHERE id IN (` + placeholders(len(channelIDs)) + `)
	`
	if _, err := db.conn.Exec(query, int64Args(channelIDs)...); err != nil {
		return fmt.Errorf("verifying channels: %w", err)
	}
	return nil
}

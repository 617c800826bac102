package db

import (
	"fmt"
	"strings"
)

// ListIntents returns the intents of a contact, newest first
func (db *DB) ListIntents(contactID int64) ([]Intent, error) {
	query := `
		SELECT id, contact_id, type, state, abstract, notes, created_at, updated_at
		FROM intents
		WHERE contact_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := db.conn.Query(query, contactID)
	if err != nil {
		return nil, fmt.Errorf("querying intents: %w", err)
	}
	defer rows.Close()

	var intents []Intent
	for rows.Next() {
		var in Intent
		err := rows.Scan(
			&in.ID, &in.ContactID, &in.Type, &in.State,
			&in.Abstract, &in.Notes, &in.CreatedAt, &in.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning intent: %w", err)
		}
		intents = append(intents, in)
	}

	return intents, rows.Err()
}

// AddIntent creates a new intent for in.ContactID
func (db *DB) AddIntent(in Intent) (int64, error) {
	if in.ContactID <= 0 {
		return 0, fmt.Errorf("intent must belong to a contact")
	}
	if strings.TrimSpace(in.Abstract) == "" {
		return 0, fmt.Errorf("intent abstract cannot be empty")
	}
	if in.Type == "" {
		in.Type = "other"
	}
	if in.State == "" {
		in.State = "open"
	}

	query := `
		INSERT INTO intents (contact_id, type, state, abstract, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`
	result, err := db.conn.Exec(query, in.ContactID, in.Type, in.State, in.Abstract, in.Notes)
	if err != nil {
		return 0, fmt.Errorf("inserting intent: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting insert ID: %w", err)
	}
	return id, nil
}

// UpdateIntent updates type, state, abstract and notes of an intent
func (db *DB) UpdateIntent(in Intent) error {
	if strings.TrimSpace(in.Abstract) == "" {
		return fmt.Errorf("intent abstract cannot be empty")
	}

	query := `
		UPDATE intents
		SET type = ?, state = ?, abstract = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := db.conn.Exec(query, in.Type, in.State, in.Abstract, in.Notes, in.ID); err != nil {
		return fmt.Errorf("updating intent: %w", err)
	}
	return nil
}

// DeleteIntents deletes intents by ID
func (db *DB) DeleteIntents(intentIDs []int64) error {
	if len(intentIDs) == 0 {
		return nil
	}

	query := `DELETE FROM intents WHERE id IN (` + placeholders(len(intentIDs)) + `)`
	if _, err := db.conn.Exec(query, int64Args(intentIDs)...); err != nil {
		return fmt.Errorf("deleting intents: %w", err)
	}
	return nil
}

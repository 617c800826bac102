package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection
func Open(dbPath string) (*DB, error) {
	// Check if DB exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found at %s\nRun 'crm init' to create it", dbPath)
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite has a single writer; keep one connection so pragmas stick
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}

	// Run any pending migrations
	if err := db.RunMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// ContactQuery selects which contacts ListContacts returns
type ContactQuery struct {
	// Parent scopes the list to persons of one company. When not
	// valid only top-level contacts are returned.
	Parent sql.NullInt64
	// Name is a case-insensitive substring match on the name
	Name string
}

const contactColumns = `
	id, COALESCE(external_id, ''), parent_id, type, name, status,
	address1, address2, city, postcode, country, notes,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContact(s rowScanner) (Contact, error) {
	var c Contact
	err := s.Scan(
		&c.ID, &c.ExternalID, &c.ParentID, &c.Type, &c.Name, &c.Status,
		&c.Address1, &c.Address2, &c.City, &c.PostCode, &c.Country, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ListContacts returns the contacts matching q ordered by name
func (db *DB) ListContacts(q ContactQuery) ([]Contact, error) {
	var where []string
	var args []interface{}

	if q.Parent.Valid {
		where = append(where, "parent_id = ?")
		args = append(args, q.Parent.Int64)
	} else {
		where = append(where, "parent_id IS NULL")
	}

	if q.Name != "" {
		where = append(where, `name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(q.Name)+"%")
	}

	query := `SELECT ` + contactColumns + `
		FROM contacts
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY name COLLATE NOCASE, id`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}

		// Clean up the name field - remove newlines and trim whitespace
		c.Name = strings.TrimSpace(strings.ReplaceAll(c.Name, "\n", " "))

		contacts = append(contacts, c)
	}

	return contacts, rows.Err()
}

// GetContact retrieves a single contact by ID
func (db *DB) GetContact(id int64) (*Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ?`

	c, err := scanContact(db.conn.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AddContact creates a new contact in the database
func (db *DB) AddContact(contact Contact) (int64, error) {
	if strings.TrimSpace(contact.Name) == "" {
		return 0, fmt.Errorf("contact name cannot be empty")
	}
	if contact.Status == "" {
		contact.Status = DefaultStatus
	}
	if contact.ExternalID == "" {
		contact.ExternalID = uuid.NewString()
	}

	query := `
		INSERT INTO contacts (
			external_id, parent_id, type, name, status,
			address1, address2, city, postcode, country, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	result, err := db.conn.Exec(query,
		contact.ExternalID,
		contact.ParentID,
		contact.Type,
		contact.Name,
		contact.Status,
		contact.Address1,
		contact.Address2,
		contact.City,
		contact.PostCode,
		contact.Country,
		contact.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting contact: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting insert ID: %w", err)
	}

	return id, nil
}

// UpdateContact updates all editable fields of a contact
func (db *DB) UpdateContact(contact Contact) error {
	query := `
		UPDATE contacts
		SET name = ?,
		    status = ?,
		    address1 = ?,
		    address2 = ?,
		    city = ?,
		    postcode = ?,
		    country = ?,
		    notes = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := db.conn.Exec(query,
		contact.Name,
		contact.Status,
		contact.Address1,
		contact.Address2,
		contact.City,
		contact.PostCode,
		contact.Country,
		contact.Notes,
		contact.ID,
	)
	if err != nil {
		return fmt.Errorf("updating contact: %w", err)
	}

	return nil
}

// UpdateContactField updates a single editable column of a contact
func (db *DB) UpdateContactField(contactID int64, col Column, value string) error {
	if !editableColumns[col] {
		return fmt.Errorf("column %q is not editable", col)
	}

	var arg interface{} = NewNullString(value)
	switch col {
	case ColumnName:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("contact name cannot be empty")
		}
		arg = value
	case ColumnStatus:
		arg = value
	}

	query := fmt.Sprintf(`UPDATE contacts SET %s = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, col)
	if _, err := db.conn.Exec(query, arg, contactID); err != nil {
		return fmt.Errorf("updating contact %s: %w", col, err)
	}
	return nil
}

// DeleteContacts permanently deletes contacts, the persons that belong
// to them, and all associated channels and intents
func (db *DB) DeleteContacts(contactIDs []int64) error {
	if len(contactIDs) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	in := placeholders(len(contactIDs))
	ids := int64Args(contactIDs)
	both := append(append([]interface{}{}, ids...), ids...)

	// Children first, persons of deleted companies included
	owned := `contact_id IN (` + in + `) OR contact_id IN (SELECT id FROM contacts WHERE parent_id IN (` + in + `))`
	if _, err := tx.Exec(`DELETE FROM channels WHERE `+owned, both...); err != nil {
		return fmt.Errorf("deleting channels: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM intents WHERE `+owned, both...); err != nil {
		return fmt.Errorf("deleting intents: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM contacts WHERE parent_id IN (`+in+`)`, ids...); err != nil {
		return fmt.Errorf("deleting persons: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM contacts WHERE id IN (`+in+`)`, ids...); err != nil {
		return fmt.Errorf("deleting contacts: %w", err)
	}

	return tx.Commit()
}

// CountContacts returns the number of top-level companies, top-level
// individuals and persons belonging to companies
func (db *DB) CountContacts() (companies, individuals, persons int, err error) {
	err = db.conn.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN parent_id IS NULL AND type = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN parent_id IS NULL AND type = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN parent_id IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM contacts
	`).Scan(&companies, &individuals, &persons)
	if err != nil {
		err = fmt.Errorf("counting contacts: %w", err)
	}
	return
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

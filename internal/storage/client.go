package storage

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

// ClientDB is the client-local store: the saved session (sealed at rest),
// UI preferences, and the diagnostic ring buffer. It lives in the profile
// directory and holds no platform data.
type ClientDB struct {
	db  *sql.DB
	key [32]byte
}

// Open opens or creates the database under dir and prepares the sealing key.
func Open(dir string) (*ClientDB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrap(err, "create profile directory")
	}
	db, err := sql.Open("sqlite3", filepath.Join(dir, "client.db")+"?_fk=on")
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	cdb := &ClientDB{db: db}
	if err := cdb.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate database")
	}
	if err := cdb.loadKey(dir); err != nil {
		db.Close()
		return nil, err
	}
	return cdb, nil
}

// Close releases the database handle.
func (c *ClientDB) Close() error { return c.db.Close() }

func (c *ClientDB) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			sealed BLOB NOT NULL,
			saved_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS diagnostics (
			id TEXT PRIMARY KEY,
			at TIMESTAMP NOT NULL,
			kind TEXT NOT NULL,
			message TEXT NOT NULL,
			detail TEXT
		)`,
	}
	for _, stmt := range schema {
		if _, err := c.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// loadKey derives the sealing key from a machine secret kept beside the
// database, creating the secret and salt on first run.
func (c *ClientDB) loadKey(dir string) error {
	secretPath := filepath.Join(dir, "secret")
	saltPath := filepath.Join(dir, "salt")

	secret, err := os.ReadFile(secretPath)
	if os.IsNotExist(err) {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return errors.Wrap(err, "generate machine secret")
		}
		secret = []byte(hex.EncodeToString(buf))
		if err := os.WriteFile(secretPath, secret, 0600); err != nil {
			return errors.Wrap(err, "write machine secret")
		}
	} else if err != nil {
		return errors.Wrap(err, "read machine secret")
	}

	salt, err := os.ReadFile(saltPath)
	if os.IsNotExist(err) {
		salt = make([]byte, 16)
		if _, err := rand.Read(salt); err != nil {
			return errors.Wrap(err, "generate salt")
		}
		if err := os.WriteFile(saltPath, salt, 0600); err != nil {
			return errors.Wrap(err, "write salt")
		}
	} else if err != nil {
		return errors.Wrap(err, "read salt")
	}

	derived, err := scrypt.Key(secret, salt, 1<<15, 8, 1, 32)
	if err != nil {
		return errors.Wrap(err, "derive sealing key")
	}
	copy(c.key[:], derived)
	return nil
}

// SaveSession seals the token and stores it, replacing any previous session.
func (c *ClientDB) SaveSession(token string) error {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return errors.Wrap(err, "nonce")
	}
	sealed := secretbox.Seal(nonce[:], []byte(token), &nonce, &c.key)
	_, err := c.db.Exec(
		`INSERT INTO session (id, sealed, saved_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET sealed = excluded.sealed, saved_at = excluded.saved_at`,
		sealed, time.Now())
	return errors.Wrap(err, "save session")
}

// ErrNoSession is returned when no saved session exists.
var ErrNoSession = errors.New("no saved session")

// LoadSession unseals and returns the saved token.
func (c *ClientDB) LoadSession() (string, error) {
	var sealed []byte
	err := c.db.QueryRow(`SELECT sealed FROM session WHERE id = 1`).Scan(&sealed)
	if err == sql.ErrNoRows {
		return "", ErrNoSession
	}
	if err != nil {
		return "", errors.Wrap(err, "load session")
	}
	if len(sealed) < 24 {
		return "", errors.New("sealed session too short")
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	token, ok := secretbox.Open(nil, sealed[24:], &nonce, &c.key)
	if !ok {
		return "", errors.New("unseal session failed")
	}
	return string(token), nil
}

// ClearSession drops the saved session.
func (c *ClientDB) ClearSession() error {
	_, err := c.db.Exec(`DELETE FROM session`)
	return errors.Wrap(err, "clear session")
}

// SetPreference stores a UI preference such as the interface language.
func (c *ClientDB) SetPreference(key, value string) error {
	_, err := c.db.Exec(
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return errors.Wrap(err, "set preference")
}

// Preference reads a UI preference, empty string when unset.
func (c *ClientDB) Preference(key string) (string, error) {
	var value string
	err := c.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, errors.Wrap(err, "read preference")
}

// Diagnostic is one recorded async failure.
type Diagnostic struct {
	ID      string    `json:"id"`
	At      time.Time `json:"at"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

// maxDiagnostics bounds the ring buffer.
const maxDiagnostics = 10

// AppendDiagnostic records a failure, keeping only the most recent entries.
func (c *ClientDB) AppendDiagnostic(d Diagnostic) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.At.IsZero() {
		d.At = time.Now()
	}
	if _, err := c.db.Exec(
		`INSERT INTO diagnostics (id, at, kind, message, detail) VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.At, d.Kind, d.Message, d.Detail); err != nil {
		return errors.Wrap(err, "append diagnostic")
	}
	_, err := c.db.Exec(
		`DELETE FROM diagnostics WHERE id NOT IN (
			SELECT id FROM diagnostics ORDER BY at DESC, id DESC LIMIT ?
		)`, maxDiagnostics)
	return errors.Wrap(err, "trim diagnostics")
}

// Diagnostics lists recorded failures, newest first.
func (c *ClientDB) Diagnostics() ([]Diagnostic, error) {
	rows, err := c.db.Query(
		`SELECT id, at, kind, message, detail FROM diagnostics ORDER BY at DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "list diagnostics")
	}
	defer rows.Close()

	var out []Diagnostic
	for rows.Next() {
		var d Diagnostic
		var detail sql.NullString
		if err := rows.Scan(&d.ID, &d.At, &d.Kind, &d.Message, &detail); err != nil {
			return nil, errors.Wrap(err, "scan diagnostic")
		}
		d.Detail = detail.String
		out = append(out, d)
	}
	return out, rows.Err()
}

// ClearDiagnostics empties the ring buffer. Called when a new session
// starts, which keeps the record session-scoped.
func (c *ClientDB) ClearDiagnostics() error {
	_, err := c.db.Exec(`DELETE FROM diagnostics`)
	return errors.Wrap(err, "clear diagnostics")
}

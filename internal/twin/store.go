package twin

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// DatabaseFile is the SQLite file created inside the data directory.
const DatabaseFile = "twin.db"

// Store errors.
var (
	ErrNotFound          = errors.New("record not found")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrStoreClosed       = errors.New("store is closed")
)

// Store persists twin records in SQLite.
type Store struct {
	mu      sync.RWMutex
	db      *sql.DB
	account map[string]any
	now     func() time.Time
}

// Open creates dataDir if needed and opens (or creates) the twin database in
// it. The account singleton is named accountName.
func Open(dataDir, accountName string) (*Store, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DatabaseFile))
	if err != nil {
		return nil, err
	}
	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	return &Store{
		db:      db,
		account: map[string]any{"id": int64(1), "name": accountName},
		now:     time.Now,
	}, nil
}

// Close releases the database. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Account returns the account singleton.
func (s *Store) Account() map[string]any {
	out := make(map[string]any, len(s.account))
	for k, v := range s.account {
		out[k] = v
	}
	return out
}

// Insert stores body as a new record of collection and returns it with its
// assigned id and timestamps.
func (s *Store) Insert(collection string, body map[string]any) (map[string]any, error) {
	if !collections[collection] {
		return nil, ErrUnknownCollection
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	now := s.now().Unix()
	record := stripID(body)
	record["date_created"] = now
	record["date_modified"] = now

	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	res, err := s.db.Exec(
		"INSERT INTO records (collection, body, date_created, date_modified) VALUES (?, ?, ?, ?)",
		collection, string(encoded), now, now)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	record["id"] = id
	return record, nil
}

// Get returns the record with the given id.
// Returns ErrNotFound if it does not exist in collection.
func (s *Store) Get(collection string, id int64) (map[string]any, error) {
	if !collections[collection] {
		return nil, ErrUnknownCollection
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	return s.get(collection, id)
}

func (s *Store) get(collection string, id int64) (map[string]any, error) {
	var body string
	err := s.db.QueryRow(
		"SELECT body FROM records WHERE collection = ? AND id = ?", collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(body), &record); err != nil {
		return nil, fmt.Errorf("decode record %d: %w", id, err)
	}
	record["id"] = id
	return record, nil
}

// Update merges body into the stored record: keys present in body replace
// the stored ones, others are kept. The id cannot change.
func (s *Store) Update(collection string, id int64, body map[string]any) (map[string]any, error) {
	if !collections[collection] {
		return nil, ErrUnknownCollection
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	record, err := s.get(collection, id)
	if err != nil {
		return nil, err
	}
	for k, v := range stripID(body) {
		record[k] = v
	}
	delete(record, "id")
	record["date_modified"] = s.now().Unix()

	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(
		"UPDATE records SET body = ?, date_modified = ? WHERE collection = ? AND id = ?",
		string(encoded), record["date_modified"], collection, id); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	record["id"] = id
	return record, nil
}

// Delete removes the record with the given id.
// Returns ErrNotFound if it does not exist.
func (s *Store) Delete(collection string, id int64) error {
	if !collections[collection] {
		return ErrUnknownCollection
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrStoreClosed
	}

	res, err := s.db.Exec("DELETE FROM records WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedDefinitions stores defs, replacing definitions with the same id.
func (s *Store) SeedDefinitions(defs types.Definitions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, def := range defs {
		encoded, err := json.Marshal(def)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO custom_field_definitions (id, body) VALUES (?, ?)",
			def.ID, string(encoded)); err != nil {
			tx.Rollback()
			return fmt.Errorf("seed definition %d: %w", def.ID, err)
		}
	}
	return tx.Commit()
}

// Definitions returns every stored custom field definition ordered by id.
func (s *Store) Definitions() (types.Definitions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query("SELECT body FROM custom_field_definitions ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defs := types.Definitions{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var def types.CustomFieldDefinition
		if err := json.Unmarshal([]byte(body), &def); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// stripID copies body without its id key.
func stripID(body map[string]any) map[string]any {
	out := make(map[string]any, len(body))
	for k, v := range body {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

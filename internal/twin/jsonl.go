package twin

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// snapshotLine is one record in a JSONL snapshot.
type snapshotLine struct {
	Collection string         `json:"collection"`
	ID         int64          `json:"id"`
	Record     map[string]any `json:"record"`
}

// Import loads records from a JSONL snapshot, keeping their ids. Records with
// an id already present are replaced. Blank and malformed lines, and lines
// naming an unknown collection, are skipped. Returns the number imported.
func (s *Store) Import(path string) (int, error) {
	lines, err := readJSONL(path)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0, ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, raw := range lines {
		var line snapshotLine
		if err := json.Unmarshal(raw, &line); err != nil || !collections[line.Collection] || line.ID <= 0 {
			continue
		}
		record := stripID(line.Record)
		created, _ := record["date_created"].(float64)
		modified, _ := record["date_modified"].(float64)
		encoded, err := json.Marshal(record)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO records (id, collection, body, date_created, date_modified) VALUES (?, ?, ?, ?, ?)",
			line.ID, line.Collection, string(encoded), int64(created), int64(modified)); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("import record %d: %w", line.ID, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// Export writes every record to a JSONL snapshot at path, one record per
// line ordered by id. The file is replaced atomically.
func (s *Store) Export(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrStoreClosed
	}

	rows, err := s.db.Query("SELECT id, collection, body FROM records ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	var lines []json.RawMessage
	for rows.Next() {
		var (
			line snapshotLine
			body string
		)
		if err := rows.Scan(&line.ID, &line.Collection, &body); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(body), &line.Record); err != nil {
			return fmt.Errorf("decode record %d: %w", line.ID, err)
		}
		line.Record["id"] = line.ID
		encoded, err := json.Marshal(line)
		if err != nil {
			return err
		}
		lines = append(lines, encoded)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return writeJSONL(path, lines)
}

// readJSONL returns each non-empty, valid JSON line of the file at path.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail(fmt.Errorf("writing record: %w", err))
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail(fmt.Errorf("writing newline: %w", err))
		}
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

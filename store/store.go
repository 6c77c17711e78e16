package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mixmentor/mixmentor/logging"
)

// JSONStore persists the record collection as a single JSON array of
// flat records. Every upsert reads the whole collection, modifies it
// in memory and rewrites the file atomically; the last writer wins.
// Concurrent writers are not coordinated — an accepted limitation at
// this write volume, not something callers should rely on.
type JSONStore struct {
	path   string
	logger logging.Logger

	// swappable for tests
	now   func() time.Time
	newID func() string
}

// NewJSONStore creates a store backed by the JSON file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
		logger: logging.WithFields(logging.Fields{
			"component": "record_store",
			"path":      path,
		}),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Load reads the full collection. A missing, unreadable or
// wrong-shaped file yields an empty collection; the next successful
// write replaces whatever was on disk.
func (s *JSONStore) Load() []Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("record collection unreadable, starting empty", logging.Fields{
				"error": err.Error(),
			})
		}
		return nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("record collection corrupt, starting empty", logging.Fields{
			"error": err.Error(),
		})
		return nil
	}
	return records
}

// Find returns the record matching (email, fileHash). An empty hash
// never matches: hash-less records have no content identity.
func Find(records []Record, email, fileHash string) (Record, bool) {
	if fileHash == "" {
		return nil, false
	}
	for _, rec := range records {
		if rec.Email() == email && rec.FileHash() == fileHash {
			return rec, true
		}
	}
	return nil, false
}

// NextProjectNumber returns 1 + the highest project number among the
// user's records (1 when the user has none).
func NextProjectNumber(records []Record, email string) int {
	maxN := 0
	for _, rec := range records {
		if rec.Email() != email {
			continue
		}
		if n := rec.ProjectNumber(); n > maxN {
			maxN = n
		}
	}
	return maxN + 1
}

// Upsert merges fields into the record matching (email, file_hash) or
// appends a new one. Fields without a file_hash cannot be deduplicated
// and always append (used for identity-gate touch records). On merge,
// incoming keys overwrite and untouched keys survive. Reports whether
// a new record was created.
func (s *JSONStore) Upsert(email string, fields Record) (bool, error) {
	records := s.Load()

	idx := -1
	if fh := fields.FileHash(); fh != "" {
		for i, rec := range records {
			if rec.Email() == email && rec.FileHash() == fh {
				idx = i
				break
			}
		}
	}

	now := s.now().Format(time.RFC3339)
	created := idx < 0

	if created {
		rec := fields.Clone()
		if rec == nil {
			rec = Record{}
		}
		rec[FieldEmail] = email
		rec[FieldCreatedAt] = now
		rec[FieldUpdatedAt] = now
		rec[FieldRecordID] = s.newID()
		rec[FieldSchemaVersion] = SchemaVersion
		records = append(records, rec)
	} else {
		rec := records[idx]
		for k, v := range fields {
			rec[k] = v
		}
		rec[FieldEmail] = email
		rec[FieldUpdatedAt] = now
		rec[FieldSchemaVersion] = SchemaVersion
	}

	if err := s.write(records); err != nil {
		return false, err
	}

	s.logger.Debug("record upserted", logging.Fields{
		"email":   email,
		"hash":    fields.FileHash(),
		"created": created,
		"total":   len(records),
	})

	return created, nil
}

// write rewrites the whole collection atomically, preserving the
// insertion order of untouched records.
func (s *JSONStore) write(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".records-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace records file: %w", err)
	}
	return nil
}

package recent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kk-code-lab/medfind/internal/log"
	"github.com/kk-code-lab/medfind/internal/query"
)

const (
	// StorageKey names the blob holding the recent list.
	StorageKey = "recentSearches"
	// MaxEntries bounds the recent list.
	MaxEntries = 5
)

var ErrEmptyQuery = errors.New("empty query")

var logger = log.ForComponent("recent")

// Entry is one remembered search. Type holds the keyword category, or
// query.FreeformType for freeform searches.
type Entry struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
	Type  string `json:"type"`
}

// EntryFor builds the entry recorded for a submitted query.
func EntryFor(mode query.Mode, category query.Category, text string) Entry {
	entry := Entry{Query: strings.TrimSpace(text), Mode: string(mode), Type: string(category)}
	if mode == query.ModeFreeform {
		entry.Type = query.FreeformType
	}
	return entry
}

// Category returns the keyword category of the entry, if it has one.
func (e Entry) Category() (query.Category, bool) {
	if e.Mode == string(query.ModeFreeform) {
		return "", false
	}
	category, err := query.ParseCategory(e.Type)
	if err != nil {
		return "", false
	}
	return category, true
}

// SearchMode returns the entry's mode, treating unknown values as keyword.
func (e Entry) SearchMode() query.Mode {
	if e.Mode == string(query.ModeFreeform) || e.Type == query.FreeformType {
		return query.ModeFreeform
	}
	return query.ModeKeyword
}

// BlobStore is key/value storage scoped to one user session.
type BlobStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Store keeps the most recent distinct queries, newest first. Every
// operation returns a fresh slice.
type Store struct {
	blobs BlobStore
}

func NewStore(blobs BlobStore) *Store {
	if blobs == nil {
		blobs = NewMemoryBlobStore()
	}
	return &Store{blobs: blobs}
}

// Load returns the persisted list. Missing or malformed data yields an empty
// list.
func (s *Store) Load() []Entry {
	raw, ok, err := s.blobs.Get(StorageKey)
	if err != nil {
		logger.Warnf("reading %s: %v", StorageKey, err)
		return []Entry{}
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []Entry{}
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.Warnf("ignoring malformed %s: %v", StorageKey, err)
		return []Entry{}
	}
	return normalize(entries)
}

// Record moves entry to the front, dropping any older entry with the same
// query text.
func (s *Store) Record(entry Entry) ([]Entry, error) {
	entry.Query = strings.TrimSpace(entry.Query)
	if entry.Query == "" {
		return s.Load(), ErrEmptyQuery
	}
	current := s.Load()
	next := make([]Entry, 0, MaxEntries)
	next = append(next, entry)
	for _, existing := range current {
		if existing.Query == entry.Query {
			continue
		}
		next = append(next, existing)
	}
	if len(next) > MaxEntries {
		next = next[:MaxEntries]
	}
	if err := s.save(next); err != nil {
		return current, err
	}
	return next, nil
}

// Remove drops the entry whose query matches exactly.
func (s *Store) Remove(queryText string) ([]Entry, error) {
	current := s.Load()
	next := make([]Entry, 0, len(current))
	for _, existing := range current {
		if existing.Query != queryText {
			next = append(next, existing)
		}
	}
	if err := s.save(next); err != nil {
		return current, err
	}
	return next, nil
}

// Clear deletes the persisted list.
func (s *Store) Clear() error {
	if err := s.blobs.Remove(StorageKey); err != nil {
		return fmt.Errorf("clearing recent searches: %w", err)
	}
	return nil
}

func (s *Store) save(entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding recent searches: %w", err)
	}
	if err := s.blobs.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("saving recent searches: %w", err)
	}
	return nil
}

func normalize(entries []Entry) []Entry {
	out := make([]Entry, 0, min(len(entries), MaxEntries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.Query == "" {
			continue
		}
		if _, dup := seen[entry.Query]; dup {
			continue
		}
		seen[entry.Query] = struct{}{}
		out = append(out, entry)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}

package favorites

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// StorageKey is the key the favorites list is persisted under
const StorageKey = "favorites"

// ErrCorruptState is returned by Load when the persisted value cannot be parsed
var ErrCorruptState = errors.New("favorites: persisted state is corrupt")

// Action is what Toggle did to the list
type Action string

const (
	Added   Action = "added"
	Removed Action = "removed"
)

// Entry is one favorited character as persisted in the browser
type Entry struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl"`
	ID       int    `json:"id"`
}

// Store holds a visitor's favorites on top of a key/value Storage.
// Entries are unique by name and kept in insertion order.
type Store struct {
	storage Storage
	entries []Entry
	loaded  bool
	mu      sync.RWMutex
}

// NewStore creates a Store over storage; call Load before reading
func NewStore(storage Storage) *Store {
	return &Store{
		storage: storage,
		entries: []Entry{},
	}
}

// Load reads the persisted list. An absent value yields an empty list.
// An unparseable value also yields an empty list, reported as ErrCorruptState;
// it is overwritten by the next successful Toggle.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = []Entry{}
	s.loaded = true

	raw, ok, err := s.storage.GetItem(StorageKey)
	if err != nil {
		return fmt.Errorf("favorites: read storage: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}

	var decoded []Entry
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	s.entries = dedupe(decoded)
	return nil
}

// Toggle removes the entry with the same name if present, otherwise appends it,
// then persists the list
func (s *Store) Toggle(entry Entry) (Action, error) {
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		return "", errors.New("favorites: entry name is required")
	}
	entry.Name = name

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Entry, 0, len(s.entries)+1)
	action := Added
	for _, e := range s.entries {
		if e.Name == name {
			action = Removed
			continue
		}
		next = append(next, e)
	}
	if action == Added {
		next = append(next, entry)
	}

	if err := s.persist(next); err != nil {
		return "", err
	}
	s.entries = next
	return action, nil
}

// List returns a copy of the entries in insertion order
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Contains reports whether an entry with this name is favorited
func (s *Store) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Len returns the number of favorites
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Names returns the favorited names as a set
func (s *Store) Names() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make(map[string]bool, len(s.entries))
	for _, e := range s.entries {
		names[e.Name] = true
	}
	return names
}

func (s *Store) persist(entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("favorites: encode: %w", err)
	}
	if err := s.storage.SetItem(StorageKey, string(data)); err != nil {
		return fmt.Errorf("favorites: write storage: %w", err)
	}
	return nil
}

// dedupe keeps the first entry for every name
func dedupe(entries []Entry) []Entry {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" || seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		out = append(out, e)
	}
	return out
}

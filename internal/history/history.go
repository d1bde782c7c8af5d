// Package history remembers the last probe outcome per device address so
// repeat runs can show how a device graded before.
package history

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/9916bernard/isYafit-mobile-sub001/internal/compat"
	"github.com/9916bernard/isYafit-mobile-sub001/internal/protocol"
)

// Entry is one device's most recent probe outcome.
type Entry struct {
	Address  string        `json:"address"`
	Name     string        `json:"name"`
	Protocol protocol.Kind `json:"protocol"`
	Level    compat.Level  `json:"level"`
	ProbedAt time.Time     `json:"probed_at"`
}

type storeData struct {
	EntriesByAddress map[string]Entry `json:"entries_by_address"`
}

// Store is a JSON-file backed record of past probe results. Load and save
// failures are logged and swallowed; history is never worth failing a
// probe over.
type Store struct {
	filePath string
	data     storeData
	logger   *log.Logger
}

// NewStore loads the history file under the user's home directory,
// starting empty when it does not exist yet.
func NewStore(logger *log.Logger) *Store {
	if logger == nil {
		panic("Store: logger cannot be nil")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return NewStoreAt(logger, filepath.Join(homeDir, ".yafit-probe", "history.json"))
}

// NewStoreAt loads the history file at an explicit path.
func NewStoreAt(logger *log.Logger, filePath string) *Store {
	if logger == nil {
		panic("Store: logger cannot be nil")
	}
	s := &Store{filePath: filePath, logger: logger}
	s.load()
	return s
}

// Get returns the last recorded outcome for a device address.
func (s *Store) Get(address string) (Entry, bool) {
	entry, ok := s.data.EntriesByAddress[address]
	return entry, ok
}

// Put records a device's outcome and persists the store.
func (s *Store) Put(entry Entry) {
	s.logger.Printf("History: record %s (%s) -> %s", entry.Address, entry.Name, entry.Level)
	s.data.EntriesByAddress[entry.Address] = entry
	s.save()
}

// Entries returns every recorded outcome.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.data.EntriesByAddress))
	for _, entry := range s.data.EntriesByAddress {
		out = append(out, entry)
	}
	return out
}

func (s *Store) load() {
	s.data = storeData{EntriesByAddress: make(map[string]Entry)}
	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		s.logger.Printf("History: load %s (no existing file)", s.filePath)
		return
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		s.logger.Printf("History: load %s failed to parse: %v", s.filePath, err)
		return
	}
	if s.data.EntriesByAddress == nil {
		s.data.EntriesByAddress = make(map[string]Entry)
	}
	s.logger.Printf("History: load %s -> %d entries", s.filePath, len(s.data.EntriesByAddress))
}

func (s *Store) save() {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		s.logger.Printf("History: save mkdir failed: %v", err)
		return
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		s.logger.Printf("History: save marshal failed: %v", err)
		return
	}
	if err := os.WriteFile(s.filePath, raw, 0644); err != nil {
		s.logger.Printf("History: save %s failed: %v", s.filePath, err)
		return
	}
	s.logger.Printf("History: save %s -> %d entries", s.filePath, len(s.data.EntriesByAddress))
}

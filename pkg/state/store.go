// Package state holds the per-conversation state of the bot in memory.
//
// Entries are created lazily and only removed by an explicit Clear; there is
// no expiry and nothing survives a restart.
package state

import (
	"maps"
	"sync"
)

// Tag is the position of a conversation in the state machine.
type Tag string

const (
	Idle             Tag = "idle"
	AwaitingCityText Tag = "awaiting_city_text"
	AwaitingLocation Tag = "awaiting_location"
	AwaitingPrompt   Tag = "awaiting_prompt"
)

// KeyModel holds the selected model id while in AwaitingPrompt.
const KeyModel = "model"

// Scoped reports whether t binds a state-scoped handler.
func (t Tag) Scoped() bool {
	switch t {
	case AwaitingCityText, AwaitingLocation, AwaitingPrompt:
		return true
	}
	return false
}

// State is a snapshot of one conversation's entry. Data is a copy and may be
// modified freely by the caller.
type State struct {
	Tag  Tag
	Data map[string]string
}

type entry struct {
	tag  Tag
	data map[string]string
}

// Store maps conversation ids to their state. The map itself is shared
// between dispatcher lanes; each key is only written from its own lane.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Get returns the state for id; a missing entry reads as Idle with no data.
func (s *Store) Get(id string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return State{Tag: Idle, Data: map[string]string{}}
	}
	return State{Tag: e.tag, Data: maps.Clone(e.data)}
}

// SetTag moves id to tag, keeping its data.
func (s *Store) SetTag(id string, tag Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entryLocked(id).tag = tag
}

// Update merges kv into id's data.
func (s *Store) Update(id string, kv map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(id)
	maps.Copy(e.data, kv)
}

// Clear resets id to Idle and drops its data.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len returns the number of conversations with a stored entry.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) entryLocked(id string) *entry {
	e, ok := s.entries[id]
	if !ok {
		e = &entry{tag: Idle, data: make(map[string]string)}
		s.entries[id] = e
	}
	return e
}

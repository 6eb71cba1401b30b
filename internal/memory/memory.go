package memory

import (
	"strings"
	"sync"
)

const (
	RoleHuman     = "human"
	RoleAssistant = "assistant"
)

type entry struct {
	role string
	text string
}

// Buffer is a bounded window over past (query, answer) exchanges. Appends
// are strictly ordered; once more than `window` exchanges accumulate the
// oldest pair is dropped first. Never persisted, reset on restart.
type Buffer struct {
	mu      sync.Mutex
	window  int
	entries []entry
}

func NewBuffer(window int) *Buffer {
	if window <= 0 {
		window = 3
	}
	return &Buffer{window: window}
}

func (b *Buffer) Append(query, answer string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries,
		entry{role: RoleHuman, text: query},
		entry{role: RoleAssistant, text: answer},
	)
	if max := b.window * 2; len(b.entries) > max {
		b.entries = b.entries[len(b.entries)-max:]
	}
}

// Render serializes the buffer chronologically as alternating
// "Human: ..." / "Assistant: ..." lines, empty string when empty.
func (b *Buffer) Render() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		if e.role == RoleHuman {
			lines = append(lines, "Human: "+e.text)
			continue
		}
		lines = append(lines, "Assistant: "+e.text)
	}
	return strings.Join(lines, "\n")
}

// Store keys one buffer per dataset so concurrent conversations about
// different datasets never leak history into each other's prompts.
type Store struct {
	mu      sync.Mutex
	window  int
	buffers map[string]*Buffer
}

func NewStore(window int) *Store {
	return &Store{window: window, buffers: make(map[string]*Buffer)}
}

func (s *Store) buffer(dataset string) *Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf, ok := s.buffers[dataset]
	if !ok {
		buf = NewBuffer(s.window)
		s.buffers[dataset] = buf
	}
	return buf
}

func (s *Store) Append(dataset, query, answer string) {
	s.buffer(dataset).Append(query, answer)
}

func (s *Store) Render(dataset string) string {
	return s.buffer(dataset).Render()
}

// Drop discards a dataset's history, used when the dataset is deleted.
func (s *Store) Drop(dataset string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buffers, dataset)
}

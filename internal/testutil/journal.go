package testutil

import "sync"

// Journal is an ordered log of what happened during a test, shared between
// the mock client and the recording collaborators.
type Journal struct {
	mu      sync.Mutex
	entries []string
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) Record(entry string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

func (j *Journal) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = nil
}

package testdoubles

import "sync"

// CallJournal records the order in which spies were invoked across collaborators.
// Sharing one journal between a SinkSpy and a CookieServiceSpy shows whether a sink
// saw a call before the delegate did.
type CallJournal struct {
	entries []string
	mu      sync.Mutex
}

// NewCallJournal creates an empty CallJournal.
func NewCallJournal() *CallJournal {
	return &CallJournal{}
}

// Append adds an entry.
func (j *CallJournal) Append(entry string) {
	if j == nil {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, entry)
}

// Entries returns a copy of all entries in call order.
func (j *CallJournal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	return append([]string(nil), j.entries...)
}

package components

import "github.com/alexisbeaulieu97/rigup/internal/model"

// StepState is the display state of a step that has not necessarily finished.
type StepState int

const (
	StepPending StepState = iota
	StepRunning
	StepDone
)

// StepEntry represents a single step for rendering.
type StepEntry struct {
	ID    string
	Label string
	State StepState
	// Entry is set once State is StepDone.
	Entry model.ReportEntry
}

// StepList holds steps in execution order.
type StepList struct {
	entries []StepEntry
	index   map[string]int
}

// NewStepList constructs a step list with every step pending.
func NewStepList(ids, labels []string) StepList {
	list := StepList{
		entries: make([]StepEntry, 0, len(ids)),
		index:   make(map[string]int, len(ids)),
	}
	for i, id := range ids {
		label := id
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}
		list.index[id] = len(list.entries)
		list.entries = append(list.entries, StepEntry{ID: id, Label: label})
	}
	return list
}

// Start marks a step running. Unknown IDs are appended.
func (s StepList) Start(id string) StepList {
	s = s.clone()
	i := s.ensure(id)
	s.entries[i].State = StepRunning
	return s
}

// Finish records a step's report entry. It reports whether the step was not
// already done.
func (s StepList) Finish(entry model.ReportEntry) (StepList, bool) {
	s = s.clone()
	i := s.ensure(entry.StepID)
	first := s.entries[i].State != StepDone
	s.entries[i].State = StepDone
	s.entries[i].Entry = entry
	return s, first
}

// Entries returns the ordered step entries.
func (s StepList) Entries() []StepEntry {
	clone := make([]StepEntry, len(s.entries))
	copy(clone, s.entries)
	return clone
}

// Len returns the number of steps.
func (s StepList) Len() int {
	return len(s.entries)
}

func (s *StepList) ensure(id string) int {
	if i, ok := s.index[id]; ok {
		return i
	}
	s.index[id] = len(s.entries)
	s.entries = append(s.entries, StepEntry{ID: id, Label: id})
	return len(s.entries) - 1
}

// clone copies the backing storage so value receivers stay independent.
func (s StepList) clone() StepList {
	out := StepList{
		entries: make([]StepEntry, len(s.entries)),
		index:   make(map[string]int, len(s.index)),
	}
	copy(out.entries, s.entries)
	for id, i := range s.index {
		out.index[id] = i
	}
	return out
}

package bench

import (
	"sort"

	"taxpro/internal/common"
)

const (
	PriorityBase = 100
	PriorityStep = 10
)

type PriorityUpdate struct {
	EntryID  common.UUID
	Priority int
}

// AssignPriorities gives ordered[i] the priority PriorityBase - i*PriorityStep.
func AssignPriorities(ordered []common.UUID) []PriorityUpdate {
	updates := make([]PriorityUpdate, len(ordered))
	for i, id := range ordered {
		updates[i] = PriorityUpdate{EntryID: id, Priority: PriorityBase - i*PriorityStep}
	}
	return updates
}

// SortForDisplay orders entries by priority descending, oldest first on ties.
func SortForDisplay(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

// NextTailPriority is the priority that places a new entry after all others.
func NextTailPriority(entries []Entry) int {
	if len(entries) == 0 {
		return PriorityBase
	}
	lowest := entries[0].Priority
	for _, entry := range entries[1:] {
		if entry.Priority < lowest {
			lowest = entry.Priority
		}
	}
	return lowest - PriorityStep
}

package engine

import (
	"sort"
	"sync"
)

// EquipmentLocks provides mutual exclusion over shared site equipment.
// Each piece of equipment gets its own mutex, so two tasks needing the same
// crane never overlap while tasks on different equipment run freely.
type EquipmentLocks struct {
	mu    sync.Mutex             // Guards the locks map itself
	locks map[string]*sync.Mutex // Per-equipment mutexes
}

// NewEquipmentLocks creates a new lock manager.
func NewEquipmentLocks() *EquipmentLocks {
	return &EquipmentLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the mutex for one piece of equipment, creating it on first
// use.
func (e *EquipmentLocks) Lock(name string) {
	e.mu.Lock()
	lock, exists := e.locks[name]
	if !exists {
		lock = &sync.Mutex{}
		e.locks[name] = lock
	}
	e.mu.Unlock()

	// Acquire outside the manager lock to avoid contention
	lock.Lock()
}

// Unlock releases the mutex for one piece of equipment.
func (e *EquipmentLocks) Unlock(name string) {
	e.mu.Lock()
	lock, exists := e.locks[name]
	e.mu.Unlock()

	if exists {
		lock.Unlock()
	}
}

// LockAll acquires every named lock. Names are deduplicated and sorted
// before acquisition; sorting prevents deadlock when two tasks want
// overlapping equipment sets.
func (e *EquipmentLocks) LockAll(names []string) {
	for _, name := range dedupeSorted(names) {
		e.Lock(name)
	}
}

// UnlockAll releases every named lock in reverse sorted order, for symmetry
// with LockAll.
func (e *EquipmentLocks) UnlockAll(names []string) {
	sorted := dedupeSorted(names)
	for i := len(sorted) - 1; i >= 0; i-- {
		e.Unlock(sorted[i])
	}
}

// dedupeSorted returns the unique names in sorted order. A task listing the
// same equipment twice must not deadlock against itself.
func dedupeSorted(names []string) []string {
	if len(names) == 0 {
		return nil
	}

	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	unique := sorted[:1]
	for _, name := range sorted[1:] {
		if name != unique[len(unique)-1] {
			unique = append(unique, name)
		}
	}
	return unique
}

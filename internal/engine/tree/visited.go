package tree

import "sync"

// visitedSet is the cycle guard for one build. Mark is an atomic
// insert-if-absent.
type visitedSet struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{paths: make(map[string]struct{})}
}

// Mark records path and reports whether it was newly added.
func (v *visitedSet) Mark(path string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.paths[path]; ok {
		return false
	}
	v.paths[path] = struct{}{}
	return true
}

func (v *visitedSet) Contains(path string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.paths[path]
	return ok
}

func (v *visitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.paths)
}

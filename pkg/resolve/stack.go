package resolve

// stack is the chain of documents currently being expanded within one
// top-level resolve call. It exists for exactly that call's lifetime, so it
// needs no locking.
type stack struct {
	names []string
	on    map[string]struct{}
	limit int
}

func newStack(limit int) *stack {
	return &stack{
		on:    make(map[string]struct{}, limit),
		limit: limit,
	}
}

// push adds name to the chain. Reports false when the chain is already at
// the depth limit.
func (s *stack) push(name string) bool {
	if len(s.names) >= s.limit {
		return false
	}

	s.names = append(s.names, name)
	s.on[name] = struct{}{}
	return true
}

func (s *stack) pop() {
	if len(s.names) == 0 {
		return
	}

	last := s.names[len(s.names)-1]
	s.names = s.names[:len(s.names)-1]
	delete(s.on, last)
}

// contains reports whether name is already on the chain; a repeat means
// descending would close a cycle.
func (s *stack) contains(name string) bool {
	_, ok := s.on[name]
	return ok
}

// chainWith returns a copy of the chain with name appended, for error
// reporting.
func (s *stack) chainWith(name string) []string {
	chain := make([]string, 0, len(s.names)+1)
	chain = append(chain, s.names...)
	chain = append(chain, name)
	return chain
}

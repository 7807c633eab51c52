package testutils

import (
	"context"
	"sort"
	"sync"

	"github.com/inkwellhq/binder/pkg/document"
)

// MockStore is an in-memory document store that records calls and returns
// configurable results.
type MockStore struct {
	mu   sync.Mutex
	docs map[string]string

	// Reads accumulates every name passed to Read, in call order.
	Reads []string

	// FailOn causes Read to return an error when the name matches.
	FailOn string

	// FailErr is the error returned for FailOn reads. Defaults to
	// document.NotFoundError for the name when unset.
	FailErr error
}

// NewMockStore creates a store pre-populated with the given documents.
func NewMockStore(docs map[string]string) *MockStore {
	copied := make(map[string]string, len(docs))
	for name, text := range docs {
		copied[name] = text
	}
	return &MockStore{docs: copied}
}

// Put adds or replaces a document.
func (s *MockStore) Put(name, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = text
}

// ReadCount returns how many times the named document has been read.
func (s *MockStore) ReadCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, read := range s.Reads {
		if read == name {
			count++
		}
	}
	return count
}

func (s *MockStore) Read(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Reads = append(s.Reads, name)

	if s.FailOn != "" && name == s.FailOn {
		if s.FailErr != nil {
			return "", s.FailErr
		}
		return "", document.NotFoundError{Name: name}
	}

	text, ok := s.docs[name]
	if !ok {
		return "", document.NotFoundError{Name: name}
	}
	return text, nil
}

func (s *MockStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[name]
	return ok, nil
}

func (s *MockStore) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MockStore) Close() error { return nil }

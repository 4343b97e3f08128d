// Package store implements persistence for Patterns and simulation results.
// Grounded in the corpus's bbolt-backed Storage type (storage.go): one
// bucket per collection, Update/View transactions, ID-keyed Put/Get.
// Unlike that storage layer, this package serializes values as JSON rather
// than protobuf — the engine has no generated protobuf schema of its own
// and spec.md's wire contract is already JSON end to end, so adding a
// second serialization format for the on-disk copy would buy nothing (see
// DESIGN.md).
package store

import (
	"fmt"
	"sync"

	"github.com/fiscalsim/engine/internal/domain"
	"github.com/fiscalsim/engine/internal/simerr"
)

// PatternStore persists the named set of recurring Patterns for a company.
type PatternStore interface {
	Save(companyID string, p domain.Pattern) error
	Get(companyID, patternID string) (domain.Pattern, error)
	List(companyID string) ([]domain.Pattern, error)
	Delete(companyID, patternID string) error
}

// MemoryPatternStore is an in-process PatternStore, used by tests and by the
// reference server when its config sets no dbPath.
type MemoryPatternStore struct {
	mu       sync.RWMutex
	patterns map[string]map[string]domain.Pattern // companyID -> patternID -> Pattern
}

// NewMemoryPatternStore builds an empty MemoryPatternStore.
func NewMemoryPatternStore() *MemoryPatternStore {
	return &MemoryPatternStore{patterns: make(map[string]map[string]domain.Pattern)}
}

func (s *MemoryPatternStore) Save(companyID string, p domain.Pattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.patterns[companyID] == nil {
		s.patterns[companyID] = make(map[string]domain.Pattern)
	}
	s.patterns[companyID][p.ID] = p
	return nil
}

func (s *MemoryPatternStore) Get(companyID, patternID string) (domain.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patterns[companyID][patternID]
	if !ok {
		return domain.Pattern{}, &simerr.NotFound{Kind: "pattern", ID: patternID}
	}
	return p, nil
}

func (s *MemoryPatternStore) List(companyID string) ([]domain.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Pattern, 0, len(s.patterns[companyID]))
	for _, p := range s.patterns[companyID] {
		out = append(out, p)
	}
	return out, nil
}

func (s *MemoryPatternStore) Delete(companyID, patternID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patterns[companyID][patternID]; !ok {
		return &simerr.NotFound{Kind: "pattern", ID: patternID}
	}
	delete(s.patterns[companyID], patternID)
	return nil
}

func patternKey(companyID, patternID string) []byte {
	return []byte(fmt.Sprintf("%s/%s", companyID, patternID))
}

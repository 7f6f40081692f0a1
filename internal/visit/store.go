package visit

import (
	"context"
	"sync"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
)

// Store is the visit ledger contract: append and read, nothing else.
type Store interface {
	Append(ctx context.Context, visit *Visit) error
	ListByClient(ctx context.Context, clientID domain.ClientID) ([]*Visit, error)
}

// InMemory keeps visits in memory for unit tests and local development.
type InMemory struct {
	mu     sync.RWMutex
	visits []*Visit
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, v *Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *v
	s.visits = append(s.visits, &copied)
	return nil
}

func (s *InMemory) ListByClient(_ context.Context, clientID domain.ClientID) ([]*Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Visit
	for _, v := range s.visits {
		if v.ClientID == clientID {
			copied := *v
			result = append(result, &copied)
		}
	}
	return result, nil
}

// All returns a snapshot of the ledger. Used by the in-memory stats
// aggregation.
func (s *InMemory) All() []*Visit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Visit, 0, len(s.visits))
	for _, v := range s.visits {
		copied := *v
		result = append(result, &copied)
	}
	return result
}

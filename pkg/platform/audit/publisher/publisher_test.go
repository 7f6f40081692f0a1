package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	audit "github.com/Escana/app-escana01-production-sub000/pkg/platform/audit"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	establishmentID := domain.EstablishmentID(uuid.New())
	err := pub.Emit(context.Background(), audit.Event{
		EstablishmentID: establishmentID,
		Action:          string(audit.EventEntryGranted),
	})
	require.NoError(t, err)

	events, err := store.ListByEstablishment(context.Background(), establishmentID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventEntryGranted), events[0].Action)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	establishmentID := domain.EstablishmentID(uuid.New())
	err := pub.Emit(context.Background(), audit.Event{
		EstablishmentID: establishmentID,
		Action:          string(audit.EventEntryDenied),
	})
	require.NoError(t, err)

	// Wait for async processing
	assert.Eventually(t, func() bool {
		events, listErr := store.ListByEstablishment(context.Background(), establishmentID)
		return listErr == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	establishmentID := domain.EstablishmentID(uuid.New())
	for i := 0; i < 10; i++ {
		err := pub.Emit(context.Background(), audit.Event{
			EstablishmentID: establishmentID,
			Action:          string(audit.EventBanApplied),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByEstablishment(context.Background(), establishmentID)
	require.NoError(t, err)
	assert.Len(t, events, 10)
}

// Package guestlist answers membership queries against the externally
// managed pre-approved entry roster. Membership only affects the
// classification shown to staff; it never denies access, and the access
// engine degrades to Regular when the check fails.
package guestlist

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
)

// Checker reports whether a national ID is on an establishment's guest list.
type Checker interface {
	IsListed(ctx context.Context, establishmentID domain.EstablishmentID, nationalID domain.NationalID) (bool, error)
}

// RedisChecker reads membership from the Redis set maintained by the
// guest-list subsystem.
type RedisChecker struct {
	client *redis.Client
}

func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

func listKey(establishmentID domain.EstablishmentID) string {
	return "guestlist:" + establishmentID.String()
}

func (c *RedisChecker) IsListed(ctx context.Context, establishmentID domain.EstablishmentID, nationalID domain.NationalID) (bool, error) {
	listed, err := c.client.SIsMember(ctx, listKey(establishmentID), nationalID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("guest list membership check: %w", err)
	}
	return listed, nil
}

// InMemory is the map-backed checker for unit tests and local development.
type InMemory struct {
	mu      sync.RWMutex
	entries map[domain.EstablishmentID]map[domain.NationalID]struct{}
	// Err, when set, is returned by every check. Tests use it to exercise
	// the engine's degrade-to-Regular path.
	Err error
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[domain.EstablishmentID]map[domain.NationalID]struct{})}
}

// Add puts a national ID on an establishment's list.
func (c *InMemory) Add(establishmentID domain.EstablishmentID, nationalID domain.NationalID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[establishmentID] == nil {
		c.entries[establishmentID] = make(map[domain.NationalID]struct{})
	}
	c.entries[establishmentID][nationalID] = struct{}{}
}

func (c *InMemory) IsListed(_ context.Context, establishmentID domain.EstablishmentID, nationalID domain.NationalID) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Err != nil {
		return false, c.Err
	}
	_, listed := c.entries[establishmentID][nationalID]
	return listed, nil
}

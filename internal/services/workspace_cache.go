package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

// WorkspaceCacheTTL is how long a cached workspace payload stays fresh.
const WorkspaceCacheTTL = 30 * time.Second

// WorkspaceLoader is the recompute collaborator behind the cache.
type WorkspaceLoader interface {
	Load(ctx context.Context, organizationID, contentID uuid.UUID, includeChat bool) (*WorkspacePayload, error)
}

type cacheEntry struct {
	payload   *WorkspacePayload
	expiresAt time.Time
}

// WorkspaceCache is a lazy-expiry TTL cache over workspace payloads. There
// is no background eviction: stale entries are recomputed and overwritten
// on the next access. The clock is injected so expiry is testable.
type WorkspaceCache struct {
	loader WorkspaceLoader
	now    func() time.Time
	ttl    time.Duration
	log    *logger.Logger

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewWorkspaceCache(loader WorkspaceLoader, now func() time.Time, log *logger.Logger) *WorkspaceCache {
	if now == nil {
		now = time.Now
	}
	return &WorkspaceCache{
		loader:  loader,
		now:     now,
		ttl:     WorkspaceCacheTTL,
		log:     log.With("service", "WorkspaceCache"),
		entries: map[string]cacheEntry{},
	}
}

func cacheKey(organizationID, contentID uuid.UUID, includeChat bool) string {
	flag := 0
	if includeChat {
		flag = 1
	}
	return fmt.Sprintf("%s:%s:chat:%d", organizationID, contentID, flag)
}

// GetOrCompute returns the cached payload when fresh, otherwise recomputes
// through the loader and stores the result with a new expiry.
func (c *WorkspaceCache) GetOrCompute(ctx context.Context, organizationID, contentID uuid.UUID, includeChat bool) (*WorkspacePayload, error) {
	key := cacheKey(organizationID, contentID, includeChat)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.payload, nil
	}
	c.mu.Unlock()

	payload, err := c.loader.Load(ctx, organizationID, contentID, includeChat)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{payload: payload, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return payload, nil
}

// Invalidate drops both the chat-included and chat-excluded entries for a
// content row. Every write path that changes the persisted payload must
// call this; nothing invalidates automatically.
func (c *WorkspaceCache) Invalidate(organizationID, contentID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, cacheKey(organizationID, contentID, false))
	delete(c.entries, cacheKey(organizationID, contentID, true))
	c.mu.Unlock()
}

// Clear drops everything.
func (c *WorkspaceCache) Clear() {
	c.mu.Lock()
	c.entries = map[string]cacheEntry{}
	c.mu.Unlock()
}

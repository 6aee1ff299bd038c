package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

type fakeLoader struct {
	loads int
}

func (f *fakeLoader) Load(_ context.Context, organizationID, contentID uuid.UUID, includeChat bool) (*WorkspacePayload, error) {
	f.loads++
	payload := &WorkspacePayload{
		Content: &domain.Content{ID: contentID, OrganizationID: organizationID},
	}
	if includeChat {
		payload.Messages = []domain.ConversationMessage{{Content: "hi"}}
	}
	return payload, nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(t *testing.T) (*WorkspaceCache, *fakeLoader, *fakeClock) {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	loader := &fakeLoader{}
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewWorkspaceCache(loader, clock.now, log), loader, clock
}

func TestWorkspaceCacheServesFreshEntries(t *testing.T) {
	cache, loader, clock := newTestCache(t)
	org, content := uuid.New(), uuid.New()
	ctx := context.Background()

	if _, err := cache.GetOrCompute(ctx, org, content, false); err != nil {
		t.Fatalf("first get: %v", err)
	}
	clock.advance(29 * time.Second)
	if _, err := cache.GetOrCompute(ctx, org, content, false); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if loader.loads != 1 {
		t.Errorf("loader ran %d times, want 1 within the TTL", loader.loads)
	}
}

func TestWorkspaceCacheExpiresLazily(t *testing.T) {
	cache, loader, clock := newTestCache(t)
	org, content := uuid.New(), uuid.New()
	ctx := context.Background()

	if _, err := cache.GetOrCompute(ctx, org, content, false); err != nil {
		t.Fatalf("first get: %v", err)
	}
	clock.advance(30 * time.Second)
	if _, err := cache.GetOrCompute(ctx, org, content, false); err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if loader.loads != 2 {
		t.Errorf("loader ran %d times, want recompute at exactly the TTL boundary", loader.loads)
	}
}

func TestWorkspaceCacheKeysOnChatFlag(t *testing.T) {
	cache, loader, _ := newTestCache(t)
	org, content := uuid.New(), uuid.New()
	ctx := context.Background()

	withChat, err := cache.GetOrCompute(ctx, org, content, true)
	if err != nil {
		t.Fatalf("get with chat: %v", err)
	}
	withoutChat, err := cache.GetOrCompute(ctx, org, content, false)
	if err != nil {
		t.Fatalf("get without chat: %v", err)
	}
	if loader.loads != 2 {
		t.Errorf("chat variants must cache separately, loader ran %d times", loader.loads)
	}
	if len(withChat.Messages) == 0 || len(withoutChat.Messages) != 0 {
		t.Error("variants returned swapped payloads")
	}
}

func TestWorkspaceCacheInvalidateDropsBothVariants(t *testing.T) {
	cache, loader, _ := newTestCache(t)
	org, content := uuid.New(), uuid.New()
	ctx := context.Background()

	_, _ = cache.GetOrCompute(ctx, org, content, true)
	_, _ = cache.GetOrCompute(ctx, org, content, false)
	cache.Invalidate(org, content)
	_, _ = cache.GetOrCompute(ctx, org, content, true)
	_, _ = cache.GetOrCompute(ctx, org, content, false)

	if loader.loads != 4 {
		t.Errorf("loader ran %d times, want both variants recomputed after invalidation", loader.loads)
	}
}

func TestWorkspaceCacheInvalidateIsScoped(t *testing.T) {
	cache, loader, _ := newTestCache(t)
	org := uuid.New()
	a, b := uuid.New(), uuid.New()
	ctx := context.Background()

	_, _ = cache.GetOrCompute(ctx, org, a, false)
	_, _ = cache.GetOrCompute(ctx, org, b, false)
	cache.Invalidate(org, a)
	_, _ = cache.GetOrCompute(ctx, org, b, false)

	if loader.loads != 2 {
		t.Errorf("invalidating one content dropped another's entry (loads=%d)", loader.loads)
	}
}

func TestWorkspaceCacheClear(t *testing.T) {
	cache, loader, _ := newTestCache(t)
	org, content := uuid.New(), uuid.New()
	ctx := context.Background()

	_, _ = cache.GetOrCompute(ctx, org, content, false)
	cache.Clear()
	_, _ = cache.GetOrCompute(ctx, org, content, false)

	if loader.loads != 2 {
		t.Errorf("clear should drop everything, loader ran %d times", loader.loads)
	}
}

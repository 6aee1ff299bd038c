package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/draftdeck-backend/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedOrganization(tb testing.TB, ctx context.Context, tx *gorm.DB) *domain.Organization {
	tb.Helper()
	org := &domain.Organization{
		ID:   uuid.New(),
		Name: "Acme",
		Slug: fmt.Sprintf("acme-%s", uuid.NewString()[:8]),
	}
	if err := tx.WithContext(ctx).Create(org).Error; err != nil {
		tb.Fatalf("seed organization: %v", err)
	}
	return org
}

func SeedSourceContent(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, externalID *string) *domain.SourceContent {
	tb.Helper()
	sc := &domain.SourceContent{
		ID:              uuid.New(),
		OrganizationID:  orgID,
		CreatedByUserID: uuid.New(),
		SourceType:      domain.SourceTypeYouTube,
		ExternalID:      externalID,
		Title:           "video",
		SourceText:      "transcript text",
		IngestStatus:    domain.IngestStatusIngested,
		Metadata:        datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(sc).Error; err != nil {
		tb.Fatalf("seed source content: %v", err)
	}
	return sc
}

func SeedChunk(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID, sourceID uuid.UUID, index int) *domain.Chunk {
	tb.Helper()
	c := &domain.Chunk{
		ID:              uuid.New(),
		OrganizationID:  orgID,
		SourceContentID: sourceID,
		ChunkIndex:      index,
		StartChar:       index * 10,
		EndChar:         index*10 + 10,
		Text:            fmt.Sprintf("chunk %d", index),
		TextPreview:     fmt.Sprintf("chunk %d", index),
		Embedding:       datatypes.JSON([]byte("[]")),
		Metadata:        datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed chunk: %v", err)
	}
	return c
}

func SeedContent(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, sourceID *uuid.UUID) *domain.Content {
	tb.Helper()
	c := &domain.Content{
		ID:              uuid.New(),
		OrganizationID:  orgID,
		Title:           "draft",
		Slug:            fmt.Sprintf("draft-%s", uuid.NewString()[:8]),
		Status:          "draft",
		ContentType:     "blog_post",
		SourceContentID: sourceID,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed content: %v", err)
	}
	return c
}

func SeedContentVersion(tb testing.TB, ctx context.Context, tx *gorm.DB, contentID uuid.UUID, version int) *domain.ContentVersion {
	tb.Helper()
	v := &domain.ContentVersion{
		ID:           uuid.New(),
		ContentID:    contentID,
		Version:      version,
		Frontmatter:  datatypes.JSON([]byte("{}")),
		Sections:     datatypes.JSON([]byte("[]")),
		BodyMarkdown: "# draft\n",
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed content version: %v", err)
	}
	return v
}

func SeedConversation(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID) *domain.Conversation {
	tb.Helper()
	c := &domain.Conversation{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Title:          "chat",
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed conversation: %v", err)
	}
	return c
}

func SeedMessage(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID, conversationID uuid.UUID, role, body string) *domain.ConversationMessage {
	tb.Helper()
	m := &domain.ConversationMessage{
		ID:             uuid.New(),
		ConversationID: conversationID,
		OrganizationID: orgID,
		Role:           role,
		Content:        body,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed message: %v", err)
	}
	return m
}

func PtrStr(v string) *string { return &v }

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }

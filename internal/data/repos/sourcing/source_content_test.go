package sourcing

import (
	"context"
	"testing"

	"github.com/yungbote/draftdeck-backend/internal/data/repos/testutil"
	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/apierr"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"

	"github.com/google/uuid"
)

func TestSourceContentUpsertExternalIDIdentity(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	repo := NewSourceContentRepo(db, log)

	org := testutil.SeedOrganization(t, ctx, tx)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	ext := "video-abc"
	first, err := repo.Upsert(dbc, SourceContentUpsertInput{
		OrganizationID: org.ID,
		SourceType:     domain.SourceTypeYouTube,
		ExternalID:     &ext,
		Title:          testutil.PtrStr("first title"),
		SourceText:     testutil.PtrStr("first text"),
		IngestStatus:   domain.IngestStatusPending,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second, err := repo.Upsert(dbc, SourceContentUpsertInput{
		OrganizationID: org.ID,
		SourceType:     domain.SourceTypeYouTube,
		ExternalID:     &ext,
		Title:          testutil.PtrStr("second title"),
		SourceText:     testutil.PtrStr("second text"),
		IngestStatus:   domain.IngestStatusIngested,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("same identity produced two rows: %s vs %s", first.ID, second.ID)
	}
	if second.Title != "second title" || second.SourceText != "second text" {
		t.Errorf("update did not apply: %+v", second)
	}
	if second.IngestStatus != domain.IngestStatusIngested {
		t.Errorf("ingest status %q, want ingested", second.IngestStatus)
	}
}

func TestSourceContentUpsertNullExternalIDIsItsOwnIdentity(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	repo := NewSourceContentRepo(db, log)

	org := testutil.SeedOrganization(t, ctx, tx)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	ext := "video-abc"
	withExt, err := repo.Upsert(dbc, SourceContentUpsertInput{
		OrganizationID: org.ID,
		SourceType:     domain.SourceTypeManualTranscript,
		ExternalID:     &ext,
		SourceText:     testutil.PtrStr("external"),
	})
	if err != nil {
		t.Fatalf("upsert with external id: %v", err)
	}

	nullFirst, err := repo.Upsert(dbc, SourceContentUpsertInput{
		OrganizationID: org.ID,
		SourceType:     domain.SourceTypeManualTranscript,
		SourceText:     testutil.PtrStr("null one"),
	})
	if err != nil {
		t.Fatalf("first null upsert: %v", err)
	}
	nullSecond, err := repo.Upsert(dbc, SourceContentUpsertInput{
		OrganizationID: org.ID,
		SourceType:     domain.SourceTypeManualTranscript,
		SourceText:     testutil.PtrStr("null two"),
	})
	if err != nil {
		t.Fatalf("second null upsert: %v", err)
	}

	if nullFirst.ID != nullSecond.ID {
		t.Errorf("null identity produced two rows: %s vs %s", nullFirst.ID, nullSecond.ID)
	}
	if nullFirst.ID == withExt.ID {
		t.Error("null identity collided with the external-id row")
	}
	if nullSecond.SourceText != "null two" {
		t.Errorf("null-identity update did not apply: %q", nullSecond.SourceText)
	}
}

func TestSourceContentGetByIDScopedToOrganization(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	repo := NewSourceContentRepo(db, log)

	org := testutil.SeedOrganization(t, ctx, tx)
	otherOrg := testutil.SeedOrganization(t, ctx, tx)
	src := testutil.SeedSourceContent(t, ctx, tx, org.ID, nil)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	got, err := repo.GetByID(dbc, org.ID, src.ID)
	if err != nil {
		t.Fatalf("get in scope: %v", err)
	}
	if got.ID != src.ID {
		t.Errorf("got row %s, want %s", got.ID, src.ID)
	}

	if _, err := repo.GetByID(dbc, otherOrg.ID, src.ID); !apierr.IsNotFound(err) {
		t.Errorf("cross-org read returned %v, want not-found", err)
	}
	if _, err := repo.GetByID(dbc, org.ID, uuid.New()); !apierr.IsNotFound(err) {
		t.Errorf("missing row returned %v, want not-found", err)
	}
}

func TestSourceContentUpsertValidation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	repo := NewSourceContentRepo(db, log)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	if _, err := repo.Upsert(dbc, SourceContentUpsertInput{OrganizationID: uuid.New()}); !apierr.IsValidation(err) {
		t.Errorf("missing source type returned %v, want validation error", err)
	}
	if _, err := repo.Upsert(dbc, SourceContentUpsertInput{SourceType: domain.SourceTypeYouTube}); !apierr.IsValidation(err) {
		t.Errorf("missing organization returned %v, want validation error", err)
	}
}

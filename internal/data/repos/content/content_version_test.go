package content

import (
	"context"
	"testing"

	"github.com/yungbote/draftdeck-backend/internal/data/repos/testutil"
	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/apierr"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func TestContentVersionSequencing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewContentVersionRepo(db, testutil.Logger(t))

	org := testutil.SeedOrganization(t, ctx, tx)
	row := testutil.SeedContent(t, ctx, tx, org.ID, nil)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	first := &domain.ContentVersion{
		ContentID:    row.ID,
		Frontmatter:  datatypes.JSON([]byte("{}")),
		Sections:     datatypes.JSON([]byte("[]")),
		BodyMarkdown: "# one\n",
	}
	if err := repo.Create(dbc, first); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if first.Version != 1 {
		t.Errorf("first version number %d, want 1", first.Version)
	}

	second := &domain.ContentVersion{
		ContentID:    row.ID,
		Frontmatter:  datatypes.JSON([]byte("{}")),
		Sections:     datatypes.JSON([]byte("[]")),
		BodyMarkdown: "# two\n",
	}
	if err := repo.Create(dbc, second); err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.Version != 2 {
		t.Errorf("second version number %d, want 2", second.Version)
	}

	latest, err := repo.GetLatest(dbc, row.ID)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("latest is %s, want the second version %s", latest.ID, second.ID)
	}
}

func TestContentVersionGetLatestMissing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewContentVersionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	if _, err := repo.GetLatest(dbc, uuid.New()); !apierr.IsNotFound(err) {
		t.Errorf("got %v, want not-found for a content row with no versions", err)
	}
}

func TestContentGetByIDScopedToOrganization(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewContentRepo(db, testutil.Logger(t))

	org := testutil.SeedOrganization(t, ctx, tx)
	otherOrg := testutil.SeedOrganization(t, ctx, tx)
	row := testutil.SeedContent(t, ctx, tx, org.ID, nil)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	if _, err := repo.GetByID(dbc, org.ID, row.ID); err != nil {
		t.Fatalf("get in scope: %v", err)
	}
	if _, err := repo.GetByID(dbc, otherOrg.ID, row.ID); !apierr.IsNotFound(err) {
		t.Errorf("cross-org read returned %v, want not-found", err)
	}
}

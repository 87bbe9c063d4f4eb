package meals

import (
	"context"
	"testing"

	"github.com/yungbote/mealcycle-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"github.com/yungbote/mealcycle-backend/internal/platform/dbctx"
)

func TestAliasRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewAliasRepo(db, testutil.Logger(t))

	if err := repo.Upsert(dbc, &types.Alias{MealID: "old", Replacement: "new"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(dbc, &types.Alias{MealID: "old", Replacement: "newer"}); err != nil {
		t.Fatalf("Upsert (replace): %v", err)
	}

	got, err := repo.Get(dbc, "old")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Replacement != "newer" {
		t.Fatalf("Get: unexpected alias %+v", got)
	}

	none, err := repo.Get(dbc, "missing")
	if err != nil || none != nil {
		t.Fatalf("Get (missing): got=%+v err=%v", none, err)
	}

	all, err := repo.List(dbc)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("List: expected 1 alias, got %d", len(all))
	}
}

package meals

import (
	"context"
	"testing"

	"github.com/yungbote/mealcycle-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"github.com/yungbote/mealcycle-backend/internal/platform/dbctx"
)

func TestCounterRepoAdjust(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewCounterRepo(db, testutil.Logger(t))

	if err := repo.Adjust(dbc, "m1", "Pasta", types.Both, 1); err != nil {
		t.Fatalf("Adjust create: %v", err)
	}
	if err := repo.Adjust(dbc, "m1", "Pasta!", types.PersonA, 1); err != nil {
		t.Fatalf("Adjust increment: %v", err)
	}
	if err := repo.Adjust(dbc, "m1", "Pasta!", types.Both, 1); err != nil {
		t.Fatalf("Adjust increment: %v", err)
	}

	got, err := repo.Get(dbc, "m1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.CountTotal != 3 || got.CountBoth != 2 || got.CountPersonA != 1 || got.CountPersonB != 0 {
		t.Fatalf("Get: unexpected counter %+v", got)
	}
	if got.MealName != "Pasta!" {
		t.Fatalf("meal_name should track the latest value, got %q", got.MealName)
	}

	if err := repo.Adjust(dbc, "m1", "Pasta!", types.PersonA, -1); err != nil {
		t.Fatalf("Adjust decrement: %v", err)
	}
	got, _ = repo.Get(dbc, "m1")
	if got.CountTotal != 2 || got.CountPersonA != 0 || !got.Consistent() {
		t.Fatalf("after decrement: %+v", got)
	}

	// zero counts are kept rather than deleting the row
	if err := repo.Adjust(dbc, "m1", "Pasta!", types.Both, -1); err != nil {
		t.Fatalf("Adjust decrement: %v", err)
	}
	if err := repo.Adjust(dbc, "m1", "Pasta!", types.Both, -1); err != nil {
		t.Fatalf("Adjust decrement: %v", err)
	}
	got, _ = repo.Get(dbc, "m1")
	if got == nil || got.CountTotal != 0 {
		t.Fatalf("expected zeroed counter row, got %+v", got)
	}
}

func TestCounterRepoAdjustUntracked(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Background(context.Background())
	repo := NewCounterRepo(db, testutil.Logger(t))

	err := repo.Adjust(dbc, "ghost", "Ghost", types.PersonB, -1)
	if !types.IsCode(err, types.CodeUntrackedMeal) {
		t.Fatalf("expected untracked_meal, got %v", err)
	}
}

func TestCounterRepoAdjustRefusesNegativeBucket(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Background(context.Background())
	repo := NewCounterRepo(db, testutil.Logger(t))

	if err := repo.Adjust(dbc, "m2", "Salad", types.Both, 1); err != nil {
		t.Fatalf("Adjust create: %v", err)
	}
	err := repo.Adjust(dbc, "m2", "Salad", types.PersonB, -1)
	if !types.IsCode(err, types.CodeIntegrityViolation) {
		t.Fatalf("expected integrity_violation, got %v", err)
	}
	got, _ := repo.Get(dbc, "m2")
	if got.CountTotal != 1 || got.CountBoth != 1 || got.CountPersonB != 0 {
		t.Fatalf("counter must be untouched, got %+v", got)
	}
}

func TestCounterRepoListNamed(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewCounterRepo(db, testutil.Logger(t))

	for _, step := range []struct {
		id, name string
		times    int
	}{
		{"a", "Bagels", 1},
		{"b", "Waffles", 3},
		{"c", "Apples", 1},
		{"d", "", 5},
	} {
		for i := 0; i < step.times; i++ {
			if err := repo.Adjust(dbc, step.id, step.name, types.Both, 1); err != nil {
				t.Fatalf("Adjust %s: %v", step.id, err)
			}
		}
	}

	got, err := repo.ListNamed(dbc)
	if err != nil {
		t.Fatalf("ListNamed: %v", err)
	}
	want := []string{"Waffles", "Apples", "Bagels"}
	if len(got) != len(want) {
		t.Fatalf("ListNamed: expected %d rows, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].MealName != name {
			t.Fatalf("ListNamed[%d]: want=%s got=%s", i, name, got[i].MealName)
		}
	}
}

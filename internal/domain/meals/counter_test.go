package meals

import "testing"

func TestTallyAndMatches(t *testing.T) {
	occ := Tally("m1", []Participants{Both, PersonA, Both, PersonB})
	if occ.Total != 4 || occ.Both != 2 || occ.PersonA != 1 || occ.PersonB != 1 {
		t.Fatalf("unexpected tally: %+v", occ)
	}
	c := &Counter{MealID: "m1", CountTotal: 4, CountBoth: 2, CountPersonA: 1, CountPersonB: 1}
	if !occ.Matches(c) || !c.Consistent() {
		t.Fatalf("expected tally to match counter")
	}
	c.CountPersonB = 0
	if occ.Matches(c) || c.Consistent() {
		t.Fatalf("expected mismatch after bucket drift")
	}
	if !Tally("none", nil).Matches(nil) {
		t.Fatalf("empty tally should match missing counter")
	}
}

func TestBucketColumn(t *testing.T) {
	for p, want := range map[Participants]string{
		Both:    "count_both",
		PersonA: "count_person_a",
		PersonB: "count_person_b",
	} {
		got, ok := BucketColumn(p)
		if !ok || got != want {
			t.Fatalf("BucketColumn(%s): want=%s got=%s ok=%v", p, want, got, ok)
		}
	}
	if _, ok := BucketColumn("Other"); ok {
		t.Fatalf("unknown participants must not map to a column")
	}
}

package reconcile

import (
	"reflect"
	"sort"
	"testing"
)

type record struct {
	Name    string
	Credits int
}

func recordKey(r record) string { return r.Name }

type recordUpdate struct {
	Name    string
	Credits int
}

func updateKey(u recordUpdate) string { return u.Name }

func applyCredits(r record, u recordUpdate) record {
	r.Credits = u.Credits
	return r
}

func TestMergeKeyed(t *testing.T) {
	existing := []record{
		{Name: "Databases", Credits: 6},
		{Name: "Algorithms", Credits: 8},
		{Name: "Networks", Credits: 5},
	}

	t.Run("updates matched items in place", func(t *testing.T) {
		updates := []recordUpdate{
			{Name: "Algorithms", Credits: 10},
		}

		result, touched, skipped := MergeKeyed(existing, updates, recordKey, updateKey, applyCredits)

		want := []record{
			{Name: "Databases", Credits: 6},
			{Name: "Algorithms", Credits: 10},
			{Name: "Networks", Credits: 5},
		}
		if !reflect.DeepEqual(result, want) {
			t.Errorf("result = %v, want %v", result, want)
		}
		if !reflect.DeepEqual(touched, []string{"Algorithms"}) {
			t.Errorf("touched = %v, want [Algorithms]", touched)
		}
		if len(skipped) != 0 {
			t.Errorf("skipped = %v, want empty", skipped)
		}
	})

	t.Run("unmatched keys are skipped not inserted", func(t *testing.T) {
		updates := []recordUpdate{
			{Name: "Databases", Credits: 7},
			{Name: "Compilers", Credits: 9},
		}

		result, touched, skipped := MergeKeyed(existing, updates, recordKey, updateKey, applyCredits)

		if len(result) != len(existing) {
			t.Fatalf("result has %d items, want %d", len(result), len(existing))
		}
		for _, r := range result {
			if r.Name == "Compilers" {
				t.Error("unmatched update was inserted")
			}
		}
		if !reflect.DeepEqual(touched, []string{"Databases"}) {
			t.Errorf("touched = %v, want [Databases]", touched)
		}
		if !reflect.DeepEqual(skipped, []string{"Compilers"}) {
			t.Errorf("skipped = %v, want [Compilers]", skipped)
		}
	})

	t.Run("no matches leaves list untouched", func(t *testing.T) {
		updates := []recordUpdate{
			{Name: "Compilers", Credits: 9},
		}

		result, touched, skipped := MergeKeyed(existing, updates, recordKey, updateKey, applyCredits)

		if !reflect.DeepEqual(result, existing) {
			t.Errorf("result = %v, want unchanged %v", result, existing)
		}
		if len(touched) != 0 {
			t.Errorf("touched = %v, want empty", touched)
		}
		if !reflect.DeepEqual(skipped, []string{"Compilers"}) {
			t.Errorf("skipped = %v, want [Compilers]", skipped)
		}
	})

	t.Run("does not mutate input slice", func(t *testing.T) {
		updates := []recordUpdate{
			{Name: "Networks", Credits: 99},
		}

		_, _, _ = MergeKeyed(existing, updates, recordKey, updateKey, applyCredits)

		if existing[2].Credits != 5 {
			t.Errorf("input slice was mutated: Credits = %d", existing[2].Credits)
		}
	})
}

func TestDeleteKeyed(t *testing.T) {
	existing := []record{
		{Name: "Databases"},
		{Name: "Algorithms"},
		{Name: "Networks"},
	}

	t.Run("removes named items preserving order", func(t *testing.T) {
		remaining, deleted := DeleteKeyed(existing, []string{"Algorithms"}, recordKey)

		want := []record{{Name: "Databases"}, {Name: "Networks"}}
		if !reflect.DeepEqual(remaining, want) {
			t.Errorf("remaining = %v, want %v", remaining, want)
		}
		if !reflect.DeepEqual(deleted, []string{"Algorithms"}) {
			t.Errorf("deleted = %v, want [Algorithms]", deleted)
		}
	})

	t.Run("absent names are not reported as deleted", func(t *testing.T) {
		remaining, deleted := DeleteKeyed(existing, []string{"Compilers", "Networks"}, recordKey)

		if len(remaining) != 2 {
			t.Errorf("remaining has %d items, want 2", len(remaining))
		}
		if !reflect.DeepEqual(deleted, []string{"Networks"}) {
			t.Errorf("deleted = %v, want [Networks]", deleted)
		}
	})

	t.Run("no matches returns full list and empty deleted", func(t *testing.T) {
		remaining, deleted := DeleteKeyed(existing, []string{"Compilers"}, recordKey)

		if !reflect.DeepEqual(remaining, existing) {
			t.Errorf("remaining = %v, want %v", remaining, existing)
		}
		if len(deleted) != 0 {
			t.Errorf("deleted = %v, want empty", deleted)
		}
	})
}

func TestPatchSection(t *testing.T) {
	body := map[string]map[string]int{
		"introduction": {"html": 1, "css": 2},
		"frameworks":   {"react": 3},
	}

	t.Run("replaces matched topics wholesale and keeps the rest", func(t *testing.T) {
		out, err := PatchSection(body, "introduction", map[string]int{"html": 10, "javascript": 11})
		if err != nil {
			t.Fatalf("PatchSection() error = %v", err)
		}

		want := map[string]int{"html": 10, "css": 2, "javascript": 11}
		if !reflect.DeepEqual(out["introduction"], want) {
			t.Errorf("section = %v, want %v", out["introduction"], want)
		}
		if !reflect.DeepEqual(out["frameworks"], body["frameworks"]) {
			t.Error("untouched section changed")
		}
	})

	t.Run("unknown section is never created", func(t *testing.T) {
		_, err := PatchSection(body, "backend", map[string]int{"go": 1})
		if err != ErrUnknownSection {
			t.Errorf("PatchSection() error = %v, want ErrUnknownSection", err)
		}
		if _, ok := body["backend"]; ok {
			t.Error("unknown section was created in the input body")
		}
	})

	t.Run("empty updates leave the section unchanged", func(t *testing.T) {
		out, err := PatchSection(body, "frameworks", map[string]int{})
		if err != nil {
			t.Fatalf("PatchSection() error = %v", err)
		}
		if !reflect.DeepEqual(out["frameworks"], body["frameworks"]) {
			t.Errorf("section = %v, want unchanged", out["frameworks"])
		}
	})

	t.Run("does not mutate input body", func(t *testing.T) {
		_, err := PatchSection(body, "introduction", map[string]int{"html": 42})
		if err != nil {
			t.Fatalf("PatchSection() error = %v", err)
		}
		if body["introduction"]["html"] != 1 {
			t.Errorf("input body was mutated: html = %d", body["introduction"]["html"])
		}
	})
}

func TestDeleteSection(t *testing.T) {
	body := map[string]map[string]int{
		"introduction": {"html": 1},
		"frameworks":   {"react": 3},
	}

	t.Run("removes the section", func(t *testing.T) {
		out, err := DeleteSection(body, "frameworks")
		if err != nil {
			t.Fatalf("DeleteSection() error = %v", err)
		}
		if _, ok := out["frameworks"]; ok {
			t.Error("section still present after delete")
		}
		if _, ok := out["introduction"]; !ok {
			t.Error("other section lost")
		}
		if _, ok := body["frameworks"]; !ok {
			t.Error("input body was mutated")
		}
	})

	t.Run("unknown section fails", func(t *testing.T) {
		if _, err := DeleteSection(body, "backend"); err != ErrUnknownSection {
			t.Errorf("DeleteSection() error = %v, want ErrUnknownSection", err)
		}
	})

	t.Run("deleting the last section leaves an empty body", func(t *testing.T) {
		single := map[string]map[string]int{"only": {"a": 1}}
		out, err := DeleteSection(single, "only")
		if err != nil {
			t.Fatalf("DeleteSection() error = %v", err)
		}
		if len(out) != 0 {
			t.Errorf("body = %v, want empty", out)
		}
	})
}

func TestMergeFields(t *testing.T) {
	existing := map[string]any{"bio": "old", "degree": "INSO"}

	out, changed := MergeFields(existing, map[string]any{"bio": "new", "department": "SE"})

	if out["bio"] != "new" {
		t.Errorf("bio = %v, want new", out["bio"])
	}
	if out["degree"] != "INSO" {
		t.Errorf("degree = %v, want INSO", out["degree"])
	}
	if out["department"] != "SE" {
		t.Errorf("department = %v, want SE", out["department"])
	}

	sort.Strings(changed)
	if !reflect.DeepEqual(changed, []string{"bio", "department"}) {
		t.Errorf("changed = %v, want [bio department]", changed)
	}

	if existing["bio"] != "old" {
		t.Error("input map was mutated")
	}
}

func TestDeleteFields(t *testing.T) {
	existing := map[string]any{"bio": "x", "degree": "INSO"}

	out, removed := DeleteFields(existing, []string{"bio", "department"})

	if _, ok := out["bio"]; ok {
		t.Error("bio still present after delete")
	}
	if out["degree"] != "INSO" {
		t.Errorf("degree = %v, want INSO", out["degree"])
	}
	if !reflect.DeepEqual(removed, []string{"bio"}) {
		t.Errorf("removed = %v, want [bio]", removed)
	}
	if _, ok := existing["bio"]; !ok {
		t.Error("input map was mutated")
	}
}

// Package reconcile holds the merge strategies applied to nested documents:
// keyed upsert-merge over lists of named records, keyed delete-by-name, and
// shallow section patch/delete over two-level mappings. All functions are
// pure; callers compute the new state in memory and persist it with a single
// conditional write.
package reconcile

import "errors"

var (
	// ErrUnknownSection is returned when a patch or delete targets a
	// section key that does not exist in the document body.
	ErrUnknownSection = errors.New("unknown section")
)

// MergeKeyed applies updates to existing items matched by key. Unmatched
// update keys are not inserted; they are returned in skipped so the caller
// can report them. Result order follows the existing list. The apply
// function produces the merged item (incoming wins on conflicts).
func MergeKeyed[T, U any](existing []T, updates []U, keyOf func(T) string, updateKeyOf func(U) string, apply func(T, U) T) (result []T, touched []string, skipped []string) {
	byKey := make(map[string]int, len(existing))
	result = make([]T, len(existing))
	for i, item := range existing {
		byKey[keyOf(item)] = i
		result[i] = item
	}

	for _, upd := range updates {
		key := updateKeyOf(upd)
		idx, ok := byKey[key]
		if !ok {
			skipped = append(skipped, key)
			continue
		}
		result[idx] = apply(result[idx], upd)
		touched = append(touched, key)
	}

	return result, touched, skipped
}

// DeleteKeyed partitions existing into items whose key is outside names
// (remaining) and inside it (deleted, reported by key). The caller decides
// whether an empty deleted set is an error.
func DeleteKeyed[T any](existing []T, names []string, keyOf func(T) string) (remaining []T, deleted []string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	remaining = make([]T, 0, len(existing))
	for _, item := range existing {
		key := keyOf(item)
		if drop[key] {
			deleted = append(deleted, key)
			continue
		}
		remaining = append(remaining, item)
	}

	return remaining, deleted
}

// PatchSection merges updates into one named section of a two-level body.
// The merge is one level deep: a topic present in updates replaces the
// same-named topic wholesale, it is never merged recursively. An empty
// updates map leaves the section unchanged.
func PatchSection[V any](body map[string]map[string]V, section string, updates map[string]V) (map[string]map[string]V, error) {
	current, ok := body[section]
	if !ok {
		return nil, ErrUnknownSection
	}

	merged := make(map[string]V, len(current)+len(updates))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}

	out := cloneBody(body)
	out[section] = merged
	return out, nil
}

// DeleteSection removes a section key entirely from the body.
func DeleteSection[V any](body map[string]map[string]V, section string) (map[string]map[string]V, error) {
	if _, ok := body[section]; !ok {
		return nil, ErrUnknownSection
	}

	out := cloneBody(body)
	delete(out, section)
	return out, nil
}

// MergeFields merges updates into a flat field map, each updated field
// replacing the existing value wholesale. Returns the new map and the names
// of fields that changed, in update-iteration order collected by the caller
// through the returned slice.
func MergeFields(existing map[string]any, updates map[string]any) (map[string]any, []string) {
	out := make(map[string]any, len(existing)+len(updates))
	for k, v := range existing {
		out[k] = v
	}

	changed := make([]string, 0, len(updates))
	for k, v := range updates {
		out[k] = v
		changed = append(changed, k)
	}

	return out, changed
}

// DeleteFields removes the named fields from a flat field map, reporting
// which ones were actually present.
func DeleteFields(existing map[string]any, fields []string) (map[string]any, []string) {
	out := make(map[string]any, len(existing))
	for k, v := range existing {
		out[k] = v
	}

	var removed []string
	for _, f := range fields {
		if _, ok := out[f]; ok {
			delete(out, f)
			removed = append(removed, f)
		}
	}

	return out, removed
}

func cloneBody[V any](body map[string]map[string]V) map[string]map[string]V {
	out := make(map[string]map[string]V, len(body))
	for k, v := range body {
		out[k] = v
	}
	return out
}

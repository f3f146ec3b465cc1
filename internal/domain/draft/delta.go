package draft

import (
	"reflect"
	"sort"
)

// Delta is the semantic difference between two draft document snapshots.
// Changed carries the new value for every key that differs, Removed lists
// keys whose value went from non-empty to empty, Unchanged lists the rest.
type Delta struct {
	Changed   map[string]any `json:"changed"`
	Removed   []string       `json:"removed"`
	Unchanged []string       `json:"unchanged"`
}

// IsEmpty reports whether the two snapshots are semantically identical.
func (d Delta) IsEmpty() bool {
	return len(d.Changed) == 0 && len(d.Removed) == 0
}

// ComputeDelta diffs two draft documents key by key. nil, missing keys, empty
// strings and empty arrays are all treated as the same "empty" value, so an
// autosave that writes "" over a null never counts as a change. The function
// is pure and never panics; it is safe to call on every autosave tick.
func ComputeDelta(previous, next map[string]any) Delta {
	delta := Delta{
		Changed:   map[string]any{},
		Removed:   []string{},
		Unchanged: []string{},
	}

	keys := map[string]struct{}{}
	for k := range previous {
		keys[k] = struct{}{}
	}
	for k := range next {
		keys[k] = struct{}{}
	}

	ordered := make([]string, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	for _, key := range ordered {
		prev := previous[key]
		curr := next[key]
		switch {
		case equalValues(prev, curr):
			delta.Unchanged = append(delta.Unchanged, key)
		case !isEmpty(prev) && isEmpty(curr):
			delta.Removed = append(delta.Removed, key)
		default:
			delta.Changed[key] = curr
		}
	}

	return delta
}

func isEmpty(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case []any:
		return len(value) == 0
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		return rv.Len() == 0
	}
	return false
}

func equalValues(a, b any) bool {
	if isEmpty(a) && isEmpty(b) {
		return true
	}
	if isEmpty(a) != isEmpty(b) {
		return false
	}

	if av, ok := a.([]any); ok {
		bv, ok := b.([]any)
		if !ok {
			return false
		}
		return equalArrays(av, bv)
	}

	if av, ok := a.(map[string]any); ok {
		bv, ok := b.(map[string]any)
		if !ok {
			return false
		}
		return equalObjects(av, bv)
	}

	return simpleEqual(a, b)
}

func equalObjects(a, b map[string]any) bool {
	keys := map[string]struct{}{}
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	for k := range keys {
		if !equalValues(a[k], b[k]) {
			return false
		}
	}
	return true
}

// equalArrays compares object arrays by their stable id field when every
// element on both sides carries one, falling back to positional comparison.
func equalArrays(a, b []any) bool {
	aIDs, aKeyed := idIndex(a)
	bIDs, bKeyed := idIndex(b)
	if aKeyed && bKeyed {
		if len(aIDs) != len(bIDs) {
			return false
		}
		for id, av := range aIDs {
			bv, ok := bIDs[id]
			if !ok {
				return false
			}
			if !shallowEqualObjects(av, bv) {
				return false
			}
		}
		return true
	}

	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if am, ok := a[i].(map[string]any); ok {
			bm, ok := b[i].(map[string]any)
			if !ok {
				return false
			}
			if !shallowEqualObjects(am, bm) {
				return false
			}
			continue
		}
		if !simpleEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// idIndex builds an id -> element map; keyed is false unless every element is
// an object carrying a non-empty id.
func idIndex(items []any) (map[string]map[string]any, bool) {
	if len(items) == 0 {
		return nil, false
	}
	index := make(map[string]map[string]any, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		id, ok := obj["id"].(string)
		if !ok || id == "" {
			return nil, false
		}
		index[id] = obj
	}
	return index, true
}

func shallowEqualObjects(a, b map[string]any) bool {
	keys := map[string]struct{}{}
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	for k := range keys {
		av, bv := a[k], b[k]
		if isEmpty(av) && isEmpty(bv) {
			continue
		}
		if !simpleEqual(av, bv) {
			return false
		}
	}
	return true
}

func simpleEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

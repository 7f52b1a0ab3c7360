// Package reconcile computes the minimal set of create/delete operations needed
// to move a remote collection from its observed state to a desired state. Items
// are compared by an identity key, not by structural equality.
package reconcile

// Diff returns the items to create (desired but not observed) and the items to
// remove (observed but not desired). Input order does not affect membership of
// the result sets; within each result, first-seen input order is preserved so
// callers get deterministic batches.
func Diff[T any, K comparable](desired, observed []T, key func(T) K) (toAdd, toRemove []T) {
	desiredKeys := make(map[K]struct{}, len(desired))
	for _, item := range desired {
		desiredKeys[key(item)] = struct{}{}
	}
	observedKeys := make(map[K]struct{}, len(observed))
	for _, item := range observed {
		observedKeys[key(item)] = struct{}{}
	}

	seen := make(map[K]struct{}, len(desired))
	for _, item := range desired {
		k := key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := observedKeys[k]; !ok {
			toAdd = append(toAdd, item)
		}
	}

	seen = make(map[K]struct{}, len(observed))
	for _, item := range observed {
		k := key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := desiredKeys[k]; !ok {
			toRemove = append(toRemove, item)
		}
	}

	return toAdd, toRemove
}

// Dedupe returns items with duplicates (by key) removed, keeping the first
// occurrence of each key in input order.
func Dedupe[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

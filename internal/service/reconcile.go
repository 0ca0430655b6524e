package service

import "slices"

// Reconcile computes the association changes that turn current into requested:
// toConnect = requested - current, toDisconnect = current - requested.
// Duplicate keys collapse and both results are sorted.
func Reconcile(current, requested []string) (toConnect, toDisconnect []string) {
	have := keySet(current)
	want := keySet(requested)

	for key := range want {
		if _, ok := have[key]; !ok {
			toConnect = append(toConnect, key)
		}
	}
	for key := range have {
		if _, ok := want[key]; !ok {
			toDisconnect = append(toDisconnect, key)
		}
	}

	slices.Sort(toConnect)
	slices.Sort(toDisconnect)
	return toConnect, toDisconnect
}

func keySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// uniqueKeys returns keys without duplicates, keeping first occurrence order.
func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

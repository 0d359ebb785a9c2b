package chat

import "sort"

// Reconcile turns a raw snapshot — unordered, possibly containing
// tombstones and momentary optimistic duplicates — into the authoritative
// ordered view.
//
// Steps:
//  1. Drop tombstones. A cleared slot means "deleted", not "render empty".
//  2. Dedupe by id. When a local optimistic copy and the server-confirmed
//     copy coexist (the confirming snapshot can arrive before OR after the
//     send call resolves), prefer the copy carrying a server timestamp —
//     that one is authoritative.
//  3. Sort ascending by normalized millis. Ties break on id, so the order
//     is total and stable regardless of arrival order.
//
// Reconcile is stateless and re-run on every snapshot; it never mutates
// its input.
func Reconcile(snapshot []Message) []Message {
	byID := make(map[string]Message, len(snapshot))
	order := make([]string, 0, len(snapshot))

	for _, m := range snapshot {
		if m.Deleted {
			continue
		}
		prev, seen := byID[m.ID]
		if !seen {
			byID[m.ID] = m
			order = append(order, m.ID)
			continue
		}
		// Duplicate id: keep the server-confirmed copy.
		if m.Timestamp.IsServer() || !prev.Timestamp.IsServer() {
			byID[m.ID] = m
		}
	}

	out := make([]Message, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].Timestamp.Millis(), out[j].Timestamp.Millis()
		if ti != tj {
			return ti < tj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

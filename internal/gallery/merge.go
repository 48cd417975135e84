package gallery

import (
	"sort"

	"github.com/memvault/memvault/internal/model"
)

// mergeMemories reconciles the three memory sources into one working list,
// keyed by id with documented precedence: remote overrides seed for shared
// ids, and entries from current are kept only when their id appears in
// neither seed nor remote (local-only optimistic submissions the record
// store has not confirmed yet). The result is sorted by UploadedAt
// descending; ties keep seed-remote-local insertion order.
func mergeMemories(seed, remote, current []*model.MemoryItem) []*model.MemoryItem {
	merged := make([]*model.MemoryItem, 0, len(seed)+len(remote)+len(current))
	index := make(map[string]int, len(seed)+len(remote))

	for _, m := range seed {
		if _, ok := index[m.ID]; ok {
			continue
		}
		index[m.ID] = len(merged)
		merged = append(merged, m)
	}
	for _, m := range remote {
		if i, ok := index[m.ID]; ok {
			merged[i] = m
			continue
		}
		index[m.ID] = len(merged)
		merged = append(merged, m)
	}
	for _, m := range current {
		if _, ok := index[m.ID]; ok {
			continue
		}
		index[m.ID] = len(merged)
		merged = append(merged, m)
	}

	// Lexicographic compare works because UploadedAt is an ISO date string.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].UploadedAt > merged[j].UploadedAt
	})
	return merged
}

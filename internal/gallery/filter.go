package gallery

import (
	"strings"

	"github.com/memvault/memvault/internal/model"
)

// Filter returns the memories visible under the given criteria, preserving
// the relative order of the input. Every criterion narrows: status must be
// approved, each enum field must match unless set to "all", and a non-empty
// search string must match the title, description, or a tag
// (case-insensitive substring).
func Filter(items []*model.MemoryItem, c model.FilterCriteria) []*model.MemoryItem {
	out := make([]*model.MemoryItem, 0, len(items))
	for _, m := range items {
		if Matches(m, c) {
			out = append(out, m)
		}
	}
	return out
}

// Matches reports whether a single memory satisfies the criteria.
func Matches(m *model.MemoryItem, c model.FilterCriteria) bool {
	if m.Status != model.StatusApproved {
		return false
	}
	if c.EventCategory != "" && c.EventCategory != model.FilterAll && string(m.EventCategory) != c.EventCategory {
		return false
	}
	if c.Grade != "" && c.Grade != model.FilterAll && m.Grade != c.Grade {
		return false
	}
	if c.SchoolYear != "" && c.SchoolYear != model.FilterAll && m.SchoolYear != c.SchoolYear {
		return false
	}
	if c.MediaType != "" && c.MediaType != model.FilterAll && string(m.MediaType) != c.MediaType {
		return false
	}
	if c.Search == "" {
		return true
	}
	return searchMatches(m, c.Search)
}

func searchMatches(m *model.MemoryItem, search string) bool {
	q := strings.ToLower(search)
	if strings.Contains(strings.ToLower(m.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(m.Description), q) {
		return true
	}
	for _, t := range m.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// Package sqlutil holds the patch-to-SET translation shared by the SQL
// record-store drivers.
package sqlutil

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/memvault/memvault/internal/model"
)

// PatchSet renders the non-nil fields of a memory patch as a SQL SET clause
// with matching args. With numbered=true placeholders are $1..$n (postgres),
// otherwise "?". An empty patch yields an empty clause.
func PatchSet(p model.MemoryPatch, numbered bool) (string, []interface{}, error) {
	var cols []string
	var args []interface{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		if numbered {
			cols = append(cols, fmt.Sprintf("%s = $%d", col, len(args)))
		} else {
			cols = append(cols, col+" = ?")
		}
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.EventCategory != nil {
		add("event_category", string(*p.EventCategory))
	}
	if p.Grade != nil {
		add("grade", *p.Grade)
	}
	if p.SchoolYear != nil {
		add("school_year", *p.SchoolYear)
	}
	if p.Tags != nil {
		tags, err := json.Marshal(p.Tags)
		if err != nil {
			return "", nil, err
		}
		add("tags", string(tags))
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	return strings.Join(cols, ", "), args, nil
}

// NextPlaceholder returns the placeholder for one more arg after n existing
// ones, in the same style PatchSet used.
func NextPlaceholder(n int, numbered bool) string {
	if numbered {
		return fmt.Sprintf("$%d", n+1)
	}
	return "?"
}

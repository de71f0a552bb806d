package day

import (
	"fmt"
	"strings"
)

// RefKind says what a resolved id refers to.
type RefKind int

const (
	RefNote RefKind = iota
	RefItem
)

// Resolve finds the note or checklist item matching idOrPrefix. Exact
// matches win; otherwise a prefix must identify exactly one entry.
func (r *Record) Resolve(idOrPrefix string) (RefKind, string, error) {
	if idOrPrefix == "" {
		return 0, "", fmt.Errorf("day: id required")
	}
	for _, n := range r.Notes {
		if n.ID == idOrPrefix {
			return RefNote, n.ID, nil
		}
	}
	for _, it := range r.Checklist {
		if it.ID == idOrPrefix {
			return RefItem, it.ID, nil
		}
	}

	var (
		kind    RefKind
		matched string
		count   int
	)
	for _, n := range r.Notes {
		if strings.HasPrefix(n.ID, idOrPrefix) {
			kind, matched = RefNote, n.ID
			count++
		}
	}
	for _, it := range r.Checklist {
		if strings.HasPrefix(it.ID, idOrPrefix) {
			kind, matched = RefItem, it.ID
			count++
		}
	}
	switch count {
	case 0:
		return 0, "", fmt.Errorf("day: no note or checklist item matches %q", idOrPrefix)
	case 1:
		return kind, matched, nil
	default:
		return 0, "", fmt.Errorf("day: %q is ambiguous (%d matches)", idOrPrefix, count)
	}
}

// Package thread assembles flat comment rows into the nested shape the
// threaded views render. It never fetches anything itself: callers hand
// it the rows they already loaded.
package thread

import (
	"emberlink/internal/models"
)

// Build attaches first-level children to the top-level comments they
// reply to and returns the augmented sequence. Top-level order is
// preserved. Children are grouped by parent id in a single linear pass,
// keeping the order in which they were fetched. Children whose parent is
// not among topLevel (orphans at pagination boundaries) are dropped for
// this render pass; that is an accepted boundary condition, not an error.
//
// When includeChildren is false the input is returned as-is, each entry
// with an empty child list.
func Build(topLevel []models.Comment, children []models.Comment, includeChildren bool) []models.Comment {
	out := make([]models.Comment, len(topLevel))
	copy(out, topLevel)

	if !includeChildren {
		for i := range out {
			out[i].ChildComments = []models.Comment{}
		}
		return out
	}

	parents := make(map[int64]bool, len(out))
	for _, c := range out {
		parents[c.ID] = true
	}

	groups := make(map[int64][]models.Comment)
	for _, child := range children {
		if child.ParentCommentID == nil || !parents[*child.ParentCommentID] {
			continue
		}
		groups[*child.ParentCommentID] = append(groups[*child.ParentCommentID], child)
	}

	for i := range out {
		if g, ok := groups[out[i].ID]; ok {
			out[i].ChildComments = g
		} else {
			out[i].ChildComments = []models.Comment{}
		}
	}
	return out
}

package tree

import (
	"errors"
	"strings"

	"arbor-cli/internal/model"
)

// Position addresses a slot in a parent's children sequence.
type Position struct {
	ParentID string
	Index    int
}

// MoveItem detaches id from src and inserts it into dst, preserving sibling
// order around the moved gap. A same-parent move reorders without
// duplicating or losing the id. Moving an item under itself or one of its
// descendants is rejected.
//
// src.Index is a hint: when the id is not at that position the actual
// position in src.ParentID's children is used. dst.Index is clamped to the
// destination sequence after removal.
func MoveItem(doc *model.TreeDocument, id string, src, dst Position) (*model.TreeDocument, error) {
	id = strings.TrimSpace(id)
	src.ParentID = strings.TrimSpace(src.ParentID)
	dst.ParentID = strings.TrimSpace(dst.ParentID)
	if src.ParentID == "" {
		src.ParentID = model.RootID
	}
	if dst.ParentID == "" {
		dst.ParentID = model.RootID
	}
	if id == "" {
		return doc, errors.New("missing item id")
	}
	if id == model.RootID {
		return doc, errors.New("cannot move the root")
	}
	if _, ok := doc.Item(id); !ok {
		return doc, NotFoundError{Kind: "item", ID: id}
	}
	srcParent, ok := doc.Item(src.ParentID)
	if !ok {
		return doc, NotFoundError{Kind: "source parent", ID: src.ParentID}
	}
	if _, ok := doc.Item(dst.ParentID); !ok {
		return doc, NotFoundError{Kind: "destination parent", ID: dst.ParentID}
	}
	if dst.ParentID == id || isDescendant(doc, id, dst.ParentID) {
		return doc, CycleError{ID: id, ParentID: dst.ParentID}
	}
	if indexOf(srcParent.Children, id, src.Index) < 0 {
		return doc, NotFoundError{Kind: "child of " + src.ParentID, ID: id}
	}

	out := doc.Clone()

	from := out.Items[src.ParentID]
	at := indexOf(from.Children, id, src.Index)
	from.Children = append(from.Children[:at], from.Children[at+1:]...)

	to := out.Items[dst.ParentID]
	i := dst.Index
	if i < 0 {
		i = 0
	}
	if i > len(to.Children) {
		i = len(to.Children)
	}
	to.Children = append(to.Children[:i], append([]string{id}, to.Children[i:]...)...)

	out.Items[id].ParentID = dst.ParentID
	return out, nil
}

// indexOf returns the position of id in children, preferring the hinted
// index when it matches. -1 when absent.
func indexOf(children []string, id string, hint int) int {
	if hint >= 0 && hint < len(children) && children[hint] == id {
		return hint
	}
	for i, child := range children {
		if child == id {
			return i
		}
	}
	return -1
}

// isDescendant reports whether candidate is in the subtree rooted at id.
func isDescendant(doc *model.TreeDocument, id, candidate string) bool {
	it, ok := doc.Item(id)
	if !ok {
		return false
	}
	seen := map[string]bool{id: true}
	stack := append([]string{}, it.Children...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == candidate {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if child, ok := doc.Item(cur); ok {
			stack = append(stack, child.Children...)
		}
	}
	return false
}

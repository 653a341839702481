package tree

import (
	"strings"

	"arbor-cli/internal/model"
)

// RemoveItem detaches id from its parent's children. The item entry stays in
// the document (soft detach); whether the detachment is terminal is the
// caller's concern. Removing an unknown id is a no-op.
func RemoveItem(doc *model.TreeDocument, id string) *model.TreeDocument {
	id = strings.TrimSpace(id)
	if id == "" || id == model.RootID {
		return doc
	}
	if _, ok := doc.Item(id); !ok {
		return doc
	}

	out := doc.Clone()
	detach(out, id)
	return out
}

// detach removes every children-list reference to id and clears its
// ParentID. Mutates doc in place; callers pass a clone.
func detach(doc *model.TreeDocument, id string) {
	for _, it := range doc.Items {
		kept := it.Children[:0]
		for _, child := range it.Children {
			if child != id {
				kept = append(kept, child)
			}
		}
		it.Children = kept
	}
	if it, ok := doc.Item(id); ok {
		it.ParentID = ""
	}
}

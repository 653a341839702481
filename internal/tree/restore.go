package tree

import (
	"errors"
	"strings"

	"arbor-cli/internal/model"
)

// RestoreItem clears the deleted mark on id and re-inserts it at the end of
// parentID's children. The item's payload and subtree are whatever they were
// at deletion. If the id is still referenced by some children list the
// structure is left alone; restore never creates a second reference.
func RestoreItem(doc *model.TreeDocument, id, parentID string) (*model.TreeDocument, error) {
	id = strings.TrimSpace(id)
	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		parentID = model.RootID
	}
	if id == "" {
		return doc, errors.New("missing item id")
	}
	if id == model.RootID {
		return doc, errors.New("cannot restore the root")
	}
	if _, ok := doc.Item(id); !ok {
		return doc, NotFoundError{Kind: "item", ID: id}
	}
	if _, ok := doc.Item(parentID); !ok {
		return doc, NotFoundError{Kind: "parent", ID: parentID}
	}
	if parentID == id || isDescendant(doc, id, parentID) {
		return doc, CycleError{ID: id, ParentID: parentID}
	}

	out := doc.Clone()
	it := out.Items[id]
	it.Deleted = false
	if ref := referencingParent(out, id); ref != "" {
		it.ParentID = ref
		return out, nil
	}
	parent := out.Items[parentID]
	parent.Children = append(parent.Children, id)
	it.ParentID = parentID
	return out, nil
}

// referencingParent returns the id of the item whose children list contains
// id, or "" when the id is detached.
func referencingParent(doc *model.TreeDocument, id string) string {
	for _, it := range doc.Items {
		for _, child := range it.Children {
			if child == id {
				return it.ID
			}
		}
	}
	return ""
}

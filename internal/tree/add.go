package tree

import (
	"errors"
	"strings"

	"arbor-cli/internal/model"
)

// AddItem creates a new item under parentID (root when empty) and appends it
// to the parent's children. A duplicate id is rejected: an id must never end
// up referenced by two parents.
func AddItem(doc *model.TreeDocument, id, parentID string) (*model.TreeDocument, error) {
	id = strings.TrimSpace(id)
	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		parentID = model.RootID
	}
	if id == "" {
		return doc, errors.New("missing item id")
	}
	if _, ok := doc.Item(id); ok {
		return doc, DuplicateIDError{ID: id}
	}
	if _, ok := doc.Item(parentID); !ok {
		return doc, NotFoundError{Kind: "parent", ID: parentID}
	}

	out := doc.Clone()
	out.Items[id] = model.NewItem(id, parentID)
	parent := out.Items[parentID]
	parent.Children = append(parent.Children, id)
	return out, nil
}

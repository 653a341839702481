package tree

import (
	"strings"

	"arbor-cli/internal/model"
)

// DeleteItem soft-deletes id: marks it deleted and detaches it from its
// parent's children. Descendants are left attached to the deleted item, so
// the whole subtree survives in the document and RestoreItem can bring it
// back. Deleting an unknown id (or the root) is a no-op.
func DeleteItem(doc *model.TreeDocument, id string) *model.TreeDocument {
	id = strings.TrimSpace(id)
	if id == "" || id == model.RootID {
		return doc
	}
	if _, ok := doc.Item(id); !ok {
		return doc
	}

	out := doc.Clone()
	detach(out, id)
	out.Items[id].Deleted = true
	return out
}

package tree

import (
	"strings"

	"arbor-cli/internal/model"
)

// MutateItem shallow-merges data into the item's payload. Structure
// (children, parent) is untouched. A nil value deletes the key, so partial
// updates can both set and clear fields. Unknown id is a no-op.
func MutateItem(doc *model.TreeDocument, id string, data map[string]any) *model.TreeDocument {
	id = strings.TrimSpace(id)
	if id == "" || len(data) == 0 {
		return doc
	}
	if _, ok := doc.Item(id); !ok {
		return doc
	}

	out := doc.Clone()
	it := out.Items[id]
	merged := make(map[string]any, len(it.Payload)+len(data))
	for k, v := range it.Payload {
		merged[k] = v
	}
	for k, v := range data {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	if len(merged) == 0 {
		merged = nil
	}
	it.Payload = merged
	return out
}

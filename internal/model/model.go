package model

// RootID is the id of the synthetic top-level container. It always exists in
// a TreeDocument and is never created, moved, or deleted by callers.
const RootID = "root"

// TreeItem is one addressable node in the structural index. It references a
// note (or folder of notes) by id; note bodies live elsewhere.
type TreeItem struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId,omitempty"`

	// Children is ordered; the sequence is the display order.
	Children []string `json:"children"`

	// Payload is opaque item metadata (title, flags). It is mutated by
	// shallow merge, independently of tree structure.
	Payload map[string]any `json:"payload,omitempty"`

	// Deleted marks a soft-deleted item. Deleted items stay in the
	// document (with their subtree intact) so they can be restored.
	Deleted bool `json:"deleted,omitempty"`
}

// TreeDocument is the full persisted structural index: every item keyed by
// id, including the synthetic root entry.
type TreeDocument struct {
	// Version is a monotonic write counter. Every persisted write bumps
	// it; conditional backends use it to reject lost updates.
	Version int64 `json:"version"`

	Items map[string]*TreeItem `json:"items"`
}

func NewItem(id, parentID string) *TreeItem {
	return &TreeItem{
		ID:       id,
		ParentID: parentID,
		Children: []string{},
	}
}

// NewDocument returns the bootstrap document: only the root, no children.
func NewDocument() *TreeDocument {
	return &TreeDocument{
		Items: map[string]*TreeItem{
			RootID: NewItem(RootID, ""),
		},
	}
}

// Item looks up an item by id. Returns false for the empty id.
func (d *TreeDocument) Item(id string) (*TreeItem, bool) {
	if d == nil || id == "" {
		return nil, false
	}
	it, ok := d.Items[id]
	return it, ok
}

// Clone returns a deep copy of the document. Tree transformations clone
// first and mutate the copy, so callers never observe shared mutation and
// always rebind to the returned document.
func (d *TreeDocument) Clone() *TreeDocument {
	if d == nil {
		return nil
	}
	out := &TreeDocument{
		Version: d.Version,
		Items:   make(map[string]*TreeItem, len(d.Items)),
	}
	for id, it := range d.Items {
		out.Items[id] = it.clone()
	}
	return out
}

func (it *TreeItem) clone() *TreeItem {
	if it == nil {
		return nil
	}
	cp := &TreeItem{
		ID:       it.ID,
		ParentID: it.ParentID,
		Children: make([]string, len(it.Children)),
		Deleted:  it.Deleted,
	}
	copy(cp.Children, it.Children)
	if it.Payload != nil {
		cp.Payload = make(map[string]any, len(it.Payload))
		for k, v := range it.Payload {
			cp.Payload[k] = v
		}
	}
	return cp
}

package tree

import (
	"testing"

	"arbor-cli/internal/model"
)

// testDoc builds: root -> [a, b]; a -> [a1, a2].
func testDoc(t *testing.T) *model.TreeDocument {
	t.Helper()
	doc := model.NewDocument()
	for _, step := range []struct{ id, parent string }{
		{"a", model.RootID},
		{"b", model.RootID},
		{"a1", "a"},
		{"a2", "a"},
	} {
		var err error
		doc, err = AddItem(doc, step.id, step.parent)
		if err != nil {
			t.Fatalf("AddItem(%s, %s): %v", step.id, step.parent, err)
		}
	}
	return doc
}

func childrenOf(t *testing.T, doc *model.TreeDocument, id string) []string {
	t.Helper()
	it, ok := doc.Item(id)
	if !ok {
		t.Fatalf("item %s missing", id)
	}
	return it.Children
}

func sameSeq(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

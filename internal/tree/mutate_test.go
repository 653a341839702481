package tree

import "testing"

func TestMutateItemShallowMerge(t *testing.T) {
	doc := testDoc(t)
	doc = MutateItem(doc, "a", map[string]any{"title": "Projects", "pinned": true})

	out := MutateItem(doc, "a", map[string]any{"title": "Archive", "pinned": nil})
	it, _ := out.Item("a")
	if it.Payload["title"] != "Archive" {
		t.Fatalf("title: %v", it.Payload["title"])
	}
	if _, ok := it.Payload["pinned"]; ok {
		t.Fatalf("nil value should delete the key: %v", it.Payload)
	}

	// Structure untouched.
	if !sameSeq(it.Children, []string{"a1", "a2"}) {
		t.Fatalf("children changed: %v", it.Children)
	}

	// Input payload untouched.
	prev, _ := doc.Item("a")
	if prev.Payload["title"] != "Projects" {
		t.Fatalf("mutate modified its input: %v", prev.Payload)
	}
}

func TestMutateItemUnknownIsNoop(t *testing.T) {
	doc := testDoc(t)
	if out := MutateItem(doc, "ghost", map[string]any{"title": "x"}); out != doc {
		t.Fatalf("expected the same document back")
	}
}

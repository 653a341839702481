package store

import "testing"

func TestEventLogAppendRead(t *testing.T) {
	l := NewEventLog(t.TempDir())

	evs, err := l.Read(0)
	if err != nil {
		t.Fatalf("Read empty: %v", err)
	}
	if len(evs) != 0 {
		t.Fatalf("expected empty log, got %d", len(evs))
	}

	if err := l.Append("item.add", "n1", map[string]any{"parentId": "root"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Append("item.delete", "n1", nil); err != nil {
		t.Fatalf("Append: %v", err)
	}

	evs, err = l.Read(0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[0].Type != "item.add" || evs[1].Type != "item.delete" {
		t.Fatalf("event order: %+v", evs)
	}
	if evs[0].ID == "" || evs[0].ID == evs[1].ID {
		t.Fatalf("event ids: %q %q", evs[0].ID, evs[1].ID)
	}
	if evs[0].Payload["parentId"] != "root" {
		t.Fatalf("payload: %+v", evs[0].Payload)
	}

	limited, err := l.Read(1)
	if err != nil {
		t.Fatalf("Read limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit ignored: %d", len(limited))
	}
}

package cli

import (
	"bytes"
	"encoding/json"
	"testing"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustRunCLI(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: arbor %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, string(stderr), string(stdout))
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, string(stdout), args)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected JSON envelope to contain data key; got: %v\nstdout:\n%s", env, string(stdout))
	}
	return env
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	d, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data to be an object; got: %#v", env["data"])
	}
	return d
}

func TestCLISmoke(t *testing.T) {
	dir := t.TempDir()

	// Init bootstraps the document.
	boot := mustRunCLI(t, "--dir", dir, "init")
	if got := dataMap(t, boot)["items"]; got != float64(1) {
		t.Fatalf("expected fresh store to hold just the root; got items=%v", got)
	}

	// Add an item with a title payload.
	a := mustRunCLI(t, "--dir", dir, "items", "add", "a", "--title", "Item A")
	ad := dataMap(t, a)
	if ad["id"] != "a" || ad["parentId"] != "root" {
		t.Fatalf("unexpected add output: %#v", ad)
	}
	payload, _ := ad["payload"].(map[string]any)
	if payload["title"] != "Item A" {
		t.Fatalf("expected title payload; got: %#v", ad["payload"])
	}

	// Several children in one write.
	mustRunCLI(t, "--dir", dir, "items", "add-many", "a1", "a2", "a3", "--parent", "a")

	// List preserves sibling order.
	list := mustRunCLI(t, "--dir", dir, "items", "list", "--parent", "a")
	xs, ok := list["data"].([]any)
	if !ok || len(xs) != 3 {
		t.Fatalf("expected three children of a; got: %#v", list["data"])
	}
	for i, want := range []string{"a1", "a2", "a3"} {
		got := xs[i].(map[string]any)["id"]
		if got != want {
			t.Fatalf("child %d = %v, want %s", i, got, want)
		}
	}

	// Reorder a3 to the front of its own parent.
	mustRunCLI(t, "--dir", dir, "items", "move", "a3", "--to", "a", "--at", "0")
	list = mustRunCLI(t, "--dir", dir, "items", "list", "--parent", "a")
	xs = list["data"].([]any)
	if got := xs[0].(map[string]any)["id"]; got != "a3" {
		t.Fatalf("expected a3 first after move; got: %v", got)
	}

	// Move across parents without naming the source.
	mustRunCLI(t, "--dir", dir, "items", "move", "a1", "--to", "root", "--at", "0")
	rootList := mustRunCLI(t, "--dir", dir, "items", "list")
	rs := rootList["data"].([]any)
	if got := rs[0].(map[string]any)["id"]; got != "a1" {
		t.Fatalf("expected a1 first under root; got: %v", got)
	}

	// Payload merge and unset.
	set := mustRunCLI(t, "--dir", dir, "items", "set", "a", "status=active", "--unset", "title")
	sp, _ := dataMap(t, set)["payload"].(map[string]any)
	if sp["status"] != "active" {
		t.Fatalf("expected status=active; got: %#v", sp)
	}
	if _, ok := sp["title"]; ok {
		t.Fatalf("expected title removed; got: %#v", sp)
	}

	// Soft delete then restore.
	del := mustRunCLI(t, "--dir", dir, "items", "delete", "a2")
	dd := dataMap(t, del)
	if dd["deleted"] != true || dd["parentId"] != "" {
		t.Fatalf("expected a2 deleted and detached; got: %#v", dd)
	}
	res := mustRunCLI(t, "--dir", dir, "items", "restore", "a2", "--to", "a")
	rd := dataMap(t, res)
	if rd["deleted"] == true || rd["parentId"] != "a" {
		t.Fatalf("expected a2 restored under a; got: %#v", rd)
	}

	// Nested dump includes the restored child.
	treeEnv := mustRunCLI(t, "--dir", dir, "items", "tree")
	root := dataMap(t, treeEnv)
	if root["id"] != "root" {
		t.Fatalf("expected root node at top of tree; got: %#v", root)
	}

	// Doctor on a healthy store finds nothing.
	doc := mustRunCLI(t, "--dir", dir, "doctor", "--fail")
	meta, _ := doc["meta"].(map[string]any)
	if meta["hasAnomalies"] != false {
		t.Fatalf("expected clean doctor report; got: %#v", doc)
	}

	// Every mutation above left a trace in the event log.
	evs := mustRunCLI(t, "--dir", dir, "events")
	if xs, ok := evs["data"].([]any); !ok || len(xs) == 0 {
		t.Fatalf("expected recorded events; got: %#v", evs["data"])
	}
}

func TestCLIDuplicateAddFails(t *testing.T) {
	dir := t.TempDir()

	mustRunCLI(t, "--dir", dir, "items", "add", "a")
	_, stderr, err := runCLI(t, []string{"--dir", dir, "items", "add", "a"})
	if err == nil {
		t.Fatalf("expected duplicate add to fail")
	}
	if !bytes.Contains(stderr, []byte("a")) {
		t.Fatalf("expected error to name the item; stderr:\n%s", string(stderr))
	}
}

func TestCLIRemoveKeepsEntry(t *testing.T) {
	dir := t.TempDir()

	mustRunCLI(t, "--dir", dir, "items", "add", "a")
	rem := mustRunCLI(t, "--dir", dir, "items", "remove", "a")
	rd := dataMap(t, rem)
	if rd["parentId"] != "" {
		t.Fatalf("expected a detached; got: %#v", rd)
	}
	if rd["deleted"] == true {
		t.Fatalf("remove must not mark the item deleted; got: %#v", rd)
	}
}

func TestCLISQLiteBackend(t *testing.T) {
	dir := t.TempDir()

	mustRunCLI(t, "--dir", dir, "--backend", "sqlite", "items", "add", "a", "--title", "A")
	list := mustRunCLI(t, "--dir", dir, "--backend", "sqlite", "items", "list")
	xs, ok := list["data"].([]any)
	if !ok || len(xs) != 1 {
		t.Fatalf("expected one child of root via sqlite backend; got: %#v", list["data"])
	}
}

func TestCLIUnknownBackend(t *testing.T) {
	_, _, err := runCLI(t, []string{"--dir", t.TempDir(), "items", "list", "--backend", "bolt"})
	if err == nil {
		t.Fatalf("expected unknown backend to fail")
	}
}

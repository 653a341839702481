package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"arbor-cli/internal/model"
	"arbor-cli/internal/tree"

	"github.com/rs/zerolog"
)

// TreePath is the well-known logical path of the persisted tree document.
const TreePath = "tree.json"

// TreeStore is the durable façade over the pure tree transforms and an
// ObjectStore. Every operation reads the whole document, applies a pure
// transform, repairs, and writes the whole document back.
//
// Concurrency contract: mutations serialize through an in-process mutex
// (one writer per TreeStore), and every persisted write bumps the document's
// monotonic version. Backends implementing ConditionalPutter additionally
// reject writes from a stale read with ErrVersionConflict, which surfaces to
// the caller like any other storage failure.
type TreeStore struct {
	objects ObjectStore
	path    string
	events  *EventLog
	log     zerolog.Logger

	mu sync.Mutex
}

type Option func(*TreeStore)

func WithPath(path string) Option {
	return func(s *TreeStore) {
		if p := strings.TrimSpace(path); p != "" {
			s.path = p
		}
	}
}

func WithEventLog(l *EventLog) Option {
	return func(s *TreeStore) { s.events = l }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *TreeStore) { s.log = log }
}

func NewTreeStore(objects ObjectStore, opts ...Option) *TreeStore {
	s := &TreeStore{
		objects: objects,
		path:    TreePath,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get loads, parses, and repairs the persisted document. A missing object is
// not an error: the store bootstraps the default document and persists it.
// Malformed bytes are fatal for the operation and propagate unmodified.
func (s *TreeStore) Get(ctx context.Context) (*model.TreeDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(ctx)
}

// Set repairs doc, bumps its version, and persists it. The returned document
// is the repaired one actually written, not the caller's input.
func (s *TreeStore) Set(ctx context.Context, doc *model.TreeDocument) (*model.TreeDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(ctx, doc)
}

func (s *TreeStore) get(ctx context.Context) (*model.TreeDocument, error) {
	ok, err := s.objects.Has(ctx, s.path)
	if err != nil {
		return nil, err
	}
	if !ok {
		doc, err := s.set(ctx, model.NewDocument())
		if err != nil {
			return nil, err
		}
		s.record("tree.bootstrap", "", nil)
		return doc, nil
	}

	b, err := s.objects.Get(ctx, s.path)
	if err != nil {
		return nil, err
	}
	var doc model.TreeDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if doc.Items == nil {
		doc.Items = map[string]*model.TreeItem{}
	}
	if _, ok := doc.Items[model.RootID]; !ok {
		s.log.Warn().Str("path", s.path).Msg("persisted document missing root item; recreating")
		doc.Items[model.RootID] = model.NewItem(model.RootID, "")
	}

	repaired, report := tree.Repair(&doc)
	s.reportAnomalies(report)
	return repaired, nil
}

func (s *TreeStore) set(ctx context.Context, doc *model.TreeDocument) (*model.TreeDocument, error) {
	repaired, report := tree.Repair(doc)
	s.reportAnomalies(report)

	expect := repaired.Version
	repaired.Version = expect + 1

	b, err := json.MarshalIndent(repaired, "", "  ")
	if err != nil {
		return nil, err
	}
	b = append(b, '\n')

	if cp, ok := s.objects.(ConditionalPutter); ok {
		err = cp.PutIf(ctx, s.path, b, expect)
	} else {
		err = s.objects.Put(ctx, s.path, b)
	}
	if err != nil {
		return nil, err
	}
	return repaired, nil
}

// reportAnomalies surfaces repair drops on the structured side channels.
// Anomalies are diagnostics, never errors.
func (s *TreeStore) reportAnomalies(report tree.RepairReport) {
	if !report.HasAnomalies() {
		return
	}
	for _, a := range report.Anomalies {
		s.log.Warn().
			Str("code", string(a.Code)).
			Str("itemId", a.ItemID).
			Str("childId", a.ChildID).
			Msg("repaired structural defect")
	}
	s.record("tree.repair", "", map[string]any{
		"anomalies": len(report.Anomalies),
	})
}

// record appends a structural event. Best-effort: a failing event log is
// logged and ignored, it never fails the mutation that produced it.
func (s *TreeStore) record(typ, itemID string, payload map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(typ, itemID, payload); err != nil {
		s.log.Warn().Err(err).Str("type", typ).Msg("event append failed")
	}
}

func (s *TreeStore) AddItem(ctx context.Context, id, parentID string) (*model.TreeDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	next, err := tree.AddItem(doc, id, parentID)
	if err != nil {
		return nil, err
	}
	out, err := s.set(ctx, next)
	if err != nil {
		return nil, err
	}
	s.record("item.add", strings.TrimSpace(id), map[string]any{"parentId": strings.TrimSpace(parentID)})
	return out, nil
}

// AddItems adds every id under parentID against one in-memory document and
// persists once: N additions, exactly one write.
func (s *TreeStore) AddItems(ctx context.Context, ids []string, parentID string) (*model.TreeDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		doc, err = tree.AddItem(doc, id, parentID)
		if err != nil {
			return nil, err
		}
	}
	out, err := s.set(ctx, doc)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		s.record("item.add", strings.TrimSpace(id), map[string]any{"parentId": strings.TrimSpace(parentID)})
	}
	return out, nil
}

func (s *TreeStore) RemoveItem(ctx context.Context, id string) (*model.TreeDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.set(ctx, tree.RemoveItem(doc, id))
	if err != nil {
		return nil, err
	}
	s.record("item.remove", strings.TrimSpace(id), nil)
	return out, nil
}

func (s *TreeStore) MoveItem(ctx context.Context, id string, src, dst tree.Position) (*model.TreeDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	next, err := tree.MoveItem(doc, id, src, dst)
	if err != nil {
		return nil, err
	}
	out, err := s.set(ctx, next)
	if err != nil {
		return nil, err
	}
	s.record("item.move", strings.TrimSpace(id), map[string]any{
		"fromParentId": src.ParentID,
		"toParentId":   dst.ParentID,
		"toIndex":      dst.Index,
	})
	return out, nil
}

func (s *TreeStore) MutateItem(ctx context.Context, id string, data map[string]any) (*model.TreeDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.set(ctx, tree.MutateItem(doc, id, data))
	if err != nil {
		return nil, err
	}
	s.record("item.mutate", strings.TrimSpace(id), data)
	return out, nil
}

func (s *TreeStore) RestoreItem(ctx context.Context, id, parentID string) (*model.TreeDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	next, err := tree.RestoreItem(doc, id, parentID)
	if err != nil {
		return nil, err
	}
	out, err := s.set(ctx, next)
	if err != nil {
		return nil, err
	}
	s.record("item.restore", strings.TrimSpace(id), map[string]any{"parentId": strings.TrimSpace(parentID)})
	return out, nil
}

func (s *TreeStore) DeleteItem(ctx context.Context, id string) (*model.TreeDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.set(ctx, tree.DeleteItem(doc, id))
	if err != nil {
		return nil, err
	}
	s.record("item.delete", strings.TrimSpace(id), nil)
	return out, nil
}

// Doctor loads the raw persisted document (without the usual repair-on-read)
// and reports every structural defect repair would drop plus the deeper
// audit findings. It never modifies the stored document.
func (s *TreeStore) Doctor(ctx context.Context) (tree.RepairReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.objects.Has(ctx, s.path)
	if err != nil {
		return tree.RepairReport{}, err
	}
	if !ok {
		return tree.RepairReport{}, nil
	}
	b, err := s.objects.Get(ctx, s.path)
	if err != nil {
		return tree.RepairReport{}, err
	}
	var doc model.TreeDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return tree.RepairReport{}, fmt.Errorf("parse %s: %w", s.path, err)
	}

	repaired, report := tree.Repair(&doc)
	audit := tree.Audit(repaired)
	report.Anomalies = append(report.Anomalies, audit.Anomalies...)
	return report, nil
}

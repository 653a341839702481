package tree

import (
	"fmt"
	"strings"

	"arbor-cli/internal/model"
)

type AnomalyCode string

const (
	AnomalyChildEmpty   AnomalyCode = "child_empty"
	AnomalyChildSelf    AnomalyCode = "child_self"
	AnomalyChildMissing AnomalyCode = "child_missing"

	// Audit-only codes. Audit reports these; Repair does not touch them.
	AnomalyUnreachable    AnomalyCode = "item_unreachable"
	AnomalyParentMismatch AnomalyCode = "parent_mismatch"
)

// Anomaly is one structural defect found (and, for repair codes, removed)
// in a document. Anomalies are diagnostics, never errors.
type Anomaly struct {
	Code    AnomalyCode `json:"code"`
	ItemID  string      `json:"itemId"`
	ChildID string      `json:"childId,omitempty"`
	Message string      `json:"message"`
}

type RepairReport struct {
	Anomalies []Anomaly `json:"anomalies"`
}

func (r RepairReport) HasAnomalies() bool {
	return len(r.Anomalies) > 0
}

// Repair drops child references that are empty, self-referential, or point
// at ids absent from the document. It is idempotent and total: it always
// returns a structurally clean document, reporting what it dropped.
//
// Upstream mutation bugs or racing writers can leave dangling references
// that would break naive traversal; every read runs through Repair so the
// rest of the system can trust children lists.
func Repair(doc *model.TreeDocument) (*model.TreeDocument, RepairReport) {
	var report RepairReport
	if doc == nil {
		return model.NewDocument(), report
	}

	out := doc.Clone()
	for _, it := range out.Items {
		kept := it.Children[:0]
		for _, child := range it.Children {
			switch {
			case strings.TrimSpace(child) == "":
				report.Anomalies = append(report.Anomalies, Anomaly{
					Code:    AnomalyChildEmpty,
					ItemID:  it.ID,
					Message: fmt.Sprintf("%s: dropped empty child reference", it.ID),
				})
			case child == it.ID:
				report.Anomalies = append(report.Anomalies, Anomaly{
					Code:    AnomalyChildSelf,
					ItemID:  it.ID,
					ChildID: child,
					Message: fmt.Sprintf("%s: dropped self reference", it.ID),
				})
			default:
				if _, ok := out.Items[child]; !ok {
					report.Anomalies = append(report.Anomalies, Anomaly{
						Code:    AnomalyChildMissing,
						ItemID:  it.ID,
						ChildID: child,
						Message: fmt.Sprintf("%s: dropped reference to missing item %s", it.ID, child),
					})
					continue
				}
				kept = append(kept, child)
			}
		}
		it.Children = kept
	}
	return out, report
}

// Audit reports invariant violations Repair leaves alone: items that are not
// reachable from the root (and not soft-deleted), and parentId fields that
// disagree with the children list actually containing the item. Audit never
// modifies the document.
func Audit(doc *model.TreeDocument) RepairReport {
	var report RepairReport
	if doc == nil {
		return report
	}

	parentOf := map[string]string{}
	for _, it := range doc.Items {
		for _, child := range it.Children {
			parentOf[child] = it.ID
		}
	}

	reachable := map[string]bool{model.RootID: true}
	var walk func(id string)
	walk = func(id string) {
		it, ok := doc.Item(id)
		if !ok {
			return
		}
		for _, child := range it.Children {
			if reachable[child] {
				continue
			}
			reachable[child] = true
			walk(child)
		}
	}
	walk(model.RootID)

	for id, it := range doc.Items {
		if id == model.RootID {
			continue
		}
		if !reachable[id] && !it.Deleted {
			report.Anomalies = append(report.Anomalies, Anomaly{
				Code:    AnomalyUnreachable,
				ItemID:  id,
				Message: fmt.Sprintf("%s: not reachable from root and not marked deleted", id),
			})
		}
		if ref, ok := parentOf[id]; ok && ref != it.ParentID {
			report.Anomalies = append(report.Anomalies, Anomaly{
				Code:    AnomalyParentMismatch,
				ItemID:  id,
				Message: fmt.Sprintf("%s: parentId is %q but listed under %q", id, it.ParentID, ref),
			})
		}
	}
	return report
}

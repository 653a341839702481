package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const eventsFileName = "events.jsonl"

// Event is one structural mutation (or diagnostic) recorded in the
// append-only log. The log is an observability side channel: it never
// affects, and must never fail, the mutation that produced it.
type Event struct {
	ID      string         `json:"id"`
	TS      time.Time      `json:"ts"`
	Type    string         `json:"type"`
	ItemID  string         `json:"itemId,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// EventLog appends JSONL events to a single file under dir.
type EventLog struct {
	dir string
}

func NewEventLog(dir string) *EventLog {
	return &EventLog{dir: dir}
}

func (l *EventLog) path() string {
	return filepath.Join(l.dir, eventsFileName)
}

func (l *EventLog) Append(typ, itemID string, payload map[string]any) error {
	ev := Event{
		ID:      uuid.NewString(),
		TS:      time.Now().UTC(),
		Type:    typ,
		ItemID:  itemID,
		Payload: payload,
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	return nil
}

// Read returns events in log order. limit <= 0 returns all.
func (l *EventLog) Read(limit int) ([]Event, error) {
	f, err := os.Open(l.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Event{}, nil
		}
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	out := []Event{}
	for sc.Scan() {
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(b, &ev); err != nil {
			return nil, err
		}
		out = append(out, ev)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

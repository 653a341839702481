package tui

import (
	"context"
	"fmt"
	"strings"

	"arbor-cli/internal/model"
	"arbor-cli/internal/store"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Run starts the read-only tree browser. Mutations go through the CLI; the
// browser reloads from the store on demand.
func Run(st *store.TreeStore) error {
	doc, err := st.Get(context.Background())
	if err != nil {
		return err
	}
	m := newAppModel(st, doc)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Reload  key.Binding
	Deleted key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand/collapse")),
	Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Deleted: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "show deleted")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type row struct {
	id    string
	depth int
}

type appModel struct {
	store *store.TreeStore
	doc   *model.TreeDocument

	rows        []row
	cursor      int
	collapsed   map[string]bool
	showDeleted bool

	width  int
	height int
	err    error
}

var (
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	deletedStyle  = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	idStyle       = lipgloss.NewStyle().Faint(true)
	headerStyle   = lipgloss.NewStyle().Bold(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

func newAppModel(st *store.TreeStore, doc *model.TreeDocument) appModel {
	m := appModel{
		store:     st,
		doc:       doc,
		collapsed: map[string]bool{},
	}
	m.rebuildRows()
	return m
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Toggle):
			if m.cursor < len(m.rows) {
				id := m.rows[m.cursor].id
				m.collapsed[id] = !m.collapsed[id]
				m.rebuildRows()
			}
		case key.Matches(msg, keys.Deleted):
			m.showDeleted = !m.showDeleted
			m.rebuildRows()
		case key.Matches(msg, keys.Reload):
			doc, err := m.store.Get(context.Background())
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.doc = doc
			m.rebuildRows()
		}
	}
	return m, nil
}

// rebuildRows flattens the visible part of the tree: a depth-first walk from
// the root that stops at collapsed nodes. Detached deleted items are listed
// at the end when toggled on.
func (m *appModel) rebuildRows() {
	m.rows = m.rows[:0]
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		it, ok := m.doc.Item(id)
		if !ok {
			return
		}
		if id != model.RootID {
			m.rows = append(m.rows, row{id: id, depth: depth})
		}
		if m.collapsed[id] {
			return
		}
		for _, child := range it.Children {
			walk(child, depth+1)
		}
	}
	walk(model.RootID, -1)

	if m.showDeleted {
		for id, it := range m.doc.Items {
			if it.Deleted && it.ParentID == "" {
				m.rows = append(m.rows, row{id: id, depth: 0})
			}
		}
	}

	if m.cursor >= len(m.rows) && len(m.rows) > 0 {
		m.cursor = len(m.rows) - 1
	}
}

func (m appModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("arbor · %d items (v%d)", len(m.doc.Items), m.doc.Version)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString("error: " + m.err.Error() + "\n")
	}

	visible := m.rows
	maxRows := m.height - 4
	start := 0
	if maxRows > 0 && len(visible) > maxRows {
		if m.cursor >= maxRows {
			start = m.cursor - maxRows + 1
		}
		end := start + maxRows
		if end > len(visible) {
			end = len(visible)
		}
		visible = visible[start:end]
	}

	for i, r := range visible {
		b.WriteString(m.renderRow(r, start+i == m.cursor))
		b.WriteString("\n")
	}
	if len(m.rows) == 0 {
		b.WriteString(helpStyle.Render("(empty tree; add items with `arbor items add`)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ move · enter expand/collapse · d deleted · r reload · q quit"))
	return b.String()
}

func (m appModel) renderRow(r row, selected bool) string {
	it, ok := m.doc.Item(r.id)
	if !ok {
		return ""
	}

	indent := strings.Repeat("  ", r.depth)
	marker := "  "
	if len(it.Children) > 0 {
		if m.collapsed[r.id] {
			marker = "▸ "
		} else {
			marker = "▾ "
		}
	}

	title := r.id
	if t, ok := it.Payload["title"].(string); ok && strings.TrimSpace(t) != "" {
		title = t + " " + idStyle.Render("("+r.id+")")
	}

	line := indent + marker + title
	if it.Deleted {
		line = deletedStyle.Render(line)
	}
	if selected {
		line = selectedStyle.Render(line)
	}
	return line
}

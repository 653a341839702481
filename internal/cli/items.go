package cli

import (
	"fmt"
	"strings"

	"arbor-cli/internal/model"
	"arbor-cli/internal/tree"

	"github.com/spf13/cobra"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage items in the note tree",
	}
	cmd.AddCommand(newItemsAddCmd(app))
	cmd.AddCommand(newItemsAddManyCmd(app))
	cmd.AddCommand(newItemsRemoveCmd(app))
	cmd.AddCommand(newItemsMoveCmd(app))
	cmd.AddCommand(newItemsSetCmd(app))
	cmd.AddCommand(newItemsDeleteCmd(app))
	cmd.AddCommand(newItemsRestoreCmd(app))
	cmd.AddCommand(newItemsListCmd(app))
	cmd.AddCommand(newItemsTreeCmd(app))
	return cmd
}

func newItemsAddCmd(app *App) *cobra.Command {
	var parent, title string

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add an item under a parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = cleanup() }()
			ctx := cmd.Context()

			doc, err := st.AddItem(ctx, args[0], parent)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(title) != "" {
				doc, err = st.MutateItem(ctx, args[0], map[string]any{"title": title})
				if err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeItem(cmd, app, doc, args[0])
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent item id (default: root)")
	cmd.Flags().StringVar(&title, "title", "", "Item title")
	return cmd
}

func newItemsAddManyCmd(app *App) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "add-many <id>...",
		Short: "Add several items under one parent with a single write",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = cleanup() }()

			doc, err := st.AddItems(cmd.Context(), args, parent)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"added": args},
				"meta": map[string]any{"items": len(doc.Items)},
			})
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent item id (default: root)")
	return cmd
}

func newItemsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Detach an item from its parent (the entry is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = cleanup() }()

			doc, err := st.RemoveItem(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeItem(cmd, app, doc, args[0])
		},
	}
}

func newItemsMoveCmd(app *App) *cobra.Command {
	var to, from string
	var at, fromIndex int

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move or reorder an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = cleanup() }()
			ctx := cmd.Context()

			src := tree.Position{ParentID: from, Index: fromIndex}
			if strings.TrimSpace(from) == "" {
				// Source defaults to the item's current parent.
				doc, err := st.Get(ctx)
				if err != nil {
					return writeErr(cmd, err)
				}
				it, ok := doc.Item(strings.TrimSpace(args[0]))
				if !ok {
					return writeErr(cmd, tree.NotFoundError{Kind: "item", ID: args[0]})
				}
				src.ParentID = it.ParentID
			}

			doc, err := st.MoveItem(ctx, args[0], src, tree.Position{ParentID: to, Index: at})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeItem(cmd, app, doc, args[0])
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Destination parent id (default: root)")
	cmd.Flags().IntVar(&at, "at", 0, "Destination index among siblings")
	cmd.Flags().StringVar(&from, "from", "", "Source parent id (default: the item's current parent)")
	cmd.Flags().IntVar(&fromIndex, "from-index", -1, "Source index hint")
	return cmd
}

func newItemsSetCmd(app *App) *cobra.Command {
	var unset []string

	cmd := &cobra.Command{
		Use:   "set <id> [key=value]...",
		Short: "Shallow-merge payload fields (structure is untouched)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := map[string]any{}
			for _, kv := range args[1:] {
				k, v, ok := strings.Cut(kv, "=")
				k = strings.TrimSpace(k)
				if !ok || k == "" {
					return writeErr(cmd, fmt.Errorf("invalid key=value pair: %q", kv))
				}
				data[k] = v
			}
			for _, k := range unset {
				data[strings.TrimSpace(k)] = nil
			}
			if len(data) == 0 {
				return writeErr(cmd, fmt.Errorf("nothing to set"))
			}

			st, cleanup, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = cleanup() }()

			doc, err := st.MutateItem(cmd.Context(), args[0], data)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeItem(cmd, app, doc, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&unset, "unset", nil, "Payload key to delete (repeatable)")
	return cmd
}

func newItemsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete an item (restorable with items restore)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = cleanup() }()

			doc, err := st.DeleteItem(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeItem(cmd, app, doc, args[0])
		},
	}
}

func newItemsRestoreCmd(app *App) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a deleted item under a parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = cleanup() }()

			doc, err := st.RestoreItem(cmd.Context(), args[0], to)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeItem(cmd, app, doc, args[0])
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Parent to restore under (default: root)")
	return cmd
}

func newItemsListCmd(app *App) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the children of a parent, in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = cleanup() }()

			doc, err := st.Get(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			pid := strings.TrimSpace(parent)
			if pid == "" {
				pid = model.RootID
			}
			it, ok := doc.Item(pid)
			if !ok {
				return writeErr(cmd, tree.NotFoundError{Kind: "parent", ID: pid})
			}

			out := make([]map[string]any, 0, len(it.Children))
			for _, id := range it.Children {
				child, ok := doc.Item(id)
				if !ok {
					continue
				}
				out = append(out, itemView(child))
			}
			return writeOut(cmd, app, map[string]any{
				"data": out,
				"meta": map[string]any{"parentId": pid, "count": len(out)},
			})
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent item id (default: root)")
	return cmd
}

func newItemsTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Dump the whole tree as nested nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = cleanup() }()

			doc, err := st.Get(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": treeView(doc, model.RootID),
				"meta": map[string]any{"items": len(doc.Items), "version": doc.Version},
			})
		},
	}
}

func itemView(it *model.TreeItem) map[string]any {
	v := map[string]any{
		"id":       it.ID,
		"parentId": it.ParentID,
		"children": it.Children,
	}
	if it.Payload != nil {
		v["payload"] = it.Payload
	}
	if it.Deleted {
		v["deleted"] = true
	}
	return v
}

func treeView(doc *model.TreeDocument, id string) map[string]any {
	it, ok := doc.Item(id)
	if !ok {
		return nil
	}
	children := make([]map[string]any, 0, len(it.Children))
	for _, child := range it.Children {
		if node := treeView(doc, child); node != nil {
			children = append(children, node)
		}
	}
	node := map[string]any{"id": it.ID, "children": children}
	if title, ok := it.Payload["title"].(string); ok && title != "" {
		node["title"] = title
	}
	return node
}

func writeItem(cmd *cobra.Command, app *App, doc *model.TreeDocument, id string) error {
	id = strings.TrimSpace(id)
	body := map[string]any{
		"meta": map[string]any{"items": len(doc.Items), "version": doc.Version},
	}
	if it, ok := doc.Item(id); ok {
		body["data"] = itemView(it)
	} else {
		body["data"] = map[string]any{"id": id}
	}
	return writeOut(cmd, app, body)
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/partlabels/internal/catalog"
	"github.com/mesh-intelligence/partlabels/internal/report"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

func newLookupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up catalog entries",
	}
	cmd.AddCommand(
		newLookupPartCmd(a),
		newLookupColourCmd(a),
		newLookupCategoryCmd(a),
		newLookupElementCmd(a),
	)
	return cmd
}

func newLookupPartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "part <id-or-description>",
		Short: "Look up a part by identifier or exact description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.loadCatalog()
			if err != nil {
				return err
			}
			part, err := a.findPart(store, args[0])
			if err != nil {
				return err
			}
			return a.printPart(cmd, store, part)
		},
	}
}

// findPart tries the identifier, then the description. On a miss it names
// the first part sharing the identifier as a prefix.
func (a *app) findPart(store *catalog.Store, key string) (*types.Part, error) {
	id := key
	if a.cfg.TrimLeadingZeros {
		id = types.TrimLeadingZeros(key)
	}
	part, err := store.Part(id)
	if err == nil {
		return part, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, classify(err)
	}
	if p := store.TryPartByDescription(key); p != nil {
		return p, nil
	}
	if p := store.TryPartByIDPrefix(id); p != nil {
		return nil, userError(fmt.Errorf("%w (did you mean %s, %q?)", err, p.ID, p.Description))
	}
	return nil, userError(err)
}

func (a *app) printPart(cmd *cobra.Command, store *catalog.Store, part *types.Part) error {
	category := report.UncategorizedName
	if cat, err := store.Category(part.CategoryID); err == nil {
		category = cat.Name
	}
	if a.flags.jsonMode {
		return printJSON(cmd, map[string]any{
			"id":          part.ID,
			"base_id":     part.BaseID,
			"description": part.Description,
			"category_id": part.CategoryID,
			"category":    category,
			"elements":    store.ElementCount(part.ID),
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", part.ID, part.Description)
	if part.IsPrintVariant() {
		fmt.Fprintf(out, "  base:     %s\n", part.BaseID)
	}
	fmt.Fprintf(out, "  category: %s (%s)\n", category, part.CategoryID)
	fmt.Fprintf(out, "  elements: %d\n", store.ElementCount(part.ID))
	return nil
}

func newLookupColourCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "colour <id>",
		Aliases: []string{"color"},
		Short:   "Look up a colour",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.loadCatalog()
			if err != nil {
				return err
			}
			col, err := store.Colour(args[0])
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd, map[string]string{"id": col.ID, "name": col.Name})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", col.ID, col.Name)
			return nil
		},
	}
}

func newLookupCategoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "category <id>",
		Short: "Look up a part category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.loadCatalog()
			if err != nil {
				return err
			}
			cat, err := store.Category(args[0])
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd, map[string]string{"id": cat.ID, "name": cat.Name})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", cat.ID, cat.Name)
			return nil
		},
	}
}

func newLookupElementCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "element <element-id> | element <part-id> <colour-id>",
		Short: "Look up an element by its identifier or by part and colour",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.loadCatalog()
			if err != nil {
				return err
			}
			var el *types.Element
			if len(args) == 1 {
				el, err = store.ElementByID(args[0])
			} else {
				partID := args[0]
				if a.cfg.TrimLeadingZeros {
					partID = types.TrimLeadingZeros(partID)
				}
				el, err = store.Element(partID, args[1])
			}
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd, map[string]string{
					"id":        el.ID,
					"part_id":   el.PartID,
					"colour_id": el.ColourID,
					"design_id": el.DesignID,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  part %s colour %s design %s\n",
				el.ID, el.PartID, el.ColourID, el.DesignID)
			return nil
		},
	}
}

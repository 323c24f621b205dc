package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/semdossier/block"
)

func paletteCmd(g *globals) *cobra.Command {
	var (
		all       bool
		children  string
		recursive bool
		typeList  bool
	)

	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Print block definitions derived from the ontology",
		Long: `Print the report block types, or with --children the blocks that may
nest inside a block type. --all prints every definition and --typelist the
comma-separated type identifiers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd.Context(), func(a *App) error {
				catalog := a.Service().Catalog()
				var (
					defs []block.Definition
					err  error
				)
				switch {
				case typeList:
					list, err := catalog.TypeList()
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), list)
					return err
				case all:
					defs, err = catalog.AllDefinitions()
				case children != "":
					s := a.Service().NewSession()
					s.Select(children)
					if recursive {
						defs, err = catalog.ResolveChildren(children, true)
					} else {
						defs, err = s.Children()
					}
				default:
					defs, err = catalog.RootBlockTypes()
				}
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), defs)
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Print every block definition")
	cmd.Flags().StringVar(&children, "children", "", "Block type whose children to print")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "Include descendants with --children")
	cmd.Flags().BoolVar(&typeList, "typelist", false, "Print the comma-separated type identifiers")
	return cmd
}

// attributeView tags an attribute with its variant for JSON output.
type attributeView struct {
	Variant   string          `json:"variant"`
	Attribute block.Attribute `json:"attribute"`
}

func attributeViews(attrs []block.Attribute) []attributeView {
	views := make([]attributeView, 0, len(attrs))
	for _, a := range attrs {
		v := attributeView{Attribute: a}
		switch a.(type) {
		case *block.SimpleAttribute:
			v.Variant = "simple"
		case *block.GroupAttribute:
			v.Variant = "group"
		}
		views = append(views, v)
	}
	return views
}

func attributesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "attributes <block-type>",
		Short: "Print the ordered attributes of a block type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd.Context(), func(a *App) error {
				attrs, err := a.Service().Catalog().ResolveAttributes(args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), attributeViews(attrs))
			})
		},
	}
}

func namesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "names",
		Short: "Print every block name the editor can show",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd.Context(), func(a *App) error {
				names, err := a.Service().BlockNames(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), names)
			})
		},
	}
}

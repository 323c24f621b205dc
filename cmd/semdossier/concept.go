package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/semdossier/dossier"
)

func conceptCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "concept",
		Short: "Manage domain concepts",
	}
	cmd.AddCommand(conceptListCmd(g), conceptAddCmd(g), conceptDeleteCmd(g), conceptPaletteCmd(g))
	return cmd
}

func conceptListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored domain concepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd.Context(), func(a *App) error {
				cs, err := a.records.Concepts(cmd.Context())
				if err != nil {
					return err
				}
				for _, c := range cs {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", c.ID, c.Name, c.Type)
				}
				return nil
			})
		},
	}
}

func conceptAddCmd(g *globals) *cobra.Command {
	var (
		kind   string
		url    string
		script string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Store a domain concept",
		Long: `Store a domain concept. The concept document is read from --file when
given; otherwise an empty concept block is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := dossier.ParseConceptType(kind)
			if err != nil {
				return err
			}
			c := &dossier.DomainConcept{Name: args[0], Type: typ, URL: url, Script: script}
			if file != "" {
				if c.XML, err = readInput(cmd.InOrStdin(), file); err != nil {
					return err
				}
			}
			return g.withApp(cmd.Context(), func(a *App) error {
				if err := a.Service().SaveConcept(cmd.Context(), c); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), c)
			})
		},
	}

	cmd.Flags().StringVar(&kind, "type", string(dossier.ConceptComponent), "Concept type (report or component)")
	cmd.Flags().StringVar(&url, "url", "", "Concept URL")
	cmd.Flags().StringVar(&script, "script", "", "Editor block definition script")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Concept XML document (- for stdin)")
	return cmd
}

func conceptDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a domain concept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return g.withApp(cmd.Context(), func(a *App) error {
				return a.records.DeleteConcept(cmd.Context(), id)
			})
		},
	}
}

func conceptPaletteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "palette",
		Short: "Print the concept palette (scripts, names, types)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd.Context(), func(a *App) error {
				p, err := a.Service().ConceptPalette(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), p)
			})
		},
	}
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cayleygraph/quad"
	"github.com/spf13/cobra"

	"github.com/c360studio/semdossier/dossier"
	"github.com/c360studio/semdossier/graph"
)

func dossierCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dossier",
		Short: "Manage dossiers and their named graphs",
	}
	cmd.AddCommand(
		dossierListCmd(g),
		dossierCreateCmd(g),
		dossierOpenCmd(g),
		dossierSaveCmd(g),
		dossierDeleteCmd(g),
		dossierExportCmd(g),
	)
	return cmd
}

func dossierListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored dossiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd.Context(), func(a *App) error {
				ds, err := a.records.Dossiers(cmd.Context())
				if err != nil {
					return err
				}
				for _, d := range ds {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", d.ID, d.Name, d.URL)
				}
				return nil
			})
		},
	}
}

func dossierCreateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a dossier with its default document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd.Context(), func(a *App) error {
				d, err := a.Service().Create(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), d)
			})
		},
	}
}

func dossierOpenCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Print the editor document of a dossier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return g.withApp(cmd.Context(), func(a *App) error {
				d, err := a.Service().Open(cmd.Context(), id)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), d.XML)
				return err
			})
		},
	}
}

func dossierSaveCmd(g *globals) *cobra.Command {
	var (
		file     string
		ntriples bool
	)

	cmd := &cobra.Command{
		Use:   "save <id>",
		Short: "Save an editor document into the dossier's named graph",
		Long: `Read an editor XML document from --file (or stdin with "-"), transform it
to RDF, type its literals against the ontology and replace the dossier's
named graph in one transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			xml, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			return g.withApp(cmd.Context(), func(a *App) error {
				d, err := a.Service().Open(cmd.Context(), id)
				if err != nil {
					return err
				}
				d.XML = xml
				res, err := a.Service().Save(cmd.Context(), d)
				if err != nil {
					return err
				}
				if !ntriples {
					res.NTriples = ""
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Editor XML document (- for stdin)")
	cmd.Flags().BoolVar(&ntriples, "ntriples", false, "Include the committed graph as N-Triples")
	return cmd
}

func dossierDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a dossier and its named graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return g.withApp(cmd.Context(), func(a *App) error {
				return a.Service().Delete(cmd.Context(), id)
			})
		},
	}
}

func dossierExportCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "export <id>",
		Short: "Write the dossier's named graph as N-Quads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return g.withApp(cmd.Context(), func(a *App) error {
				gr, err := a.Service().Graph(cmd.Context(), id)
				if err != nil {
					return err
				}
				label := quad.IRI(dossier.GraphURI(a.cfg.Dossier.BaseURI, id))
				return graph.WriteNQuads(cmd.OutOrStdout(), gr, label)
			})
		},
	}
}

func readInput(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}

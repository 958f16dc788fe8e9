package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvalim/lattice/internal/config"
	"github.com/nvalim/lattice/internal/presentation/graph"
	"github.com/nvalim/lattice/internal/traversal"
	"github.com/nvalim/lattice/pkg/adapters/file"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <template-id>",
	Short: "Export the form graph visualization",
	Long:  `Loads a stored template and outputs a Mermaid diagram (graph TD), or the visualization tree as JSON with --tree.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		tpl, err := file.New(cfg.TemplatesDir).Load(context.Background(), args[0])
		if err != nil {
			fmt.Printf("Error loading template: %v\n", err)
			os.Exit(1)
		}

		if tree, _ := cmd.Flags().GetBool("tree"); tree {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(traversal.BuildTree(tpl.Graph)); err != nil {
				fmt.Printf("Error encoding tree: %v\n", err)
				os.Exit(1)
			}
			return
		}

		fmt.Print(graph.GenerateMermaid(tpl.Graph, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("tree", false, "Output the visualization tree as JSON instead of Mermaid")
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvalim/lattice/internal/config"
	"github.com/nvalim/lattice/internal/validator"
	"github.com/nvalim/lattice/pkg/adapters/file"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <template-id>",
	Short: "Lint a stored form graph",
	Long:  `Checks a template for problems: a missing root, dangling edges, unreachable steps, and duplicate option ids. Warnings are advisory; errors block publishing.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		store := file.New(cfg.TemplatesDir)
		ctx := context.Background()

		tpl, err := store.Load(ctx, args[0])
		if err != nil {
			fmt.Printf("Error loading template: %v\n", err)
			os.Exit(1)
		}

		if meta, err := store.LoadMeta(ctx, args[0]); err == nil && meta.Author != "" {
			fmt.Printf("Template: %s (by %s)\n", tpl.Name, meta.Author)
		} else {
			fmt.Printf("Template: %s\n", tpl.Name)
		}

		report := validator.Validate(tpl.Graph)
		if len(report.Findings) == 0 {
			fmt.Println("OK: no findings")
			return
		}

		for _, f := range report.Findings {
			fmt.Println(f.String())
		}
		if report.HasErrors() {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvalim/lattice/internal/cli"
	"github.com/nvalim/lattice/internal/presentation/tui"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <template-id>",
	Short: "Fill a form interactively",
	Long:  `Walks one fill session over a stored template: questions, contact capture, review, and submit.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		server, _ := cmd.Flags().GetString("server")
		banner, _ := cmd.Flags().GetBool("banner")

		if banner {
			tui.PrintBanner()
		}

		if err := cli.RunFill(args[0], server, debug); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("server", "s", "", "Remote lattice server for inventory and submissions")
	runCmd.Flags().Bool("banner", false, "Print the startup banner")
}

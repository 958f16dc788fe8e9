package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/nvalim/lattice/internal/config"
	"github.com/nvalim/lattice/internal/logging"
	"github.com/nvalim/lattice/pkg/adapters/file"
	httpadapter "github.com/nvalim/lattice/pkg/adapters/http"
	"github.com/nvalim/lattice/pkg/adapters/memory"
	"github.com/nvalim/lattice/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the lattice JSON API: template storage, graph tooling, inventory lookups, and submission intake.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.ListenAddr = addr
		}

		logger := logging.New(logLevel(cmd))
		registry := prometheus.NewRegistry()
		metrics := observability.New(registry)

		templates := file.New(cfg.TemplatesDir)
		inventory := memory.NewInventorySource()
		sink := memory.NewSubmissionSink()

		handler := httpadapter.NewHandler(templates, inventory, sink,
			httpadapter.WithLogger(logger),
			httpadapter.WithMetricsRegistry(registry),
			httpadapter.WithMetrics(metrics),
		)

		srv := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: handler,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting Lattice Server on %s\n", srv.Addr)
			fmt.Printf("Serving templates from: %s\n", cfg.TemplatesDir)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Lattice Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides LATTICE_ADDR)")
}

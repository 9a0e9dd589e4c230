package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"learningtime/internal/config"
	"learningtime/internal/service"
	"learningtime/internal/store"
)

// app is the state shared by the subcommands once the store is open
type app struct {
	imports    *service.ImportService
	closeStore func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "questionctl",
		Short: "Manage Learning Time questions in bulk",
		Long: `questionctl loads question files into the configured store,
exports them back out and removes whole courses.

The store is chosen with STORE_BACKEND (sql, firestore or memory) and the
same environment variables the server reads. A .env file is loaded when
present.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.AddCommand(newImportCmd(a), newDeleteCmd(a), newExportCmd(a))
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	s, closeFn, err := store.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open question store: %w", err)
	}

	a.imports = service.NewImportService(s)
	a.closeStore = closeFn
	return nil
}

func (a *app) close() error {
	if a.closeStore == nil {
		return nil
	}
	err := a.closeStore()
	a.closeStore = nil
	return err
}

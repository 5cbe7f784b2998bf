// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/juanceresa/BigQuery/internal/store"
	"github.com/juanceresa/BigQuery/pkg/types"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load an investigators table from CSV, YAML or JSON",
	Long: `Import reads an investigators table and writes it to the configured
record store. The file type is taken from the extension. Every row needs an
ID; CSV headers are matched case-insensitively.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the investigators table to CSV, YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	importCmd.Flags().String("mode", string(types.PersistReplace), "persist mode: replace or upsert")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mode, _ := cmd.Flags().GetString("mode")

	investigators, err := store.ReadFile(args[0])
	if err != nil {
		return err
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Persist(ctx, investigators, types.PersistMode(mode)); err != nil {
		return err
	}
	summaryLine(os.Stdout, 0, "Imported %d investigators from %s", len(investigators), args[0])
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	investigators, err := st.FetchInvestigators(ctx)
	if err != nil {
		return err
	}
	if err := store.WriteFile(args[0], investigators); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Exported %d investigators to %s\n", len(investigators), args[0])
	return nil
}

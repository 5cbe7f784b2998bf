// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/juanceresa/BigQuery/internal/enrich"
	"github.com/juanceresa/BigQuery/internal/store"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Summarise the candidates gathered by a resolve run",
	Long: `Compile groups the candidates saved by a resolve run per investigator
and reports the distinct author ids, ORCID, primary fields, work and citation
totals, and a status: verified (one author), consistent (several authors in
one field), review or none.

Candidates are read from the local SQLite database. The latest run is used
unless --run is given.`,
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().String("run", "", "run id (default: latest)")
	compileCmd.Flags().String("db", "", "SQLite database holding candidates (default from store.path)")
	compileCmd.Flags().String("format", "yaml", "output format: yaml or json")
	compileCmd.Flags().String("out", "", "write to a .yaml or .json file instead of stdout")

	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	runID, _ := cmd.Flags().GetString("run")
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	db, err := store.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if runID == "" {
		runID, err = db.LatestRun(ctx)
		if err != nil {
			return err
		}
		if runID == "" {
			return fmt.Errorf("no resolve runs found in %s", dbPath)
		}
	}

	gathered, err := db.ListCandidates(ctx, runID)
	if err != nil {
		return err
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	investigators, err := st.FetchInvestigators(ctx)
	if err != nil {
		return err
	}

	compiled := enrich.Compile(investigators, gathered)
	fmt.Fprintf(os.Stderr, "Compiled %d investigators from run %s\n", len(compiled), runID)

	if out != "" {
		return encodeFile(out, compiled)
	}
	return store.Encode(os.Stdout, store.Format(format), compiled)
}

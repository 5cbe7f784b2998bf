// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/juanceresa/BigQuery/internal/enrich"
	"github.com/juanceresa/BigQuery/internal/metrics"
	"github.com/juanceresa/BigQuery/internal/pipeline"
	"github.com/juanceresa/BigQuery/internal/store"
)

var worksCmd = &cobra.Command{
	Use:   "works",
	Short: "Fetch the works of every matched investigator",
	Long: `Works fetches the OpenAlex profile and works of every investigator with
an Alex_id or author_id. Authors whose display name contains none of the
investigator's surnames are reported as mismatches and skipped.

Works are stored in the local SQLite database; --out also writes the
per-investigator totals as YAML or JSON.`,
	RunE: runWorks,
}

func init() {
	worksCmd.Flags().String("db", "", "SQLite database for works (default from store.path)")
	worksCmd.Flags().String("out", "", "write totals to a .yaml or .json file")

	rootCmd.AddCommand(worksCmd)
}

func runWorks(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	out, _ := cmd.Flags().GetString("out")

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	investigators, err := st.FetchInvestigators(ctx)
	if err != nil {
		return err
	}

	rec := metrics.New(pipeline.NewRunID())
	defer writeMetrics(rec)

	client, done, err := newOpenAlex(rec)
	if err != nil {
		return err
	}
	defer done()

	results, summary, err := enrich.FillAll(ctx, client, investigators, os.Stdout)
	if err != nil {
		return err
	}

	db, err := store.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	summaries := make([]enrich.WorksSummary, 0, len(results))
	for _, res := range results {
		if err := db.SaveWorks(ctx, res.Summary.InvestigatorID, res.Summary.AuthorID, res.Works); err != nil {
			return err
		}
		summaries = append(summaries, res.Summary)
	}

	if out != "" {
		if err := encodeFile(out, summaries); err != nil {
			return err
		}
	}

	summaryLine(os.Stdout, summary.Failed, "Stored works for %d investigators in %s", len(results), dbPath)
	if summary.Failed > 0 {
		return fmt.Errorf("%d investigator(s) failed works lookup", summary.Failed)
	}
	return nil
}

// encodeFile writes v as YAML or JSON according to the extension of path.
func encodeFile(path string, v any) error {
	format, err := store.FormatFromPath(path)
	if err != nil {
		return err
	}
	if format == store.FormatCSV {
		return fmt.Errorf("%s: CSV output is only supported for the investigators table", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := store.Encode(f, format, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

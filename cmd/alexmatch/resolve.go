// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/juanceresa/BigQuery/internal/institution"
	"github.com/juanceresa/BigQuery/internal/metrics"
	"github.com/juanceresa/BigQuery/internal/pipeline"
	"github.com/juanceresa/BigQuery/internal/resolve"
	"github.com/juanceresa/BigQuery/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Search OpenAlex by name and fill Alex_id for unambiguous matches",
	Long: `Resolve runs the name search pass. For each investigator it searches
OpenAlex with the name variants of the record, resolves the workplace to an
OpenAlex institution, and classifies every candidate as an exact name,
institution or shared topic match.

Gathered candidates are saved under a run id for the compile command.
Investigators whose candidates all point to one author get Alex_id filled;
existing values are never replaced.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().Bool("only-missing", false, "only search investigators without Alex_id")
	resolveCmd.Flags().Int("workers", 0, "investigators resolved concurrently (default from match.workers)")
	resolveCmd.Flags().String("mode", string(types.PersistReplace), "persist mode: replace or upsert")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	onlyMissing, _ := cmd.Flags().GetBool("only-missing")
	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = cfg.Match.Workers
	}
	mode, _ := cmd.Flags().GetString("mode")

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	aliases, err := institution.LoadAliases(cfg.Match.AliasesFile)
	if err != nil {
		return err
	}

	runID := pipeline.NewRunID()
	rec := metrics.New(runID)
	defer writeMetrics(rec)

	client, done, err := newOpenAlex(rec)
	if err != nil {
		return err
	}
	defer done()

	resolver := institution.NewResolver(client, aliases, institution.NewCache(), logger).WithObserver(rec)
	engine := resolve.NewEngine(client, resolver, nil, logger).
		WithWorkers(workers).
		WithObserver(rec)

	res, err := pipeline.NameSearch(ctx, st, engine, candidateSink(st), pipeline.NameSearchOptions{
		OnlyMissing: onlyMissing,
		Mode:        types.PersistMode(mode),
		RunID:       runID,
	}, logger, os.Stdout)
	if err != nil {
		return err
	}

	summaryLine(os.Stdout, res.Summary.Failed,
		"Run %s: %d candidates gathered, %d Alex_id filled", res.RunID, len(res.Candidates), res.Filled)
	if res.Summary.Failed > 0 {
		return fmt.Errorf("%d investigator(s) failed resolution", res.Summary.Failed)
	}
	return nil
}

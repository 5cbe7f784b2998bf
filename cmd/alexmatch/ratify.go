// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/juanceresa/BigQuery/internal/match"
	"github.com/juanceresa/BigQuery/internal/metrics"
	"github.com/juanceresa/BigQuery/internal/pipeline"
	"github.com/juanceresa/BigQuery/pkg/types"
)

var ratifyCmd = &cobra.Command{
	Use:   "ratify",
	Short: "Confirm authors through the authorship list of each known DOI",
	Long: `Ratify joins every investigator with a DOI to the authorship list of
that work, scores each co-author's name against the investigator, and keeps
the best author scoring at or above the threshold. Alternative names that
equal the investigator's name win outright.

The table is rewritten with exactly one record per investigator. Without
--overwrite, author_id, Author_order and Alex_id are only filled when empty.`,
	RunE: runRatify,
}

func init() {
	ratifyCmd.Flags().Bool("overwrite", false, "replace existing author_id, Author_order and Alex_id")
	ratifyCmd.Flags().Int("threshold", 0, "minimum name score accepted (default from match.threshold)")
	ratifyCmd.Flags().String("bridge", "", "authorship source: openalex or bigquery (default from bridge.source)")
	ratifyCmd.Flags().String("mode", string(types.PersistReplace), "persist mode: replace or upsert")

	rootCmd.AddCommand(ratifyCmd)
}

func runRatify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	threshold, _ := cmd.Flags().GetInt("threshold")
	if threshold <= 0 {
		threshold = cfg.Match.Threshold
	}
	source, _ := cmd.Flags().GetString("bridge")
	if source == "" {
		source = string(cfg.Bridge.Source)
	}
	mode, _ := cmd.Flags().GetString("mode")

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rec := metrics.New(pipeline.NewRunID())
	defer writeMetrics(rec)

	bridge, err := openBridge(ctx, types.BridgeSource(source), rec)
	if err != nil {
		return err
	}
	defer bridge.close()

	res, err := pipeline.Ratify(ctx, st, bridge, pipeline.RatifyOptions{
		Match: match.Options{Threshold: threshold, Overwrite: overwrite},
		Mode:  types.PersistMode(mode),
	}, logger)
	if err != nil {
		return err
	}

	summaryLine(os.Stdout, res.LookupFailures,
		"Ratified %d of %d investigators (%d with DOI, %d candidate rows, %d failed lookups)",
		res.Matched, res.Investigators, res.WithDOI, res.Rows, res.LookupFailures)
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"google.golang.org/api/option"

	"github.com/juanceresa/BigQuery/internal/metrics"
	"github.com/juanceresa/BigQuery/internal/openalex"
	"github.com/juanceresa/BigQuery/internal/pipeline"
	"github.com/juanceresa/BigQuery/internal/store"
	"github.com/juanceresa/BigQuery/internal/warehouse"
	"github.com/juanceresa/BigQuery/pkg/types"
)

// recordStore is a pipeline.RecordStore that holds resources.
type recordStore interface {
	pipeline.RecordStore
	Close() error
}

// warehouseTable closes the client behind a BigQuery table.
type warehouseTable struct {
	*warehouse.Table
	client *warehouse.Client
}

func (w warehouseTable) Close() error { return w.client.Close() }

// openStore opens the configured record store.
func openStore(ctx context.Context) (recordStore, error) {
	switch cfg.Store.Driver {
	case types.DriverSQLite, "":
		return store.OpenSQLite(cfg.Store.Path)
	case types.DriverPostgres:
		if cfg.Store.DSN == "" {
			return nil, fmt.Errorf("store.dsn is required for the postgres driver")
		}
		return store.OpenPostgres(ctx, cfg.Store.DSN)
	case types.DriverBigQuery:
		if cfg.Store.Dataset == "" || cfg.Store.Table == "" {
			return nil, fmt.Errorf("store.dataset and store.table are required for the bigquery driver")
		}
		client, err := openWarehouse(ctx, cfg.Store.Project)
		if err != nil {
			return nil, err
		}
		return warehouseTable{Table: client.Table(cfg.Store.Dataset, cfg.Store.Table), client: client}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// candidateSink returns st as a CandidateSink when the driver keeps
// candidates, or nil.
func candidateSink(st recordStore) pipeline.CandidateSink {
	if sink, ok := st.(pipeline.CandidateSink); ok {
		return sink
	}
	return nil
}

func openWarehouse(ctx context.Context, project string) (*warehouse.Client, error) {
	return warehouse.Open(ctx, project, logger, option.WithUserAgent(cfg.OpenAlex.UserAgent))
}

// newOpenAlex builds the API client with the on-disk cache when configured.
// The returned function releases the cache.
func newOpenAlex(rec *metrics.Recorder) (*openalex.Client, func(), error) {
	client := openalex.NewClient(cfg.OpenAlex, logger)
	if rec != nil {
		client.Observer = rec
	}
	if cfg.OpenAlex.CacheDir == "" {
		return client, func() {}, nil
	}
	cache, err := openalex.OpenBadgerCache(cfg.OpenAlex.CacheDir, cfg.OpenAlex.CacheTTL)
	if err != nil {
		return nil, nil, err
	}
	client.Cache = cache
	return client, func() {
		if err := cache.Close(); err != nil {
			logger.Warn("closing response cache", "error", err)
		}
	}, nil
}

// bridgeCloser is a pipeline.Bridge with resources to release.
type bridgeCloser struct {
	pipeline.Bridge
	close func()
}

// openBridge returns the configured authorship bridge.
func openBridge(ctx context.Context, source types.BridgeSource, rec *metrics.Recorder) (bridgeCloser, error) {
	switch source {
	case types.BridgeOpenAlex, "":
		client, done, err := newOpenAlex(rec)
		if err != nil {
			return bridgeCloser{}, err
		}
		return bridgeCloser{Bridge: client, close: done}, nil
	case types.BridgeBigQuery:
		if cfg.Bridge.Dataset == "" {
			return bridgeCloser{}, fmt.Errorf("bridge.dataset is required for the bigquery bridge")
		}
		client, err := openWarehouse(ctx, cfg.Bridge.Project)
		if err != nil {
			return bridgeCloser{}, err
		}
		return bridgeCloser{Bridge: client.Snapshot(cfg.Bridge.Dataset), close: func() { client.Close() }}, nil
	default:
		return bridgeCloser{}, fmt.Errorf("unknown bridge source %q", source)
	}
}

// writeMetrics writes the textfile export when metrics.file is set.
func writeMetrics(rec *metrics.Recorder) {
	if cfg.Metrics.File == "" {
		return
	}
	if err := rec.WriteTextfile(cfg.Metrics.File); err != nil {
		logger.Warn("writing metrics", "file", cfg.Metrics.File, "error", err)
	}
}

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
)

// summaryLine prints a one-line result, green when nothing failed.
func summaryLine(w io.Writer, failed int, format string, args ...any) {
	c := okColor
	if failed > 0 {
		c = warnColor
	}
	c.Fprintf(w, format+"\n", args...)
}

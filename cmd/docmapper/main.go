/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/suparena/docmapper"
	"github.com/suparena/docmapper/config"
	"github.com/suparena/docmapper/datastore"
	"github.com/suparena/docmapper/model"
	"github.com/suparena/docmapper/processor"
	"github.com/suparena/docmapper/provider"
	"github.com/suparena/docmapper/samples"
	"github.com/suparena/docmapper/storagemodels"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

type options struct {
	configPath string
	envFile    string
	page       int
	pageSize   int
	order      string
	filter     string
	seed       string
	export     bool
	indexMaps  string
	logLevel   string
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("docmapper", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.configPath, "config", "docmapper.yaml", "Path to the YAML configuration")
	fs.StringVar(&o.envFile, "env", "", "Env file loaded before the configuration (default .env)")
	fs.IntVar(&o.page, "page", 0, "0-based page to list")
	fs.IntVar(&o.pageSize, "page-size", 0, "Records per page (default from config)")
	fs.StringVar(&o.order, "order", "", `Order clause, e.g. "name desc, created_at"`)
	fs.StringVar(&o.filter, "where", "", "JSON filter document, e.g. '{\"owner\":\"ada\"}'")
	fs.StringVar(&o.seed, "seed", "", "JSON lines file inserted before listing")
	fs.BoolVar(&o.export, "export", false, "Stream the whole collection instead of listing a page")
	fs.StringVar(&o.indexMaps, "indexmaps", "", "Print the index maps of an OpenAPI document and exit")
	fs.StringVar(&o.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	fs.BoolVar(&o.version, "version", false, "Show version information")
	fs.BoolVar(&o.version, "v", false, "Show version information (short)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	// Handle version flag
	if o.version {
		info := docmapper.GetVersionInfo()
		fmt.Fprintf(stdout, "docmapper version %s\n", info.Version)
		fmt.Fprintf(stdout, "Git commit: %s\n", info.GitCommit)
		fmt.Fprintf(stdout, "Build date: %s\n", info.BuildDate)
		fmt.Fprintf(stdout, "Go version: %s\n", info.GoVersion)
		return 0
	}

	level, ok := logLevels[strings.ToLower(o.logLevel)]
	if !ok {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if o.indexMaps != "" {
		if err := printIndexMaps(o.indexMaps, stdout); err != nil {
			logger.Error("reading index maps failed", "path", o.indexMaps, "error", err)
			return 1
		}
		return 0
	}

	if err := listCollection(ctx, o, stdout, logger); err != nil {
		logger.Error("docmapper failed", "error", err)
		return 1
	}
	return 0
}

func printIndexMaps(path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	maps, err := processor.ParseIndexMaps(f)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	for _, m := range maps {
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}

func listCollection(ctx context.Context, o *options, out io.Writer, logger *slog.Logger) error {
	var envFiles []string
	if o.envFile != "" {
		envFiles = append(envFiles, o.envFile)
	}
	cfg, err := config.Load(o.configPath, envFiles...)
	if err != nil {
		return err
	}
	if o.pageSize > 0 {
		cfg.PageSize = o.pageSize
	}

	storage := docmapper.NewStorage()
	defer func() {
		if err := storage.Close(context.Background()); err != nil {
			logger.Warn("closing stores failed", "error", err)
		}
	}()

	store, err := docmapper.Open(ctx, storage, cfg, logger)
	if err != nil {
		return err
	}

	filter := storagemodels.NewCriteria()
	if o.filter != "" {
		if err := json.Unmarshal([]byte(o.filter), &filter.Filter); err != nil {
			return fmt.Errorf("invalid -where filter: %w", err)
		}
	}

	types := samples.NewTypes()
	switch cfg.Collection {
	case samples.CollectionGalleries:
		return runCollection(ctx, o, cfg, store, filter, func() *samples.Gallery { return samples.NewGallery(types) }, out, logger)
	case samples.CollectionUsers:
		return runCollection(ctx, o, cfg, store, filter, func() *samples.User { return samples.NewUser(types) }, out, logger)
	case samples.CollectionImages:
		return runCollection(ctx, o, cfg, store, filter, samples.NewImage, out, logger)
	}

	if o.export && o.seed == "" {
		return export(ctx, store, filter, cfg, out, logger)
	}
	return fmt.Errorf("no record type for collection %q; only -export of raw documents is supported", cfg.Collection)
}

func runCollection[T model.Record](
	ctx context.Context,
	o *options,
	cfg *config.Config,
	store datastore.DocumentStore,
	filter *storagemodels.Criteria,
	newRecord func() T,
	out io.Writer,
	logger *slog.Logger,
) error {
	repo, err := model.NewRepository(store, newRecord,
		model.WithRepositoryKeyField(cfg.KeyField),
		model.WithRepositoryLogger(logger),
	)
	if err != nil {
		return err
	}

	if o.seed != "" {
		if err := seed(ctx, repo, o.seed, logger); err != nil {
			return err
		}
	}
	if o.export {
		return export(ctx, store, filter, cfg, out, logger)
	}
	return listPage(ctx, o, cfg, repo, filter, out, logger)
}

func listPage[T model.Record](
	ctx context.Context,
	o *options,
	cfg *config.Config,
	repo *model.Repository[T],
	filter *storagemodels.Criteria,
	out io.Writer,
	logger *slog.Logger,
) error {
	pagination := provider.NewPagination(cfg.PageSize)
	pagination.SetCurrentPage(o.page)
	sort := provider.NewSort()
	sort.SetOrder(o.order)

	p, err := provider.New[T](repo,
		provider.WithID(cfg.Collection),
		provider.WithKeyField(cfg.KeyField),
		provider.WithCriteria(filter),
		provider.WithPagination(pagination),
		provider.WithSort(sort),
		provider.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	records, err := p.Data(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	for _, rec := range records {
		doc, err := model.ToDocument(rec)
		if err != nil {
			return err
		}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	logger.Info("listed page",
		"collection", cfg.Collection,
		"page", pagination.CurrentPage(),
		"pages", pagination.PageCount(),
		"total", pagination.ItemCount(),
	)
	return nil
}

// seed inserts one record per line of a JSON lines file.
func seed[T model.Record](ctx context.Context, repo *model.Repository[T], path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var doc storagemodels.Document
		if err := json.Unmarshal([]byte(text), &doc); err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
		rec, err := repo.Populate(doc)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if err := repo.Insert(ctx, rec); err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	logger.Debug("seeded collection", "path", path, "lines", line)
	return nil
}

func export(ctx context.Context, store datastore.DocumentStore, filter *storagemodels.Criteria, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	streamer, ok := store.(datastore.Streamer)
	if !ok {
		return fmt.Errorf("%s store cannot stream", cfg.Backend)
	}

	results := streamer.Stream(ctx, filter,
		storagemodels.WithPageSize(int32(cfg.PageSize)),
		storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
			logger.Info("export progress", "items", p.ItemsProcessed, "pages", p.PagesProcessed, "rate", p.CurrentRate)
		}),
	)

	enc := json.NewEncoder(out)
	var n int64
	for res := range results {
		if res.Error != nil {
			return res.Error
		}
		if err := enc.Encode(res.Item); err != nil {
			return err
		}
		n++
	}
	logger.Info("export finished", "collection", cfg.Collection, "documents", n)
	return ctx.Err()
}

package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"tour_scraper/internal/adapters/itaka"
	"tour_scraper/internal/adapters/observability"
	redisad "tour_scraper/internal/adapters/redis"
	"tour_scraper/internal/app"
	"tour_scraper/internal/domain"
	"tour_scraper/internal/shared"
	storage "tour_scraper/internal/storage/file"
	mysqlrepo "tour_scraper/internal/storage/mysql"
)

func main() {
	skipScraping := flag.Bool("skip-scraping", false, "replay the raw capture next to the output instead of fetching")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-skip-scraping] <output_file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	output := flag.Arg(0)
	rawPath := filepath.Join(filepath.Dir(output), "raw_dataset.json")

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve(cfg.MetricsAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("output", output).
		Bool("skip_scraping", *skipScraping).
		Int("workers", cfg.Workers).
		Int("rps", cfg.RPS).
		Msg("scraper starting")

	var (
		client domain.SourceClient
		rec    *app.RecordingClient
	)
	if *skipScraping {
		raw := app.NewRawDataset()
		if err := storage.ReadJSON(rawPath, raw); err != nil {
			log.Fatal().Err(err).Str("path", rawPath).Msg("raw capture unavailable")
		}
		client = app.NewSnapshotClient(raw)
	} else {
		params := itaka.RateParams{
			Supplier: "itaka",
			Language: cfg.Language,
			Currency: cfg.Currency,
			Adults:   cfg.Adults,
		}
		var opts []itaka.Option
		if cfg.RedisAddr != "" {
			opts = append(opts, itaka.WithCache(redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB), cfg.RedisTTL))
		}
		src, err := itaka.New(cfg.SourceURL, cfg.RPS, time.Duration(cfg.HTTPTimeout)*time.Second, params, opts...)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize source client")
		}
		rec = app.NewRecordingClient(src)
		client = rec
	}

	ex, err := app.ExtractorFor("itaka")
	if err != nil {
		log.Fatal().Err(err).Msg("no extractor")
	}

	write := func(ds *domain.Dataset) error {
		if rec != nil {
			if err := storage.WriteAtomic(rawPath, rec.Snapshot()); err != nil {
				log.Warn().Err(err).Str("path", rawPath).Msg("raw capture not persisted")
			}
		}
		return storage.WriteAtomic(output, ds)
	}

	coord := app.NewCoordinator(client, ex, app.NewDiagnostics(), app.CoordinatorConfig{
		Workers:      int64(cfg.Workers),
		RatesPerPage: cfg.RatesPage,
		MaxPages:     cfg.MaxPages,
		Write:        write,
	})

	ds, err := coord.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("state", string(coord.State())).Msg("run failed")
	}

	if cfg.MySQLDSN != "" {
		mirrorToMySQL(ctx, cfg.MySQLDSN, ds)
	}
	log.Info().Str("output", output).Msg("dataset written")
}

// mirrorToMySQL pushes the dataset into the consuming database. Failures are
// logged and swallowed; the file artifact already exists.
func mirrorToMySQL(ctx context.Context, dsn string, ds *domain.Dataset) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Warn().Err(err).Msg("mysql mirror: open failed")
		return
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Warn().Err(err).Msg("mysql mirror: ping failed")
		return
	}
	repo := mysqlrepo.New(db)
	if err := repo.Migrate(ctx); err != nil {
		log.Warn().Err(err).Msg("mysql mirror: migrate failed")
		return
	}
	if err := repo.ReplaceDataset(ctx, ds); err != nil {
		log.Warn().Err(err).Msg("mysql mirror: replace failed")
		return
	}
	log.Info().Msg("dataset mirrored to mysql")
}

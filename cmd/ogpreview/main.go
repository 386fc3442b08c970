package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/ogpreview/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		url         string
		timeout     time.Duration
		ua          string
		configPath  string
		cacheDir    string
		cacheMaxAge time.Duration
		cardOut     string
		verbose     bool
	)

	flag.StringVar(&url, "url", os.Getenv("OGPREVIEW_URL"), "Page URL to fetch")
	flag.DurationVar(&timeout, "timeout", 0, "Per-run timeout (e.g. 10s); default 10s")
	flag.StringVar(&ua, "ua", "ogpreview/1.0 (+https://github.com/hyperifyio/ogpreview)", "Custom User-Agent")
	flag.StringVar(&configPath, "config", os.Getenv("OGPREVIEW_CONFIG"), "Path to YAML config file (flags take precedence)")
	flag.StringVar(&cacheDir, "cache.dir", os.Getenv("OGPREVIEW_CACHE_DIR"), "Preview cache directory; empty disables caching")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cache entries (e.g. 24h); 0 accepts any age")
	flag.StringVar(&cardOut, "card.out", "", "Write a PDF preview card to this path after a successful run")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	cfg := app.Config{
		URL:         url,
		Timeout:     timeout,
		UserAgent:   ua,
		CacheDir:    cacheDir,
		CacheMaxAge: cacheMaxAge,
		CardPath:    cardOut,
		Verbose:     verbose,
	}
	if configPath != "" {
		fc, err := app.LoadFileConfig(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("config file")
		}
		if err := fc.Apply(&cfg); err != nil {
			log.Fatal().Err(err).Msg("config file")
		}
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	res, err := app.New(cfg).Run(context.Background())
	if err != nil {
		// The run already logged its failure; exit code signals it.
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatal().Err(err).Msg("encode result")
	}
}

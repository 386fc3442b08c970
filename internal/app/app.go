package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/ogpreview/internal/cache"
	"github.com/hyperifyio/ogpreview/internal/card"
	"github.com/hyperifyio/ogpreview/internal/engine"
	"github.com/hyperifyio/ogpreview/internal/extract"
)

// App wires the fetch-and-extract engine to the optional preview cache and
// card renderer.
type App struct {
	cfg   Config
	cache *cache.Cache
}

func New(cfg Config) *App {
	a := &App{cfg: cfg}
	if cfg.CacheDir != "" {
		a.cache = &cache.Cache{Dir: cfg.CacheDir}
		if cfg.CacheMaxAge > 0 {
			// Best effort; a failed purge must not block the run.
			if n, err := a.cache.PurgeByAge(cfg.CacheMaxAge); err == nil && n > 0 {
				log.Debug().Int("removed", n).Msg("purged stale cache entries")
			}
		}
	}
	return a
}

// Run performs one fetch-and-extract and returns the result. A fresh-enough
// cached entry short-circuits the network entirely.
func (a *App) Run(ctx context.Context) (extract.Result, error) {
	if a.cache != nil {
		if res, ok := a.cache.Load(a.cfg.URL, a.cfg.CacheMaxAge); ok {
			log.Info().Str("url", a.cfg.URL).Msg("preview served from cache")
			return res, a.renderCard(res)
		}
	}

	eng := engine.New()
	eng.UserAgent = a.cfg.UserAgent
	eng.Start(a.cfg.URL, a.cfg.Timeout)

	var result extract.Result
	for {
		select {
		case <-ctx.Done():
			// The abandoned run finishes into the channel buffer
			// and is collected with the engine.
			return extract.Result{}, ctx.Err()
		case ev := <-eng.Events():
			switch ev.Kind {
			case engine.EventStarted:
				log.Info().Str("url", eng.CurrentURL()).Msg("fetch started")
			case engine.EventData:
				result = ev.Result
				log.Info().
					Str("title", result.Title).
					Str("image", result.Image).
					Msg("metadata extracted")
			case engine.EventEnded:
				if a.cache != nil {
					if err := a.cache.Save(a.cfg.URL, result); err != nil {
						log.Warn().Err(err).Msg("cache save failed")
					}
				}
				return result, a.renderCard(result)
			case engine.EventError:
				log.Error().Err(ev.Err).Str("kind", ev.Err.Kind.String()).Msg("run failed")
				return extract.Result{}, ev.Err
			}
		}
	}
}

func (a *App) renderCard(res extract.Result) error {
	if a.cfg.CardPath == "" {
		return nil
	}
	if err := card.Write(res, a.cfg.CardPath); err != nil {
		return err
	}
	log.Info().Str("path", a.cfg.CardPath).Msg("card written")
	return nil
}

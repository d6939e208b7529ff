package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/klabast/wb-services/canada-holidays/internal/app"
)

// Serve handles the serve subcommand (the default)
func Serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(app.ModeServe, flag.ExitOnError)
	configPath := configFlag(fs)
	host := fs.String("host", "", "Host to listen on (overrides config)")
	port := fs.Int("port", 0, "Port to listen on (overrides config)")
	backend := fs.String("cache-backend", "", "Cache backend: memory, file, badger or sqlite (overrides config)")
	cachePath := fs.String("cache-path", "", "Cache directory or database file (overrides config)")
	logLevel := fs.String("log-level", "", "Log level (overrides config)")
	noScheduler := fs.Bool("no-scheduler", false, "Disable the cache warm-up scheduler")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: canada-holidays [serve] [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Serves the holiday API.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	cfg, err := app.LoadConfig(resolveConfigPath(*configPath))
	if err != nil {
		return err
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *backend != "" {
		cfg.Cache.Backend = strings.ToLower(*backend)
	}
	if *cachePath != "" {
		cfg.Cache.Path = *cachePath
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *noScheduler {
		cfg.Scheduler.Enabled = false
	}

	app.InitLogger(app.DefaultAppName, cfg.Logging, nil)

	if err := app.LoadAuthCredentials(cfg.Auth.File); err != nil {
		return fmt.Errorf("failed to load auth credentials: %w", err)
	}

	provider, store, err := app.NewProvider(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			app.Logger.WithError(err).Error("Error closing cache")
		}
	}()

	app.Holidays = provider
	app.DefaultProvince = cfg.Server.DefaultProvince

	if cfg.Scheduler.Enabled {
		c, err := app.StartScheduler(cfg.Scheduler, provider)
		if err != nil {
			return err
		}
		defer c.Stop()
	}

	shutdownTimeout, err := cfg.Server.ShutdownTimeoutDuration()
	if err != nil {
		return err
	}

	app.Logger.WithField("cache", cfg.Cache.Backend).Infof("Starting Canada Holidays on http://%s", cfg.Server.Addr())
	return app.Serve(ctx, cfg.Server.Addr(), app.NewRouter(cfg.Server.CORSOrigins), shutdownTimeout)
}

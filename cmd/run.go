package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccnaprep/ccnaprep/internal/app"
	"github.com/ccnaprep/ccnaprep/internal/bank"
	"github.com/ccnaprep/ccnaprep/internal/imageload"
	"github.com/ccnaprep/ccnaprep/internal/verify"
)

// runApp resolves configuration, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command, start app.Start) error {
	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	cfg := e.cfg
	if start != app.StartStats {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
	}

	opts := app.Options{
		Config:    cfg,
		EventRepo: e.eventRepo(),
		StatsRepo: e.statsRepo(),
		Logger:    e.logger,
		Start:     start,
	}

	if cfg.Bank.Path != "" {
		b, err := bank.Load(cfg.Bank.Path)
		if err != nil {
			return err
		}
		opts.Title = b.Title
		opts.Questions = b.Answerable()
		if skipped := len(b.Questions) - len(opts.Questions); skipped > 0 {
			e.logger.Info("skipping questions that cannot be answered by choice", "count", skipped)
		}

		client, err := newClient(cfg.Server.URL, cfg.Server.CSRFToken, e)
		if err != nil {
			return err
		}
		opts.Verifier = client

		loader, err := imageload.NewLoader(cfg.ResolvedImageBase(), imageload.DefaultCacheSize,
			imageload.WithLogger(e.logger))
		if err != nil {
			return err
		}
		opts.Images = loader
	}

	e.logger.Info("starting", "bank", cfg.Bank.Path, "questions", len(opts.Questions), "server", cfg.Server.URL)
	return app.Run(opts)
}

func newClient(server, token string, e *env) (*verify.Client, error) {
	opts := []verify.Option{verify.WithLogger(e.logger)}
	if token != "" {
		opts = append(opts, verify.WithCSRFToken(token))
	}
	return verify.NewClient(server, opts...)
}

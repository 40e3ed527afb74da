package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ccnaprep/ccnaprep/internal/config"
	"github.com/ccnaprep/ccnaprep/internal/logging"
	"github.com/ccnaprep/ccnaprep/internal/store"
)

// env holds what every command needs once flags are resolved.
type env struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *store.Store // nil when history is disabled
	closers []io.Closer
}

// loadConfig layers defaults, the config file, CCNAPREP_* env vars and
// finally flags explicitly set on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	if flags.Changed("bank") {
		cfg.Bank.Path, _ = flags.GetString("bank")
	}
	if flags.Changed("server") {
		cfg.Server.URL, _ = flags.GetString("server")
	}
	if flags.Changed("db") {
		cfg.Store.Path, _ = flags.GetString("db")
	}
	if flags.Changed("log-file") {
		cfg.Log.File, _ = flags.GetString("log-file")
	}
	if flags.Changed("timeout") {
		cfg.Server.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("shuffle") {
		cfg.Bank.Shuffle, _ = flags.GetBool("shuffle")
	}
	if flags.Changed("no-history") {
		cfg.Store.Disabled, _ = flags.GetBool("no-history")
	}
	return cfg, nil
}

// openEnv resolves config and opens the store. Interactive commands log to
// a file since the TUI owns the terminal.
func openEnv(cmd *cobra.Command, interactive bool) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg}

	if interactive {
		logger, closer, err := logging.OpenFile(cfg.Log.File, cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		e.logger = logger
		e.closers = append(e.closers, closer)
	} else {
		e.logger = logging.Stderr(cfg.Log.Level)
	}

	if !cfg.Store.Disabled {
		st, err := openStore(cfg.Store.Path)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.store = st
		e.closers = append(e.closers, st)
	}
	return e, nil
}

// openStore uses path when set, else the default XDG location.
func openStore(path string) (*store.Store, error) {
	if path != "" {
		if err := store.EnsureDir(path); err != nil {
			return nil, fmt.Errorf("create DB dir: %w", err)
		}
	} else {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		path = p
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func (e *env) eventRepo() store.EventRepo {
	if e.store == nil {
		return nil
	}
	return e.store.EventRepo()
}

func (e *env) statsRepo() store.StatsRepo {
	if e.store == nil {
		return nil
	}
	return e.store.StatsRepo()
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}

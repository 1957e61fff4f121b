package commands

import (
	"errors"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/clipboard"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/config"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/editor"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/localstore"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/logging"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/persist"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/printer"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/remote"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/session"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// systemClipboard builds the copier used when clipboard support is enabled.
var systemClipboard = func() clipboard.Copier { return clipboard.System{} }

// app is everything one invocation needs: the editor loaded from the local
// working copy and, when remote storage is enabled, a bridge to Redis with the
// stored session resumed.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	out      *printer.Printer
	local    *localstore.Store
	sessions *session.Store
	client   *remote.Client
	bridge   *persist.Bridge
	editor   *editor.Editor

	identity string
	initial  board.Board
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.Load(opts.configPath)
	}
	return config.LoadOrDefault(config.DefaultPath)
}

// openApp wires the stack for cmd.
func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	out := printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, out.Error("invalid configuration", err.Error(), []string{"Write a fresh one:\n  kanban init --force"})
	}

	level := cfg.Log.Level
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}

	local := localstore.New(cfg.Storage.DataDir)
	initial, err := local.Load()
	if err != nil {
		return nil, out.ErrorWithContext("failed to load board", err.Error(),
			map[string]string{"File": local.Path()},
			[]string{"Fix or remove the file; 'kanban import' can restore an export"})
	}

	var clip clipboard.Copier = clipboard.Discard{}
	if cfg.Clipboard.Enabled {
		clip = systemClipboard()
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		out:      out,
		local:    local,
		sessions: session.NewStore(cfg.Storage.DataDir, []byte(cfg.Remote.JWTSecret)),
		initial:  initial,
	}

	edOpts := editor.Options{Clipboard: clip, Logger: logger}
	if cfg.Remote.Enabled {
		client, err := remote.NewClientFromURL(cfg.Remote.URL, cfg.Remote.Namespace)
		if err != nil {
			return nil, err
		}
		a.client = client
		a.bridge = persist.New(client, persist.Options{SaveTimeout: cfg.Remote.SaveTimeout, Logger: logger})
		edOpts.Sync = a.bridge
	}
	a.editor = editor.New(initial, edOpts)

	if a.bridge != nil {
		identity, err := a.sessions.Identity()
		switch {
		case err == nil:
			a.identity = identity
			if err := a.editor.Resume(identity); err != nil {
				return nil, err
			}
		case errors.Is(err, session.ErrNotLoggedIn):
			logging.Component(logger, "cli").WithError(err).Debug("working locally")
		default:
			logging.Component(logger, "cli").WithError(err).Warn("ignoring stored credentials")
		}
	}

	return a, nil
}

// close waits for remote saves, reports failures, persists the working copy
// if it changed and releases the Redis connection.
func (a *app) close() error {
	a.editor.Wait()

	if a.bridge != nil {
		if err := a.bridge.Status().LastError; err != nil {
			a.out.Warning("Remote save failed, the change is kept locally: %v\n", err)
		}
	}

	if a.client != nil {
		defer a.client.Close()
	}

	if current := a.editor.Board(); !current.Equal(a.initial) {
		if err := a.local.Save(current); err != nil {
			return a.out.ErrorWithContext("failed to save local board", err.Error(),
				map[string]string{"File": a.local.Path()}, nil)
		}
	}
	return nil
}

// run opens the app, calls fn and closes the app, returning the first error.
func run(cmd *cobra.Command, opts *rootOptions, fn func(a *app) error) error {
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	fnErr := fn(a)
	closeErr := a.close()
	if fnErr != nil {
		return fnErr
	}
	return closeErr
}

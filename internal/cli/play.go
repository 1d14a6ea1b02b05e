package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/roach88/storyloom/internal/engine"
	"github.com/roach88/storyloom/internal/player"
	"github.com/roach88/storyloom/internal/state"
	"github.com/roach88/storyloom/internal/store"
	"github.com/roach88/storyloom/internal/story"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Slot    string
	NewGame bool
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <story.html>",
		Short: "Play a story in the terminal",
		Long: `Play a story interactively.

The session resumes from the save slot (default_slot in config) when one
exists. Saves are kept in the SQLite database named by --db.

Examples:
  storyloom play forest.html
  storyloom play forest.html --slot chapter2
  storyloom play forest.html --new-game --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Slot, "slot", "", "save slot to resume (empty disables resuming)")
	cmd.Flags().BoolVar(&opts.NewGame, "new-game", false, "ignore saves and start from the beginning")
	cmd.Flags().Bool("watch", false, "reload the story when the file changes")
	_ = rootOpts.Viper.BindPFlag("watch", cmd.Flags().Lookup("watch"))

	return cmd
}

// startQuery builds the Start query from the flags and configuration.
func (o *PlayOptions) startQuery(cmd *cobra.Command) url.Values {
	query := url.Values{}
	slot := o.Config.DefaultSlot
	if cmd.Flags().Changed("slot") {
		slot = o.Slot
	}
	query.Set(engine.QuerySlot, slot)
	if o.NewGame {
		query.Set(engine.QueryNewGame, "1")
	}
	return query
}

func runPlay(opts *PlayOptions, path string, cmd *cobra.Command) error {
	cfg := opts.Config

	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open save database", err)
	}
	defer st.Close()

	build := func(ctx context.Context, prev *state.State) (*engine.Engine, error) {
		s, err := story.Load(path)
		if err != nil {
			return nil, err
		}
		engineOpts := []engine.Option{
			engine.WithStore(st),
			engine.WithResolveTimeout(cfg.ResolveTimeout),
		}
		if prev != nil {
			// Globals and external bindings outlive a reload.
			engineOpts = append(engineOpts, engine.WithState(state.From(prev)))
		}
		return engine.New(s, engineOpts...), nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	e, err := build(ctx, nil)
	if err != nil {
		return WrapExitError(ExitCommandError, "load story", err)
	}

	playerOpts := []player.Option{
		player.WithStyles(player.NewStyles(cfg.Player.Color, cfg.Player.Width)),
	}
	if cfg.Watch {
		w, err := story.NewWatcher(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "watch story", err)
		}
		if err := w.Start(); err != nil {
			return WrapExitError(ExitCommandError, "watch story", err)
		}
		defer w.Stop()
		playerOpts = append(playerOpts, player.WithReload(w.Changes, build))
		opts.formatter(cmd).VerboseLog("watching %s", w.Path)
	}

	p := player.New(e, cmd.InOrStdin(), cmd.OutOrStdout(), playerOpts...)
	if err := p.Run(ctx, opts.startQuery(cmd)); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("play %s: %w", path, err)
	}
	return nil
}

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/storyloom/internal/session"
	"github.com/roach88/storyloom/internal/store"
	"github.com/roach88/storyloom/internal/story"
)

// SavesOptions holds flags for the saves command.
type SavesOptions struct {
	*RootOptions
	Delete string
	Log    bool
}

// SaveInfo describes one stored slot.
type SaveInfo struct {
	Slot      string    `json:"slot"`
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveLogInfo is one write-log row.
type SaveLogInfo struct {
	Seq      int64     `json:"seq"`
	Op       string    `json:"op"`
	Slot     string    `json:"slot"`
	Size     int       `json:"size"`
	LoggedAt time.Time `json:"logged_at"`
}

// NewSavesCommand creates the saves command.
func NewSavesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SavesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "saves <story.html>",
		Short: "List or delete the save slots of a story",
		Long: `List the save slots stored for a story in the save database.

Examples:
  storyloom saves forest.html
  storyloom saves forest.html --delete chapter2
  storyloom saves forest.html --log --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSaves(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Delete, "delete", "", "delete the named slot")
	cmd.Flags().BoolVar(&opts.Log, "log", false, "show the write log instead of the slots")

	return cmd
}

func runSaves(opts *SavesOptions, path string, cmd *cobra.Command) error {
	s, err := story.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load story", err)
	}

	st, err := store.Open(opts.Config.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open save database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	prefix := session.Key(s.ID(), "")
	formatter := opts.formatter(cmd)

	if opts.Delete != "" {
		if err := st.Delete(ctx, session.Key(s.ID(), opts.Delete)); err != nil {
			return fmt.Errorf("delete save %q: %w", opts.Delete, err)
		}
		if opts.Format == "json" {
			return formatter.Success(map[string]string{"deleted": opts.Delete})
		}
		return formatter.Success(fmt.Sprintf("deleted slot %s", opts.Delete))
	}

	if opts.Log {
		rows, err := st.ReadLog(ctx, prefix)
		if err != nil {
			return err
		}
		infos := make([]SaveLogInfo, 0, len(rows))
		for _, r := range rows {
			infos = append(infos, SaveLogInfo{
				Seq:      r.Seq,
				Op:       r.Op,
				Slot:     strings.TrimPrefix(r.Key, prefix),
				Size:     r.Size,
				LoggedAt: r.LoggedAt,
			})
		}
		if opts.Format == "json" {
			return formatter.Success(infos)
		}
		w := cmd.OutOrStdout()
		for _, info := range infos {
			fmt.Fprintf(w, "[%d] %-6s %-16s %6d bytes  %s\n",
				info.Seq, info.Op, info.Slot, info.Size, info.LoggedAt.Format(time.RFC3339))
		}
		return nil
	}

	entries, err := st.Entries(ctx, prefix)
	if err != nil {
		return err
	}
	infos := make([]SaveInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, SaveInfo{
			Slot:      strings.TrimPrefix(e.Key, prefix),
			ID:        e.ID,
			Seq:       e.Seq,
			Size:      e.Size,
			UpdatedAt: e.UpdatedAt,
		})
	}

	if opts.Format == "json" {
		return formatter.Success(infos)
	}
	w := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintf(w, "No saves for %s.\n", s.Name())
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(w, "%-16s seq %-4d %6d bytes  %s\n",
			info.Slot, info.Seq, info.Size, info.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

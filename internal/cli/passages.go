package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storyloom/internal/story"
)

// PassageInfo is one row of the passages listing.
type PassageInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Tags  string `json:"tags,omitempty"`
	Start bool   `json:"start,omitempty"`
}

// NewPassagesCommand creates the passages command.
func NewPassagesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "passages <story.html>",
		Short: "List the navigable passages of a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPassages(rootOpts, args[0], cmd)
		},
	}
}

func runPassages(opts *RootOptions, path string, cmd *cobra.Command) error {
	s, err := story.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load story", err)
	}

	start, _, err := s.Lookup(cmd.Context(), s.StartPassage())
	if err != nil {
		return err
	}

	all := s.Passages().All()
	infos := make([]PassageInfo, 0, len(all))
	for _, p := range all {
		infos = append(infos, PassageInfo{
			ID:    p.ID,
			Name:  p.Name,
			Title: p.DisplayTitle(),
			Tags:  p.Tags.String(),
			Start: start != nil && start.ID == p.ID,
		})
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(infos)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%d passages)\n", s.Name(), len(infos))
	for _, info := range infos {
		marker := " "
		if info.Start {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-6s %-24s %s\n", marker, info.ID, info.Title, info.Tags)
	}
	return nil
}

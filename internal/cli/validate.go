package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/storyloom/internal/engine"
	"github.com/roach88/storyloom/internal/passage"
	"github.com/roach88/storyloom/internal/player"
	"github.com/roach88/storyloom/internal/story"
)

// Error codes reported by validate.
const (
	ErrCodeConfigParse = "CONFIG_PARSE"
	ErrCodeStoryLoad   = "E_STORY_LOAD"
	ErrCodeBrokenLinks = "E_BROKEN_LINKS"
)

// BrokenLink is a link whose target does not resolve.
type BrokenLink struct {
	Passage string `json:"passage"`
	Text    string `json:"text"`
	Target  string `json:"target"`
	Code    string `json:"code"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool         `json:"valid"`
	Story    string       `json:"story"`
	Start    string       `json:"start"`
	Passages int          `json:"passages"`
	Links    int          `json:"links"`
	Broken   []BrokenLink `json:"broken,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <story.html>",
		Short: "Check a story for parse errors and broken links",
		Long: `Validate a story document without playing it.

Parses every passage header and config passage, checks that the start
passage exists and that every [[link]] resolves to a passage.

Exit codes:
  0 - Story is valid
  1 - Parse errors or broken links
  2 - Command error (file not found, etc.)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	s, err := story.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return WrapExitError(ExitCommandError, "load story", err)
	case passage.IsConfigParseError(err):
		if ferr := formatter.Error(ErrCodeConfigParse, err.Error(), nil); ferr != nil {
			return ferr
		}
		return NewExitError(ExitFailure, "story has parse errors")
	case err != nil:
		if ferr := formatter.Error(ErrCodeStoryLoad, err.Error(), nil); ferr != nil {
			return ferr
		}
		return NewExitError(ExitFailure, "story could not be loaded")
	}

	result, err := checkLinks(cmd.Context(), s)
	if err != nil {
		return err
	}
	formatter.VerboseLog("Checked %d link(s) in %d passage(s)", result.Links, result.Passages)

	if !result.Valid {
		if opts.Format != "json" {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✗ %s: %d broken link(s)\n", result.Story, len(result.Broken))
			for _, b := range result.Broken {
				fmt.Fprintf(w, "  %s -> %q (%s)\n", b.Passage, b.Target, b.Code)
			}
		}
		return formatter.Failure(ErrCodeBrokenLinks, fmt.Sprintf("%d broken link(s)", len(result.Broken)), result)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("✓ %s: %d passages, %d links", result.Story, result.Passages, result.Links))
}

// checkLinks resolves the start passage and every link target.
func checkLinks(ctx context.Context, s *story.Story) (ValidationResult, error) {
	result := ValidationResult{
		Story:    s.Name(),
		Start:    s.StartPassage(),
		Passages: s.Passages().Len(),
	}

	check := func(from, text, target string) error {
		_, ok, err := s.Lookup(ctx, target)
		if err != nil {
			return err
		}
		if !ok {
			nf := engine.NewPassageNotFound(target)
			result.Broken = append(result.Broken, BrokenLink{
				Passage: from,
				Text:    text,
				Target:  target,
				Code:    string(nf.Code),
			})
		}
		return nil
	}

	if err := check("(start)", "", s.StartPassage()); err != nil {
		return result, err
	}
	for _, p := range s.Passages().All() {
		for _, l := range player.ParseLinks(p.Text) {
			result.Links++
			if err := check(p.DisplayTitle(), l.Text, l.Target); err != nil {
				return result, err
			}
		}
	}

	result.Valid = len(result.Broken) == 0
	return result, nil
}

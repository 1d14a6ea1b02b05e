// Package player is a line-oriented terminal front end. It renders on
// PassageShown and turns typed commands into engine operations.
package player

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/roach88/storyloom/internal/engine"
	"github.com/roach88/storyloom/internal/session"
	"github.com/roach88/storyloom/internal/state"
)

// RebuildFunc builds a fresh engine after the story file changed. prev is the
// state of the engine being replaced.
type RebuildFunc func(ctx context.Context, prev *state.State) (*engine.Engine, error)

// Player runs an interactive session against an engine.
type Player struct {
	engine *engine.Engine
	in     io.Reader
	out    io.Writer
	styles Styles

	links  []Link
	detach []func()

	changes <-chan string
	rebuild RebuildFunc
}

// Option configures a Player.
type Option func(*Player)

// WithStyles sets the text styles. Default: NewStyles(false, 0).
func WithStyles(s Styles) Option {
	return func(p *Player) { p.styles = s }
}

// WithReload rebuilds the engine whenever changes delivers, carrying the
// session over through Snapshot and Restore.
func WithReload(changes <-chan string, rebuild RebuildFunc) Option {
	return func(p *Player) {
		p.changes = changes
		p.rebuild = rebuild
	}
}

// New creates a player reading commands from in and writing to out.
func New(e *engine.Engine, in io.Reader, out io.Writer, opts ...Option) *Player {
	p := &Player{in: in, out: out, styles: NewStyles(false, 0)}
	for _, opt := range opts {
		opt(p)
	}
	p.attach(e)
	return p
}

// Engine returns the engine currently driven by the player.
func (p *Player) Engine() *engine.Engine { return p.engine }

func (p *Player) attach(e *engine.Engine) {
	for _, fn := range p.detach {
		fn()
	}
	p.engine = e
	p.detach = []func(){
		e.Events().Shown.Subscribe(p.onShown),
	}
}

func (p *Player) onShown(ev engine.PassageShown) {
	title, err := ev.Passage.RenderTitle(ev.State)
	if err != nil {
		slog.Warn("title render failed", "passage", ev.Passage.ID, "error", err)
		title = ev.Passage.DisplayTitle()
	}

	body, err := ev.Engine.Render(context.Background(), ev.Passage.ID)
	if err != nil {
		p.printError(err)
		return
	}
	text, links := Annotate(strings.TrimSpace(body))
	p.links = links

	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.styles.Title.Render(title))
	fmt.Fprintln(p.out)
	if text != "" {
		fmt.Fprintln(p.out, p.styles.Body.Render(text))
		fmt.Fprintln(p.out)
	}
	if len(links) == 0 {
		fmt.Fprintln(p.out, p.styles.Muted.Render("(no choices; type restart or quit)"))
		return
	}
	for i, l := range links {
		fmt.Fprintf(p.out, "  %s %s\n", p.styles.Choice.Render(fmt.Sprintf("[%d]", i+1)), l.Text)
	}
}

// Run starts the story with query and processes commands until quit, end of
// input or ctx is done.
func (p *Player) Run(ctx context.Context, query url.Values) error {
	if err := p.engine.Start(ctx, query); err != nil {
		return fmt.Errorf("start story: %w", err)
	}

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines := p.readLines(readCtx)

	for {
		fmt.Fprint(p.out, "> ")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path := <-p.changes:
			p.reload(ctx, path)
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(p.out)
				return nil
			}
			if quit := p.Exec(ctx, line); quit {
				return nil
			}
		}
	}
}

// readLines scans input lines until ctx is done or input ends, then closes
// the returned channel. A read already blocked on input finishes first.
func (p *Player) readLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(p.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// Exec runs one command line. It reports whether the player should stop.
func (p *Player) Exec(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	arg := strings.Join(args, " ")

	var err error
	switch cmd {
	case "quit", "exit", "q":
		return true
	case "back", "b":
		err = p.engine.PopHistory(ctx)
	case "restart":
		err = p.engine.Reset(ctx)
	case "go":
		err = p.engine.Show(ctx, arg, nil)
	case "save":
		err = p.save(ctx, arg)
	case "load":
		err = p.load(ctx, arg)
	case "saves":
		err = p.listSaves(ctx)
	case "history":
		p.printHistory()
	case "help", "?":
		p.printHelp()
	default:
		n, convErr := strconv.Atoi(cmd)
		if convErr != nil || n < 1 || n > len(p.links) {
			p.printError(fmt.Errorf("unknown command %q (type help)", line))
			return false
		}
		link := p.links[n-1]
		err = p.engine.Show(ctx, link.Target, map[string]any{"link": link.Text})
	}

	if err != nil {
		p.printError(err)
	}
	return false
}

func (p *Player) save(ctx context.Context, slot string) error {
	if slot == "" {
		slot = session.DefaultSlot
	}
	if err := p.engine.Save(ctx, slot); err != nil {
		return err
	}
	fmt.Fprintln(p.out, p.styles.Muted.Render("saved to "+slot))
	return nil
}

func (p *Player) load(ctx context.Context, slot string) error {
	if slot == "" {
		slot = session.DefaultSlot
	}
	ok, err := p.engine.TryLoad(ctx, slot)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(p.out, p.styles.Muted.Render("no save in "+slot))
	}
	return nil
}

func (p *Player) listSaves(ctx context.Context) error {
	slots, err := p.engine.Saves(ctx)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintln(p.out, p.styles.Muted.Render("no saves"))
		return nil
	}
	for _, s := range slots {
		fmt.Fprintln(p.out, "  "+s)
	}
	return nil
}

func (p *Player) printHistory() {
	h := p.engine.History()
	if len(h) == 0 {
		fmt.Fprintln(p.out, p.styles.Muted.Render("history is empty"))
		return
	}
	cp := p.engine.LastCheckpointIndex()
	for i, s := range h {
		marker := " "
		if i == cp {
			marker = "*"
		}
		if s == nil {
			fmt.Fprintf(p.out, " %s %d  %s\n", marker, i, p.styles.Muted.Render("(transient)"))
			continue
		}
		fmt.Fprintf(p.out, " %s %d  %s\n", marker, i, s.Passage)
	}
}

func (p *Player) printHelp() {
	fmt.Fprintln(p.out, `commands:
  <n>           follow choice n
  go <passage>  jump to a passage by id or title
  back          rewind to the last checkpoint
  restart       start over (globals are kept)
  save [slot]   save the session
  load [slot]   restore a saved session
  saves         list save slots
  history       show the history stack
  quit          leave`)
}

func (p *Player) printError(err error) {
	fmt.Fprintln(p.out, p.styles.Error.Render("error: "+err.Error()))
}

func (p *Player) reload(ctx context.Context, path string) {
	if p.rebuild == nil {
		return
	}
	rec, err := p.engine.Snapshot()
	if err != nil {
		p.printError(err)
		return
	}
	next, err := p.rebuild(ctx, p.engine.State())
	if err != nil {
		p.printError(fmt.Errorf("reload %s: %w", path, err))
		return
	}

	prev := p.engine
	p.attach(next)
	fmt.Fprintln(p.out, p.styles.Muted.Render("story reloaded"))
	if err := next.Restore(ctx, rec); err != nil {
		p.printError(fmt.Errorf("reload %s: %w", path, err))
		p.attach(prev)
		return
	}
	slog.Info("story reloaded", "path", path, "passage", rec.PassageName)
}

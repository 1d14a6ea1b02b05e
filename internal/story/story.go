package story

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/roach88/storyloom/internal/passage"
)

// Reserved tag names.
const (
	TagConfig = "config"
	TagStyle  = "style"
	TagScript = "script"
	TagLayout = "layout"
)

// storyNamespace seeds derived story ids when a document has no IFID.
var storyNamespace = uuid.MustParse("6d2c4a0e-9b1f-5c3e-8a7d-2f4e6b8c0d1a")

// Info holds the attributes of the <tw-storydata> element.
type Info struct {
	Name           string `json:"name"`
	IFID           string `json:"ifid,omitempty"`
	StartNode      string `json:"startnode"`
	Creator        string `json:"creator,omitempty"`
	CreatorVersion string `json:"creator_version,omitempty"`
	Format         string `json:"format,omitempty"`
	FormatVersion  string `json:"format_version,omitempty"`
}

// Block is a user script or stylesheet.
type Block struct {
	Source   string // passage name, or "" for document-level blocks
	Priority float64
	Text     string
}

// Story is a loaded document. It is immutable once built.
type Story struct {
	info     Info
	passages *passage.Repository
	config   map[string]any
	scripts  []Block
	styles   []Block
	layout   string
}

// New builds a story from already-extracted records. Records carrying a
// reserved tag are routed; the rest become passages.
func New(info Info, records []passage.RawRecord, opts ...passage.ParseOption) (*Story, error) {
	return build(info, records, nil, nil, opts)
}

func build(info Info, records []passage.RawRecord, scripts, styles []Block, opts []passage.ParseOption) (*Story, error) {
	s := &Story{
		info:    info,
		config:  map[string]any{},
		scripts: scripts,
		styles:  styles,
	}

	navigable := make([]passage.RawRecord, 0, len(records))
	for _, rec := range records {
		tags := passage.ParseTags(rec.Tags)
		label := rec.Name
		if label == "" {
			label = rec.ID
		}

		switch {
		case tags.Has(TagConfig):
			tag, _ := tags.Get(TagConfig)
			cfg, err := parseConfig(label, tag.Value, html.UnescapeString(rec.Source))
			if err != nil {
				return nil, err
			}
			for k, v := range cfg {
				s.config[k] = v
			}
		case tags.Has(TagStyle):
			s.styles = append(s.styles, Block{
				Source:   label,
				Priority: tags.Priority(TagStyle),
				Text:     html.UnescapeString(rec.Source),
			})
		case tags.Has(TagScript):
			s.scripts = append(s.scripts, Block{
				Source:   label,
				Priority: tags.Priority(TagScript),
				Text:     html.UnescapeString(rec.Source),
			})
		case tags.Has(TagLayout):
			s.layout = html.UnescapeString(rec.Source)
		default:
			navigable = append(navigable, rec)
		}
	}

	if err := validateConfig(s.config); err != nil {
		return nil, err
	}

	sortBlocks(s.scripts)
	sortBlocks(s.styles)

	repo, err := passage.Load(navigable, opts...)
	if err != nil {
		return nil, err
	}
	s.passages = repo
	return s, nil
}

func sortBlocks(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Priority < blocks[j].Priority })
}

// Load reads and parses a story document from disk.
func Load(path string, opts ...passage.ParseOption) (*Story, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open story: %w", err)
	}
	defer f.Close()

	s, err := Parse(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// Info returns the document attributes.
func (s *Story) Info() Info { return s.info }

// Name returns the story name.
func (s *Story) Name() string { return s.info.Name }

// ID returns the IFID, or a stable id derived from the story name when the
// document has none.
func (s *Story) ID() string {
	if s.info.IFID != "" {
		return s.info.IFID
	}
	return uuid.NewSHA1(storyNamespace, []byte(s.info.Name)).String()
}

// StartPassage returns the configured startingPassage, falling back to the
// document's startnode.
func (s *Story) StartPassage() string {
	if start, ok := s.config["startingPassage"].(string); ok && start != "" {
		return start
	}
	return s.info.StartNode
}

// Config returns the merged story configuration. Callers must not mutate it.
func (s *Story) Config() map[string]any { return s.config }

// Passages returns the navigable passages.
func (s *Story) Passages() *passage.Repository { return s.passages }

// Lookup resolves a passage by id or title. A missing passage is reported as
// (nil, false, nil).
func (s *Story) Lookup(ctx context.Context, idOrName string) (*passage.Passage, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	p, ok := s.passages.Get(idOrName)
	return p, ok, nil
}

// Scripts returns user scripts in execution order.
func (s *Story) Scripts() []Block { return append([]Block(nil), s.scripts...) }

// Styles returns stylesheets in application order.
func (s *Story) Styles() []Block { return append([]Block(nil), s.styles...) }

// Layout returns the layout passage text, or "" when there is none.
func (s *Story) Layout() string { return s.layout }

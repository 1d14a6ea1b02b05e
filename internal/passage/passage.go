package passage

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"

	"github.com/roach88/storyloom/internal/state"
)

// UnnamedTitle is used when a record has neither a header title nor a name.
const UnnamedTitle = "[unnamed]"

// FallbackID is used when neither the header nor the record supplies an id.
const FallbackID = "1"

// RawRecord is a passage as it appears in the source document.
type RawRecord struct {
	ID     string
	Name   string
	Tags   string
	Source string // HTML-escaped
}

// Passage is a parsed unit of narrative content. Passages are immutable after
// Parse returns; the repository that loaded them owns them.
type Passage struct {
	ID    string
	Name  string
	Title Title
	Tags  Tags

	// Meta is the decoded metadata header, empty when there was none.
	Meta map[string]any

	// Text is the template body with the header stripped.
	Text string

	// Source is the unescaped source. Only kept when Parse is asked to.
	Source string
}

// ParseOption configures Parse.
type ParseOption func(*parseConfig)

type parseConfig struct {
	preserveSource bool
}

// PreserveSource keeps the unescaped source on the passage.
func PreserveSource() ParseOption {
	return func(c *parseConfig) { c.preserveSource = true }
}

// Parse builds a Passage from a raw record.
func Parse(rec RawRecord, opts ...ParseOption) (*Passage, error) {
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	source := html.UnescapeString(rec.Source)
	header, body := SplitHeader(source)

	label := rec.ID
	if label == "" {
		label = rec.Name
	}

	meta := map[string]any{}
	if header != "" {
		parsed, err := ParseObject(label+".header", header)
		if err != nil {
			return nil, &ParseError{Passage: label, Field: "header", Err: err}
		}
		meta = parsed
	}

	p := &Passage{
		Name: rec.Name,
		Meta: meta,
		Text: body,
		Tags: ParseTags(rec.Tags),
	}
	if cfg.preserveSource {
		p.Source = source
	}

	if name, ok := meta["name"].(string); ok {
		p.Name = name
	}

	switch {
	case scalarString(meta["id"]) != "":
		p.ID = scalarString(meta["id"])
	case rec.ID != "":
		p.ID = rec.ID
	default:
		p.ID = FallbackID
	}

	title, err := titleFromMeta(meta["title"], rec.Name)
	if err != nil {
		return nil, &ParseError{Passage: label, Field: "title", Err: err}
	}
	p.Title = title

	tagsFromMeta(meta["tags"], p.Tags)

	return p, nil
}

func titleFromMeta(raw any, name string) (Title, error) {
	switch v := raw.(type) {
	case map[string]any:
		if code, ok := v["lua"].(string); ok {
			fn, err := LuaTitle(code)
			if err != nil {
				return nil, err
			}
			return fn, nil
		}
	case string:
		return Literal(v), nil
	}
	if name != "" {
		return Literal(name), nil
	}
	return Literal(UnnamedTitle), nil
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// RenderTitle resolves the title against the given state.
func (p *Passage) RenderTitle(st *state.State) (string, error) {
	if p.Title == nil {
		return p.Name, nil
	}
	return p.Title.render(p, st)
}

// DisplayTitle is the title used for lookup: the literal title, or the name
// when the title is computed.
func (p *Passage) DisplayTitle() string {
	if lit, ok := p.Title.(Literal); ok {
		return string(lit)
	}
	return p.Name
}

// HasTag reports whether the passage carries the tag.
func (p *Passage) HasTag(name string) bool { return p.Tags.Has(name) }

// String implements fmt.Stringer.
func (p *Passage) String() string {
	return fmt.Sprintf("%s (%s)", p.ID, p.DisplayTitle())
}

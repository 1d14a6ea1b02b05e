package story

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"

	"github.com/roach88/storyloom/internal/passage"
)

// configSchema constrains the known story configuration keys. Unknown keys
// are allowed.
const configSchema = `
#Config: {
	startingPassage?: string
	globals?: [...string]
	stateVar?:   string
	tempVar?:    string
	layoutHtml?: string
	useLoDash?:  bool | string
	useJQuery?:  bool | string
	MaxHistory?: bool
	...
}
`

// FormatTOML selects TOML parsing for a config passage (tag "config=toml").
const FormatTOML = "toml"

func parseConfig(label, format, src string) (map[string]any, error) {
	switch format {
	case FormatTOML:
		var cfg map[string]any
		if err := toml.Unmarshal([]byte(src), &cfg); err != nil {
			return nil, &passage.ParseError{Passage: label, Field: "config", Err: err}
		}
		if cfg == nil {
			cfg = map[string]any{}
		}
		return cfg, nil
	default:
		cfg, err := passage.ParseObject(label+".config", src)
		if err != nil {
			return nil, &passage.ParseError{Passage: label, Field: "config", Err: err}
		}
		return cfg, nil
	}
}

// validateConfig checks the merged configuration against configSchema.
func validateConfig(cfg map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(configSchema, cue.Filename("config.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := ctx.Encode(cfg)
	if err := v.Err(); err != nil {
		return &passage.ParseError{Field: "config", Err: err}
	}
	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &passage.ParseError{Field: "config", Err: err}
	}
	return nil
}

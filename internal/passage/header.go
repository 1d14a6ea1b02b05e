package passage

import (
	"fmt"
	"regexp"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// headerPattern matches an optional leading "#!{...}!#" block. The object ends
// at the first "}!#".
var headerPattern = regexp.MustCompile(`(?s)^(\s*#!(\{.*?\})!#)?(.*)$`)

// SplitHeader separates the metadata header from the passage body. header is
// empty when the source has none.
func SplitHeader(source string) (header, body string) {
	m := headerPattern.FindStringSubmatch(source)
	if m == nil {
		return "", source
	}
	return m[2], m[3]
}

// ParseObject parses a CUE or JSON object literal into a plain map. Integers
// decode as int, bytes literals as string.
func ParseObject(filename, src string) (map[string]any, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, err
	}
	if k := v.Kind(); k != cue.StructKind {
		return nil, fmt.Errorf("expected an object, got %s", k)
	}

	var decoded any
	if err := v.Decode(&decoded); err != nil {
		return nil, err
	}
	obj, ok := normalizeDecoded(decoded).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %T", decoded)
	}
	return obj, nil
}

func normalizeDecoded(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, e := range val {
			val[k] = normalizeDecoded(e)
		}
		return val
	case []any:
		for i, e := range val {
			val[i] = normalizeDecoded(e)
		}
		return val
	case []byte:
		return string(val)
	default:
		return val
	}
}

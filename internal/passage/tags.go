package passage

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Tag is a passage tag value: either a bare flag or a string value.
type Tag struct {
	Value string
	Flag  bool
}

// Tags maps tag names to values.
type Tags map[string]Tag

// ParseTags parses a space-delimited tag attribute. "key=value" pairs carry a
// string value, anything else is a bare flag.
func ParseTags(s string) Tags {
	tags := Tags{}
	for _, field := range strings.Fields(s) {
		if eq := strings.IndexByte(field, '='); eq > 0 {
			tags[field[:eq]] = Tag{Value: field[eq+1:]}
			continue
		}
		tags[field] = Tag{Flag: true}
	}
	return tags
}

// tagsFromMeta converts a header "tags" object. true becomes a flag, false
// removes the tag, strings are kept and other scalars are formatted.
func tagsFromMeta(raw any, into Tags) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return
	}
	for k, v := range obj {
		switch val := v.(type) {
		case bool:
			if val {
				into[k] = Tag{Flag: true}
			} else {
				delete(into, k)
			}
		case string:
			into[k] = Tag{Value: val}
		case nil:
			delete(into, k)
		default:
			into[k] = Tag{Value: fmt.Sprint(val)}
		}
	}
}

// Has reports whether the tag is present.
func (t Tags) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// Get returns the tag and whether it exists.
func (t Tags) Get(name string) (Tag, bool) {
	tag, ok := t[name]
	return tag, ok
}

// Priority reads a tag value as a number. Bare flags, missing tags and
// non-numeric values are 0.
func (t Tags) Priority(name string) float64 {
	tag, ok := t[name]
	if !ok || tag.Flag {
		return 0
	}
	f, err := strconv.ParseFloat(tag.Value, 64)
	if err != nil {
		return 0
	}
	return f
}

// String renders the tags in attribute form with names sorted.
func (t Tags) String() string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		tag := t[name]
		if tag.Flag {
			parts = append(parts, name)
			continue
		}
		parts = append(parts, name+"="+tag.Value)
	}
	return strings.Join(parts, " ")
}

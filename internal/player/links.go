package player

import (
	"regexp"
	"strings"
)

var linkPattern = regexp.MustCompile(`\[\[(.+?)\]\]`)

// Link is a choice extracted from passage text.
type Link struct {
	Text   string
	Target string
}

// parseLink splits the inside of a [[...]] link. Supported forms are
// "display|target", "display->target", "target<-display" and "target".
func parseLink(inner string) Link {
	if i := strings.LastIndex(inner, "|"); i >= 0 {
		return Link{Text: strings.TrimSpace(inner[:i]), Target: strings.TrimSpace(inner[i+1:])}
	}
	if i := strings.LastIndex(inner, "->"); i >= 0 {
		return Link{Text: strings.TrimSpace(inner[:i]), Target: strings.TrimSpace(inner[i+2:])}
	}
	if i := strings.Index(inner, "<-"); i >= 0 {
		return Link{Text: strings.TrimSpace(inner[i+2:]), Target: strings.TrimSpace(inner[:i])}
	}
	s := strings.TrimSpace(inner)
	return Link{Text: s, Target: s}
}

// ParseLinks returns the links in text in order of appearance.
func ParseLinks(text string) []Link {
	matches := linkPattern.FindAllStringSubmatch(text, -1)
	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		links = append(links, parseLink(m[1]))
	}
	return links
}

// Annotate replaces link markup with its display text and returns the links.
func Annotate(text string) (string, []Link) {
	var links []Link
	out := linkPattern.ReplaceAllStringFunc(text, func(m string) string {
		l := parseLink(m[2 : len(m)-2])
		links = append(links, l)
		return l.Text
	})
	return out, links
}

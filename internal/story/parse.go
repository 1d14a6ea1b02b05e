package story

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/roach88/storyloom/internal/passage"
)

// ErrNoStoryData is returned when a document has no <tw-storydata> element.
var ErrNoStoryData = errors.New("no tw-storydata element")

const (
	elemStoryData   = "tw-storydata"
	elemPassageData = "tw-passagedata"
	scriptType      = "text/twine-javascript"
	styleType       = "text/twine-css"
)

// Parse reads a story document. Passage bodies are passed on still escaped;
// the passage package unescapes them once.
func Parse(r io.Reader, opts ...passage.ParseOption) (*Story, error) {
	z := html.NewTokenizer(r)

	var (
		info    Info
		found   bool
		records []passage.RawRecord
		scripts []Block
		styles  []Block
	)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("tokenize story: %w", err)
			}
			if !found {
				return nil, ErrNoStoryData
			}
			return build(info, records, scripts, styles, opts)

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			attrs := readAttrs(z, hasAttr)

			switch string(name) {
			case elemStoryData:
				found = true
				info = Info{
					Name:           attrs["name"],
					IFID:           attrs["ifid"],
					StartNode:      attrs["startnode"],
					Creator:        attrs["creator"],
					CreatorVersion: attrs["creator-version"],
					Format:         attrs["format"],
					FormatVersion:  attrs["format-version"],
				}
			case elemPassageData:
				rec := passage.RawRecord{
					ID:   attrs["pid"],
					Name: attrs["name"],
					Tags: attrs["tags"],
				}
				if tt == html.StartTagToken {
					body, err := rawUntilEnd(z, elemPassageData)
					if err != nil {
						return nil, err
					}
					rec.Source = body
				}
				records = append(records, rec)
			case "script":
				if attrs["type"] == scriptType && tt == html.StartTagToken {
					scripts = append(scripts, Block{Text: textUntilEnd(z, "script")})
				}
			case "style":
				if attrs["type"] == styleType && tt == html.StartTagToken {
					styles = append(styles, Block{Text: textUntilEnd(z, "style")})
				}
			}
		}
	}
}

func readAttrs(z *html.Tokenizer, more bool) map[string]string {
	attrs := map[string]string{}
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		attrs[string(key)] = string(val)
	}
	return attrs
}

// rawUntilEnd collects the raw bytes of every token up to the closing tag.
func rawUntilEnd(z *html.Tokenizer, tag string) (string, error) {
	var buf bytes.Buffer
	depth := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return "", fmt.Errorf("unterminated <%s>", tag)
			}
			return "", fmt.Errorf("tokenize story: %w", z.Err())
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == tag {
				depth++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == tag {
				if depth == 0 {
					return buf.String(), nil
				}
				depth--
			}
		}
		buf.Write(z.Raw())
	}
}

// textUntilEnd reads the content of a raw-text element such as <script>.
func textUntilEnd(z *html.Tokenizer, tag string) string {
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == tag {
				return sb.String()
			}
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}

package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLinks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Link
	}{
		{"simple", "Go [[North]].", []Link{{Text: "North", Target: "North"}}},
		{"pipe", "[[Open the door|Hall]]", []Link{{Text: "Open the door", Target: "Hall"}}},
		{"arrow", "[[Leave->Outside]]", []Link{{Text: "Leave", Target: "Outside"}}},
		{"reverse arrow", "[[Outside<-Leave]]", []Link{{Text: "Leave", Target: "Outside"}}},
		{"several", "[[a]] or [[b|c]]", []Link{{Text: "a", Target: "a"}, {Text: "b", Target: "c"}}},
		{"none", "no links here", []Link{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLinks(tt.text))
		})
	}
}

func TestAnnotate(t *testing.T) {
	text, links := Annotate("You can [[run|Escape]] or [[Hide]].")
	assert.Equal(t, "You can run or Hide.", text)
	assert.Equal(t, []Link{{Text: "run", Target: "Escape"}, {Text: "Hide", Target: "Hide"}}, links)
}

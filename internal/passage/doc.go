// Package passage parses raw passage records into the structured passage
// model and provides id-or-title lookup over a loaded set.
//
// A raw record carries an id, a display name, a space-delimited tag string
// and HTML-escaped source. Loading unescapes the source once, splits off an
// optional metadata header of the form
//
//	#!{ title: "Forest", tags: {dark: true} }!#
//
// and parses the header as a structured object. Headers are CUE, which accepts
// JSON as well as object literals with unquoted keys. A header that does not
// parse is a fatal load error.
//
// A title is either a Literal or a Computed function of the passage and the
// current story state. Headers declare computed titles with a Lua snippet:
//
//	#!{ title: {lua: "'Room ' .. s.room"} }!#
package passage

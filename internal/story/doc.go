// Package story loads a compiled story document.
//
// A document is an HTML file holding one <tw-storydata> element whose
// <tw-passagedata> children are the passages. Passages tagged with a
// reserved tag are routed away from the navigable set:
//
//	config   merged into the story configuration (CUE/JSON, or TOML with config=toml)
//	style    collected as a stylesheet, ordered by numeric tag value
//	script   collected as a user script, ordered by numeric tag value
//	layout   the last one becomes the page layout
//
// Everything else is parsed with the passage package and served through
// Lookup.
package story

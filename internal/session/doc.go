// Package session defines the persisted form of a story session: history
// snapshots, the save record, its compact text encoding and the key-value
// store contract save slots are written to.
//
// A save record is JSON packed with LZ-string's UTF-16 encoding, the same
// form browser story formats write to localStorage. Records are stored under "save_<story id>_<slot>".
package session

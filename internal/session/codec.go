package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	lzstring "github.com/daku10/go-lz-string"
)

// ErrCorrupt is returned when an encoded record cannot be decoded.
var ErrCorrupt = errors.New("corrupt save record")

// Encode serializes rec as JSON packed with LZ-string's UTF-16 variant.
func Encode(rec Record) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	packed, err := lzstring.CompressToUTF16(string(raw))
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(utf16.Decode(packed)), nil
}

// Decode parses the text form produced by Encode. Plain JSON records are
// accepted as well. Every failure wraps ErrCorrupt.
func Decode(s string) (Record, error) {
	raw, unpackErr := unpack(s)
	if unpackErr != nil || !json.Valid([]byte(raw)) {
		if !strings.HasPrefix(strings.TrimSpace(s), "{") {
			if unpackErr == nil {
				unpackErr = errors.New("unrecognized encoding")
			}
			return Record{}, fmt.Errorf("%w: %v", ErrCorrupt, unpackErr)
		}
		raw = s
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, fmt.Errorf("%w: json: %v", ErrCorrupt, err)
	}
	if rec.PassageName == "" {
		return Record{}, fmt.Errorf("%w: missing passage name", ErrCorrupt)
	}
	return rec, nil
}

// unpack decompresses s. Malformed input may panic inside the decompressor;
// that is reported as an error.
func unpack(s string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decompress: %v", r)
		}
	}()
	out, err = lzstring.DecompressFromUTF16(utf16.Encode([]rune(s)))
	if err != nil {
		return "", fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}

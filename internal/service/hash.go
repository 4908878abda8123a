package service

import (
	"fmt"
	"unicode/utf16"
)

// hashEventKey derives the stable reminder id from the event's identity
// string. The fold is 31·acc + code unit with 32-bit wraparound over UTF-16
// code units, kept bit-compatible with the ids already persisted by the
// browser extension so repeated imports dedup against old data.
func hashEventKey(value string) string {
	var hash int32
	for _, unit := range utf16.Encode([]rune(value)) {
		hash = 31*hash + int32(unit)
	}
	n := int64(hash)
	if n < 0 {
		n = -n
	}
	return fmt.Sprintf("rem-%d", n)
}

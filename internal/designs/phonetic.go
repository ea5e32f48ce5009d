package designs

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// phoneticFloor is the minimum Jaro-Winkler score for a phonetic match to
// be ranked ahead of plain string similarity.
const phoneticFloor = 0.70

// soundsAlike reports whether any word of a shares a Double Metaphone code
// with any word of b. Case is ignored.
func soundsAlike(a, b string) bool {
	codes := metaphoneCodes(a)
	if len(codes) == 0 {
		return false
	}
	for c := range metaphoneCodes(b) {
		if _, ok := codes[c]; ok {
			return true
		}
	}
	return false
}

// metaphoneCodes returns the primary and alternate codes of every word in s.
// Words without consonants yield no code.
func metaphoneCodes(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	codes := make(map[string]struct{}, len(words)*2)
	for _, w := range words {
		p, alt := matchr.DoubleMetaphone(w)
		if p != "" {
			codes[p] = struct{}{}
		}
		if alt != "" {
			codes[alt] = struct{}{}
		}
	}
	return codes
}

package congruence

import (
	"strconv"
	"strings"

	"github.com/coregx/congru/presentation"
)

// nonTrivialMaxWordLen bounds the breadth-first word enumeration
// NonTrivialClasses samples from. Exhaustively enumerating every word in a
// class is impossible in general (most classes are countably infinite), so
// this picks a small, fixed depth a reader can reason about by hand.
const nonTrivialMaxWordLen = 4

// bfsWords returns every word of length 0 up to maxLen (inclusive) over an
// alphabet of the given size, shortest first.
func bfsWords(alphabetSize, maxLen int) []presentation.Word {
	words := []presentation.Word{{}}
	frontier := []presentation.Word{{}}
	for length := 0; length < maxLen; length++ {
		var next []presentation.Word
		for _, w := range frontier {
			for a := 0; a < alphabetSize; a++ {
				nw := w.Append(presentation.Word{presentation.Letter(a)})
				next = append(next, nw)
				words = append(words, nw)
			}
		}
		frontier = next
	}
	return words
}

// groupByKey buckets words by key(w), dropping buckets with only one member
// and any word whose key lookup reports false.
func groupByKey[K comparable](words []presentation.Word, key func(presentation.Word) (K, bool)) [][]presentation.Word {
	groups := make(map[K][]presentation.Word)
	order := make([]K, 0)
	for _, w := range words {
		k, ok := key(w)
		if !ok {
			continue
		}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], w)
	}
	var out [][]presentation.Word
	for _, k := range order {
		if len(groups[k]) > 1 {
			out = append(out, groups[k])
		}
	}
	return out
}

// wordKey renders a word as a grouping key for Knuth-Bendix normal forms,
// which have no class index of their own to compare by.
func wordKey(w presentation.Word) string {
	var b strings.Builder
	for i, a := range w {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	return b.String()
}

// Package phrase provides a deterministic question text normalizer
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKD normalization
// 3 Case folding
// 4 Remove zero-width and combining marks
// 5 Width fold fullwidth to ASCII
// 6 Punctuation fold keep slashes and hyphens (season tokens), apostrophes
//   fold to spaces so possessives match their base entity

// 7 Collapse whitespace to single spaces and trim
package phrase

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks (NFKD exposes them)
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
		)
	},
}

// Normalize returns the normalized form of s following the pipeline described above
// same input always yields the same output, no hidden randomness
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	// 1 repair UTF-8 drop invalid bytes
	s = strings.ToValidUTF8(s, "")

	// 2-5 transform via pooled chain then reset and return it
	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err == nil {
		s = ns
	}

	// 6 fold punctuation to spaces, keeping the runes season tokens
	// depend on (2019/20, 2019-2020); "the 2s'" becomes "the 2s"
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '/' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	// 7 collapse whitespace
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens splits a normalized string into its space separated tokens
func Tokens(s string) []string { return strings.Fields(s) }

// WordIndex returns the byte offset of the first token-boundary
// occurrence of word in text, or -1; both arguments are expected to be
// normalized already
func WordIndex(text, word string) int {
	if word == "" {
		return -1
	}
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return -1
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || text[start-1] == ' '
		afterOK := end == len(text) || text[end] == ' '
		if beforeOK && afterOK {
			return start
		}
		idx = start + 1
	}
}

// BlankSpan replaces every token-boundary occurrence of word in text
// with spaces, preserving the offsets of everything around it so later
// scans cannot re-match inside an already claimed span
func BlankSpan(text, word string) string {
	pad := strings.Repeat(" ", len(word))
	for {
		pos := WordIndex(text, word)
		if pos < 0 {
			return text
		}
		text = text[:pos] + pad + text[pos+len(word):]
	}
}

// ContainsWord reports whether text contains word at a token boundary
// both arguments are expected to be normalized already
func ContainsWord(text, word string) bool { return WordIndex(text, word) >= 0 }

// ContainsAny reports whether text contains any of the words at a token boundary
func ContainsAny(text string, words ...string) bool {
	for _, w := range words {
		if ContainsWord(text, w) {
			return true
		}
	}
	return false
}

// Package chunk cuts text into word-bounded pieces so prompts stay within
// a model's budget. Words approximate tokens.
package chunk

import (
	"strings"
	"unicode"
)

const defaultWords = 512

// Chunker cuts text every Words words.
type Chunker struct {
	Words int
}

// New creates a Chunker. A non-positive size means 512 words.
func New(words int) *Chunker {
	if words <= 0 {
		words = defaultWords
	}
	return &Chunker{Words: words}
}

// Chunk splits text into pieces of at most Words words. Each piece is a
// slice of the original text, so line breaks inside it survive; surrounding
// whitespace is trimmed.
func (c *Chunker) Chunk(text string) []string {
	starts := wordStarts(text)
	if len(starts) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(starts); i += c.Words {
		end := len(text)
		if next := i + c.Words; next < len(starts) {
			end = starts[next]
		}
		chunks = append(chunks, strings.TrimSpace(text[starts[i]:end]))
	}
	return chunks
}

// Head returns the first chunk and whether anything was cut off.
func (c *Chunker) Head(text string) (string, bool) {
	starts := wordStarts(text)
	if len(starts) <= c.Words {
		return strings.TrimSpace(text), false
	}
	return strings.TrimSpace(text[starts[0]:starts[c.Words]]), true
}

// wordStarts returns the byte offset of every word in text.
func wordStarts(text string) []int {
	var starts []int
	inWord := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if !space && !inWord {
			starts = append(starts, i)
		}
		inWord = !space
	}
	return starts
}

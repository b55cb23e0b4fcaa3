// Package text provides sentence-aware chunking of long transcripts for
// speech synthesis.
package text

import (
	"strings"
)

const (
	// ShortTextLimit is the length, in characters, at or below which
	// callers should synthesize in a single call instead of chunking.
	// Splicing synthesized audio introduces audible seams, so short
	// inputs skip chunking entirely.
	ShortTextLimit = 5000

	// DefaultChunkSize is the maximum chunk length used when the caller
	// does not specify one.
	DefaultChunkSize = 8000
)

// Chunks splits text into segments of at most maxLen characters, breaking
// at sentence boundaries so that independently synthesized segments sound
// natural when concatenated.
//
// Sentences are delimited by '.', '!' and '?'. Each fragment is re-terminated
// with a period regardless of its original terminator, an accepted
// simplification that preserves prosody breaks. Text with no sentence
// boundaries at all is sliced at fixed maxLen widths to guarantee forward
// progress. The result never contains an empty chunk and never drops input
// content.
func Chunks(text string, maxLen int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxLen <= 0 {
		maxLen = DefaultChunkSize
	}

	sentences, found := splitSentences(text)
	if !found {
		return sliceFixed(text, maxLen)
	}

	var chunks []string
	var buf strings.Builder
	for _, sentence := range sentences {
		candidate := sentence + "."

		// A single sentence longer than the limit cannot be kept whole.
		if runeLen(candidate) > maxLen {
			if buf.Len() > 0 {
				chunks = append(chunks, buf.String())
				buf.Reset()
			}
			chunks = append(chunks, sliceFixed(candidate, maxLen)...)
			continue
		}

		if buf.Len() > 0 && runeLen(buf.String())+1+runeLen(candidate) > maxLen {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(candidate)
	}
	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}

	return chunks
}

// splitSentences splits text at sentence-terminal punctuation. The boolean
// reports whether any terminator was seen; a trailing fragment without a
// terminator is still returned as a sentence.
func splitSentences(text string) ([]string, bool) {
	var sentences []string
	var cur strings.Builder
	found := false

	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			found = true
			if s := strings.TrimSpace(cur.String()); s != "" {
				sentences = append(sentences, s)
			}
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences, found
}

// sliceFixed cuts text into maxLen-rune slices with no regard for word or
// sentence boundaries.
func sliceFixed(text string, maxLen int) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += maxLen {
		end := min(start+maxLen, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}

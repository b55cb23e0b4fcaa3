// Package transcript provides caption extraction and cleanup of raw caption
// markup into prose suitable for speech synthesis.
package transcript

import (
	"regexp"
	"strings"
)

// CleanOptions toggles individual cleanup stages. The zero value disables
// every stage; use DefaultCleanOptions for the standard pipeline.
type CleanOptions struct {
	StripHeaders        bool
	StripTimestamps     bool
	StripTags           bool
	RemoveDuplicates    bool
	NormalizeWhitespace bool
}

// DefaultCleanOptions enables the full cleanup pipeline.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		StripHeaders:        true,
		StripTimestamps:     true,
		StripTags:           true,
		RemoveDuplicates:    true,
		NormalizeWhitespace: true,
	}
}

// minCleanLength guards against the aggressive pipeline producing
// near-empty output for a valid transcript. Results shorter than this fall
// back to a minimal clean of the original input.
const minCleanLength = 10

// maxRepeatPhrase bounds the phrase-collapse pass to keep it conservative.
const maxRepeatPhrase = 8

var (
	// Header/metadata lines appear both on their own line and glued to
	// content depending on the upstream source.
	headerLineRe   = regexp.MustCompile(`(?m)^[ \t]*(WEBVTT.*|Kind:.*|Language:.*)$`)
	headerInlineRe = regexp.MustCompile(`WEBVTT[ \t]*|Kind:[ \t]*[A-Za-z]+[ \t]*|Language:[ \t]*[A-Za-z-]+[ \t]*`)

	inlineTimestampRe = regexp.MustCompile(`<\d{2}:\d{2}:\d{2}[.,]\d{3}>`)
	blockTimingRe     = regexp.MustCompile(`(?m)^[ \t]*\d{2}:\d{2}:\d{2}[.,]\d{3}[ \t]*-->[ \t]*\d{2}:\d{2}:\d{2}[.,]\d{3}.*$`)

	positionAttrRe = regexp.MustCompile(`\b(?:align|position|line|size|vertical):[\w.%-]+`)
	styleTagRe     = regexp.MustCompile(`</?c(?:\.[\w.-]+)?>|</?[biu]>|</?v[^<>]*>|</?lang[^<>]*>|</?ruby>|</?rt>`)

	spaceRunRe         = regexp.MustCompile(`[ \t]+`)
	anyWhitespaceRe    = regexp.MustCompile(`\s+`)
	blankLineRe        = regexp.MustCompile(`\n{2,}`)
	spaceBeforePunctRe = regexp.MustCompile(`[ \t]+([.,!?;:])`)
	punctRunRe         = regexp.MustCompile(`([.!?])[.!?]+`)
)

// Clean normalizes raw caption markup into continuous prose.
//
// The stages run in a fixed order: header strip, timing strip, tag strip,
// duplicate removal, whitespace normalization. Each stage can be skipped
// through opts. Clean is a pure function of its inputs and its output is
// stable under re-application.
func Clean(raw string, opts CleanOptions) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text := raw

	if opts.StripHeaders {
		text = headerLineRe.ReplaceAllString(text, "")
		text = headerInlineRe.ReplaceAllString(text, "")
	}

	if opts.StripTimestamps {
		text = blockTimingRe.ReplaceAllString(text, "")
		text = inlineTimestampRe.ReplaceAllString(text, "")
	}

	if opts.StripTags {
		text = styleTagRe.ReplaceAllString(text, "")
		text = positionAttrRe.ReplaceAllString(text, "")
	}

	if opts.RemoveDuplicates {
		text = removeDuplicateLines(text)
		text = collapseRepeatedPhrases(text)
	}

	if opts.NormalizeWhitespace {
		text = normalizeWhitespace(text)
	}

	result := strings.TrimSpace(text)

	// Safety fallback: a cleaning misfire on a valid transcript must not
	// wipe the content. Return the input after only the minimal strip.
	if len([]rune(result)) < minCleanLength {
		return minimalClean(raw)
	}

	return result
}

// minimalClean strips only timing markers and markup, preserving everything
// else. Used as the fallback when the full pipeline produces a result that
// is suspiciously short.
func minimalClean(raw string) string {
	text := blockTimingRe.ReplaceAllString(raw, "")
	text = inlineTimestampRe.ReplaceAllString(text, "")
	text = styleTagRe.ReplaceAllString(text, "")
	text = anyWhitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// removeDuplicateLines drops exact-duplicate lines, keeping the first
// occurrence in order. Auto-generated captions commonly repeat each cue.
func removeDuplicateLines(text string) string {
	lines := strings.Split(text, "\n")
	seen := make(map[string]bool, len(lines))
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		key := strings.TrimSpace(line)
		if key == "" {
			out = append(out, line)
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// collapseRepeatedPhrases collapses immediately-repeated identical word
// sequences within each line, e.g. "to the to the store" -> "to the store".
// The window is bounded; this is deliberately not a general dedup.
func collapseRepeatedPhrases(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = collapseRepeatsInLine(line)
	}
	return strings.Join(lines, "\n")
}

func collapseRepeatsInLine(line string) string {
	leading := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	words := strings.Fields(line)
	if len(words) < 2 {
		return line
	}

	changed := true
	for changed {
		changed = false
		for n := maxRepeatPhrase; n >= 1; n-- {
			for i := 0; i+2*n <= len(words); i++ {
				if equalWords(words[i:i+n], words[i+n:i+2*n]) {
					words = append(words[:i+n], words[i+2*n:]...)
					changed = true
				}
			}
		}
	}

	return leading + strings.Join(words, " ")
}

func equalWords(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// normalizeWhitespace collapses space runs, trims lines, drops blanks,
// tightens spacing before punctuation, and collapses runs of terminal
// punctuation.
func normalizeWhitespace(text string) string {
	text = spaceRunRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	text = strings.Join(out, "\n")

	text = blankLineRe.ReplaceAllString(text, "\n")
	text = spaceBeforePunctRe.ReplaceAllString(text, "$1")
	text = punctRunRe.ReplaceAllString(text, "$1")

	return text
}

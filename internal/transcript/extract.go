package transcript

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrTranscriptUnavailable reports that no extraction strategy could
// produce a transcript for the requested video.
var ErrTranscriptUnavailable = errors.New("transcript unavailable")

// Source is an extracted transcript with its video title.
type Source struct {
	Title      string
	Transcript string
}

// Extractor fetches a raw transcript for a video URL.
type Extractor interface {
	// Name identifies the strategy in logs and errors.
	Name() string
	// Extract returns the raw (uncleaned) transcript for the video.
	Extract(ctx context.Context, videoURL string) (Source, error)
}

// ChainExtractor tries each strategy in order and returns the first
// successful result. When every strategy fails, the returned error wraps
// ErrTranscriptUnavailable together with each strategy's failure.
type ChainExtractor struct {
	extractors []Extractor
}

// NewChain builds a ChainExtractor over the given strategies, tried in
// the order given.
func NewChain(extractors ...Extractor) *ChainExtractor {
	return &ChainExtractor{extractors: extractors}
}

func (c *ChainExtractor) Name() string { return "chain" }

func (c *ChainExtractor) Extract(ctx context.Context, videoURL string) (Source, error) {
	if len(c.extractors) == 0 {
		return Source{}, ErrTranscriptUnavailable
	}

	errs := make([]error, 0, len(c.extractors)+1)
	for _, ex := range c.extractors {
		if err := ctx.Err(); err != nil {
			return Source{}, err
		}
		src, err := ex.Extract(ctx, videoURL)
		if err == nil && strings.TrimSpace(src.Transcript) != "" {
			return src, nil
		}
		if err == nil {
			err = errors.New("empty transcript")
		}
		errs = append(errs, fmt.Errorf("%s: %w", ex.Name(), err))
	}

	errs = append(errs, ErrTranscriptUnavailable)
	return Source{}, errors.Join(errs...)
}

var videoIDRe = regexp.MustCompile(`^[\w-]{11}$`)

// VideoID extracts the 11-character video identifier from the common
// YouTube URL forms: watch?v=, youtu.be/, /shorts/, /embed/. A bare
// identifier is accepted as-is.
func VideoID(videoURL string) (string, error) {
	raw := strings.TrimSpace(videoURL)
	if videoIDRe.MatchString(raw) {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse video url: %w", err)
	}

	var id string
	switch {
	case strings.HasSuffix(u.Host, "youtu.be"):
		id = strings.Trim(u.Path, "/")
	case strings.Contains(u.Path, "/shorts/"):
		id = strings.Trim(strings.TrimPrefix(u.Path, "/shorts/"), "/")
	case strings.Contains(u.Path, "/embed/"):
		id = strings.Trim(strings.TrimPrefix(u.Path, "/embed/"), "/")
	default:
		id = u.Query().Get("v")
	}

	if !videoIDRe.MatchString(id) {
		return "", fmt.Errorf("no video id in %q", videoURL)
	}
	return id, nil
}

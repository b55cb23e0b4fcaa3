package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	timedtextBaseURL = "https://www.youtube.com/api/timedtext"
	oembedBaseURL    = "https://www.youtube.com/oembed"

	timedtextUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// TimedtextExtractor pulls auto-generated captions straight from the
// public timedtext endpoint. It needs no API key, but the endpoint only
// answers for videos whose captions are publicly served.
type TimedtextExtractor struct {
	client   *http.Client
	baseURL  string
	oembed   string
	language string
}

// NewTimedtextExtractor builds an extractor for the given caption
// language code. An empty language defaults to "en".
func NewTimedtextExtractor(language string) *TimedtextExtractor {
	if language == "" {
		language = "en"
	}
	return &TimedtextExtractor{
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  timedtextBaseURL,
		oembed:   oembedBaseURL,
		language: language,
	}
}

func (t *TimedtextExtractor) Name() string { return "timedtext" }

type timedtextResponse struct {
	Events []timedtextEvent `json:"events"`
}

type timedtextEvent struct {
	Segs []timedtextSegment `json:"segs,omitempty"`
}

type timedtextSegment struct {
	UTF8 string `json:"utf8"`
}

func (t *TimedtextExtractor) Extract(ctx context.Context, videoURL string) (Source, error) {
	id, err := VideoID(videoURL)
	if err != nil {
		return Source{}, err
	}

	params := url.Values{}
	params.Set("v", id)
	params.Set("lang", t.language)
	params.Set("fmt", "json3")

	body, err := t.get(ctx, fmt.Sprintf("%s?%s", t.baseURL, params.Encode()))
	if err != nil {
		return Source{}, err
	}

	text, err := parseTimedtext(body)
	if err != nil {
		return Source{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Source{}, fmt.Errorf("no captions for video %s in language %s", id, t.language)
	}

	return Source{Title: t.fetchTitle(ctx, id), Transcript: text}, nil
}

func (t *TimedtextExtractor) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", timedtextUserAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timedtext request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("captions not found")
	case http.StatusForbidden:
		return nil, fmt.Errorf("access denied: captions disabled or region restricted")
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited")
	default:
		return nil, fmt.Errorf("timedtext returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func parseTimedtext(data []byte) (string, error) {
	var resp timedtextResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("unmarshal timedtext response: %w", err)
	}

	var b strings.Builder
	for _, event := range resp.Events {
		// Wave events carry no segments.
		if len(event.Segs) == 0 {
			continue
		}
		for _, seg := range event.Segs {
			b.WriteString(seg.UTF8)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// fetchTitle asks the oembed endpoint for the video title. Title lookup
// is best-effort; a failure falls back to the video id.
func (t *TimedtextExtractor) fetchTitle(ctx context.Context, id string) string {
	params := url.Values{}
	params.Set("url", "https://www.youtube.com/watch?v="+id)
	params.Set("format", "json")

	body, err := t.get(ctx, fmt.Sprintf("%s?%s", t.oembed, params.Encode()))
	if err != nil {
		log.Debug("Title lookup failed", "video", id, "error", err)
		return id
	}

	var meta struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(body, &meta); err != nil || meta.Title == "" {
		return id
	}
	return meta.Title
}

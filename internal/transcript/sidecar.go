package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SidecarExtractor fetches transcripts from a companion transcript
// service. The service exposes GET {base}/transcript/{videoID} and
// answers with a JSON envelope carrying the transcript text.
type SidecarExtractor struct {
	client  *http.Client
	baseURL string
}

// NewSidecarExtractor builds an extractor against the given service base
// URL, e.g. "http://localhost:8081".
func NewSidecarExtractor(baseURL string) *SidecarExtractor {
	return &SidecarExtractor{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *SidecarExtractor) Name() string { return "sidecar" }

type sidecarResponse struct {
	Success    bool   `json:"success"`
	Transcript string `json:"transcript"`
	VideoID    string `json:"video_id"`
	Title      string `json:"title"`
	Error      string `json:"error"`
}

func (s *SidecarExtractor) Extract(ctx context.Context, videoURL string) (Source, error) {
	id, err := VideoID(videoURL)
	if err != nil {
		return Source{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/transcript/"+id, nil)
	if err != nil {
		return Source{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Source{}, fmt.Errorf("transcript service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Source{}, fmt.Errorf("read transcript service response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Source{}, fmt.Errorf("transcript service returned status %d", resp.StatusCode)
	}

	var payload sidecarResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Source{}, fmt.Errorf("unmarshal transcript service response: %w", err)
	}
	if !payload.Success {
		msg := payload.Error
		if msg == "" {
			msg = "unknown error"
		}
		return Source{}, fmt.Errorf("transcript service: %s", msg)
	}

	title := payload.Title
	if title == "" {
		title = id
	}
	return Source{Title: title, Transcript: payload.Transcript}, nil
}

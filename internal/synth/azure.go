package synth

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	azureEndpointFormat = "https://%s.tts.speech.microsoft.com/cognitiveservices/v1"
	azureOutputFormat   = "audio-16khz-128kbitrate-mono-mp3"
	azureUserAgent      = "narrator"
)

// AzureEngine synthesizes speech through the Azure Cognitive Services
// text-to-speech REST endpoint. Output is MP3.
type AzureEngine struct {
	client   *http.Client
	endpoint string
	key      string
}

// NewAzureEngine builds an engine for the given Azure region and
// subscription key.
func NewAzureEngine(region, key string) (*AzureEngine, error) {
	if region == "" || key == "" {
		return nil, ErrMissingCredentials
	}
	return &AzureEngine{
		client:   &http.Client{Timeout: 60 * time.Second},
		endpoint: fmt.Sprintf(azureEndpointFormat, region),
		key:      key,
	}, nil
}

func (a *AzureEngine) Name() string { return "azure" }

func (a *AzureEngine) Synthesize(ctx context.Context, input string, voice Voice) ([]byte, error) {
	if input == "" {
		return nil, ErrEmptyText
	}

	body := buildSSML(input, voice)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", azureOutputFormat)
	req.Header.Set("User-Agent", azureUserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("azure returned status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read azure response: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("azure returned empty audio")
	}
	return data, nil
}

func buildSSML(input string, voice Voice) []byte {
	locale := voice.Locale
	if locale == "" {
		locale = "en-US"
	}

	var escaped bytes.Buffer
	xml.EscapeText(&escaped, []byte(input))

	var b bytes.Buffer
	fmt.Fprintf(&b, `<speak version='1.0' xml:lang='%s'>`, locale)
	fmt.Fprintf(&b, `<voice xml:lang='%s' name='%s'>`, locale, voice.Name)
	b.Write(escaped.Bytes())
	b.WriteString(`</voice></speak>`)
	return b.Bytes()
}

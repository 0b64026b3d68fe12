package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CredentialHeader carries a caller supplied API key to a narration proxy.
const CredentialHeader = "X-OpenAI-Key"

// HTTP calls a narration proxy (such as the reelcast API's /narration
// route) that answers a JSON {"text": ...} POST with audio bytes.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP returns an HTTP provider posting to url.
func NewHTTP(url string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &HTTP{url: url, client: client}
}

// Synthesize implements Provider.
func (c *HTTP) Synthesize(ctx context.Context, text, credential string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if credential != "" {
		req.Header.Set(CredentialHeader, credential)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("narration http %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !isAudio(ct) {
		return nil, fmt.Errorf("narration: unexpected content type %q", ct)
	}
	return io.ReadAll(res.Body)
}

package narration

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Defaults for the OpenAI speech endpoint.
const (
	DefaultModel  = openai.SpeechModelGPT4oMiniTTS
	DefaultVoice  = "alloy"
	DefaultFormat = string(openai.AudioSpeechNewParamsResponseFormatMP3)
)

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	// APIKey is used when the caller passes no credential.
	APIKey string
	// BaseURL overrides the API endpoint, mostly for tests.
	BaseURL string
	Model   string
	Voice   string
	Format  string
	// MaxRetries is passed to the client; zero disables retries.
	MaxRetries int
	// Timeout bounds one synthesis; zero means no bound.
	Timeout time.Duration
}

// OpenAI synthesizes speech with the OpenAI audio API.
type OpenAI struct {
	cfg OpenAIConfig
}

// NewOpenAI returns an OpenAI provider with defaults filled in.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}
	return &OpenAI{cfg: cfg}
}

// Synthesize implements Provider. A caller credential wins over the
// configured key.
func (p *OpenAI) Synthesize(ctx context.Context, text, credential string) ([]byte, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(credential)
	if key == "" {
		key = strings.TrimSpace(p.cfg.APIKey)
	}
	if key == "" {
		return nil, ErrMissingCredential
	}

	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(p.cfg.MaxRetries),
	}
	if p.cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.cfg.BaseURL))
	}
	if p.cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(p.cfg.Timeout))
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	client := openai.NewClient(opts...)

	res, err := client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(p.cfg.Model),
		Voice:          openai.AudioSpeechNewParamsVoice(p.cfg.Voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormat(p.cfg.Format),
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer res.Body.Close()

	if !isAudio(res.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("openai speech: unexpected content type %q", res.Header.Get("Content-Type"))
	}
	return io.ReadAll(res.Body)
}

package tts

import "fmt"

const (
	ProviderSpeechifyStream = "speechify-stream"
	ProviderSpeechify       = "speechify"
	ProviderOpenAI          = "openai"
)

// New returns the provider named by cfg.Provider.
func New(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderSpeechifyStream, "":
		return NewSpeechifyStream(cfg), nil
	case ProviderSpeechify:
		return NewSpeechify(cfg), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unknown tts provider %q", cfg.Provider)
	}
}

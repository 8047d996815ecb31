package tts

import (
	"context"
	"fmt"
	"time"
)

// Request holds the resolved parameters for one synthesis call.
type Request struct {
	Text    string
	Voice   string
	Speed   float64
	Emotion *float64 // nil when the caller did not send one
	Format  string
}

// Result holds the generated audio.
type Result struct {
	Audio  []byte
	Format string
}

// Provider is one upstream integration. Each provider owns its request
// body shape and knows whether the response is raw or base64 encoded.
type Provider interface {
	Synthesize(ctx context.Context, req Request) (*Result, error)
	DefaultVoice() string
	Name() string
}

// Config holds the settings shared by all providers.
type Config struct {
	Provider string
	APIURL   string
	APIKey   string
	Model    string
	Language string
	Timeout  time.Duration
}

// UpstreamError is any failure talking to the provider or decoding what it
// returned. StatusCode is the provider's status, or 500 when it sent none.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream error (status %d): %s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

const (
	speechifyStreamURL = "https://api.sws.speechify.com/v1/audio/generate"
	speechifySpeechURL = "https://api.sws.speechify.com/v1/audio/speech"
	speechifyVoice     = "jesse"
)

// SpeechifyStream posts plain text with separate voice and speed fields and
// receives raw audio bytes.
type SpeechifyStream struct {
	cfg        Config
	httpClient *http.Client
}

func NewSpeechifyStream(cfg Config) *SpeechifyStream {
	if cfg.APIURL == "" {
		cfg.APIURL = speechifyStreamURL
	}
	return &SpeechifyStream{cfg: cfg, httpClient: newHTTPClient(cfg)}
}

func (s *SpeechifyStream) Name() string         { return ProviderSpeechifyStream }
func (s *SpeechifyStream) DefaultVoice() string { return speechifyVoice }

func (s *SpeechifyStream) Synthesize(ctx context.Context, req Request) (*Result, error) {
	body := map[string]any{
		"text":        req.Text,
		"voice":       req.Voice,
		"speed":       req.Speed,
		"audioFormat": req.Format,
	}

	audio, err := postJSON(ctx, s.httpClient, s.cfg.APIURL, s.cfg.APIKey, body)
	if err != nil {
		return nil, err
	}
	return &Result{Audio: audio, Format: req.Format}, nil
}

// Speechify sends SSML input built from speed and emotion and receives a
// JSON envelope with base64 audio.
type Speechify struct {
	cfg        Config
	httpClient *http.Client
}

func NewSpeechify(cfg Config) *Speechify {
	if cfg.APIURL == "" {
		cfg.APIURL = speechifySpeechURL
	}
	return &Speechify{cfg: cfg, httpClient: newHTTPClient(cfg)}
}

func (s *Speechify) Name() string         { return ProviderSpeechify }
func (s *Speechify) DefaultVoice() string { return speechifyVoice }

func (s *Speechify) Synthesize(ctx context.Context, req Request) (*Result, error) {
	emotion := float64(neutralEmotion)
	if req.Emotion != nil {
		emotion = *req.Emotion
	}

	body := map[string]any{
		"input":        Prosody(req.Text, req.Speed, emotion),
		"voice_id":     req.Voice,
		"audio_format": req.Format,
	}
	if s.cfg.Model != "" {
		body["model"] = s.cfg.Model
	}
	if s.cfg.Language != "" {
		body["language"] = s.cfg.Language
	}

	respBody, err := postJSON(ctx, s.httpClient, s.cfg.APIURL, s.cfg.APIKey, body)
	if err != nil {
		return nil, err
	}

	encoded := gjson.GetBytes(respBody, "audio_data")
	if encoded.Type != gjson.String {
		return nil, decodeError(ErrMissingAudio)
	}
	audio, err := base64.StdEncoding.DecodeString(encoded.Str)
	if err != nil {
		return nil, decodeError(fmt.Errorf("decode audio_data: %w", err))
	}
	return &Result{Audio: audio, Format: req.Format}, nil
}

package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const openAIVoice = "alloy"

// OpenAI synthesizes speech through OpenAI's /audio/speech endpoint, or any
// compatible server at cfg.APIURL. The response body is raw audio.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(cfg Config) *OpenAI {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.APIURL, "/")
	}
	oc.HTTPClient = &capturingDoer{next: newHTTPClient(cfg)}

	model := cfg.Model
	if model == "" {
		model = string(openai.TTSModel1)
	}
	return &OpenAI{client: openai.NewClientWithConfig(oc), model: model}
}

func (o *OpenAI) Name() string         { return ProviderOpenAI }
func (o *OpenAI) DefaultVoice() string { return openAIVoice }

func (o *OpenAI) Synthesize(ctx context.Context, req Request) (*Result, error) {
	failed := &failedResponse{}
	ctx = context.WithValue(ctx, failedResponseKey{}, failed)

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.model),
		Input:          req.Text,
		Voice:          openai.SpeechVoice(req.Voice),
		ResponseFormat: openai.SpeechResponseFormat(req.Format),
		Speed:          req.Speed,
	})
	if err != nil {
		return nil, openAIError(err, failed)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, transportError(fmt.Errorf("read audio: %w", err))
	}
	return &Result{Audio: audio, Format: req.Format}, nil
}

// failedResponse keeps the status and body of a non-2xx reply. The client
// library only surfaces error bodies that match OpenAI's own envelope.
type failedResponse struct {
	status int
	body   []byte
}

type failedResponseKey struct{}

type capturingDoer struct {
	next *http.Client
}

func (d *capturingDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.next.Do(req)
	if err != nil || (resp.StatusCode >= 200 && resp.StatusCode <= 299) {
		return resp, err
	}
	failed, ok := req.Context().Value(failedResponseKey{}).(*failedResponse)
	if !ok {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read error response: %w", err)
	}
	failed.status = resp.StatusCode
	failed.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func openAIError(err error, failed *failedResponse) *UpstreamError {
	if failed.status == 0 {
		return transportError(err)
	}

	ue := responseError(failed.status, failed.body)
	ue.Err = err

	var apiErr *openai.APIError
	if ue.Message == FallbackMessage && errors.As(err, &apiErr) && apiErr.Message != "" {
		ue.Message = apiErr.Message
	}
	return ue
}

package tts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_Synthesize(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	p := NewOpenAI(Config{APIURL: srv.URL + "/v1", APIKey: "sk-test", Timeout: time.Second})
	res, err := p.Synthesize(context.Background(), Request{Text: "hello", Voice: "nova", Speed: 1.25, Format: "mp3"})
	require.NoError(t, err)

	assert.Equal(t, []byte("mp3-bytes"), res.Audio)
	assert.Equal(t, "tts-1", got["model"])
	assert.Equal(t, "hello", got["input"])
	assert.Equal(t, "nova", got["voice"])
	assert.Equal(t, "mp3", got["response_format"])
	assert.Equal(t, 1.25, got["speed"])
}

func TestOpenAI_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"openai error envelope", 400, `{"error":{"message":"Invalid voice","type":"invalid_request_error"}}`, 400, "Invalid voice"},
		{"string error", 422, `{"error":"bad voice id"}`, 422, "bad voice id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewOpenAI(Config{APIURL: srv.URL, APIKey: "k", Timeout: time.Second})
			_, err := p.Synthesize(context.Background(), Request{Text: "x", Voice: "alloy", Speed: 1, Format: "mp3"})

			var ue *UpstreamError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, tt.wantStatus, ue.StatusCode)
			assert.Equal(t, tt.wantMsg, ue.Message)
		})
	}
}

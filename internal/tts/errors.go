package tts

import (
	"errors"
	"net/http"

	"github.com/tidwall/gjson"
)

// FallbackMessage is reported when neither the provider nor the transport
// gave anything more specific.
const FallbackMessage = "Failed to generate audio"

// messagePaths are tried in order against an error payload.
var messagePaths = []string{"error.message", "error", "message", "detail"}

// ErrMissingAudio is returned when a structured response has no audio.
var ErrMissingAudio = errors.New("response has no audio payload")

func responseError(status int, body []byte) *UpstreamError {
	msg := payloadMessage(body)
	if msg == "" {
		msg = FallbackMessage
	}
	return &UpstreamError{StatusCode: upstreamStatus(status), Message: msg}
}

func transportError(err error) *UpstreamError {
	msg := FallbackMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &UpstreamError{StatusCode: http.StatusInternalServerError, Message: msg, Err: err}
}

func decodeError(err error) *UpstreamError {
	return &UpstreamError{StatusCode: http.StatusInternalServerError, Message: FallbackMessage, Err: err}
}

func payloadMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range messagePaths {
		r := gjson.GetBytes(body, path)
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}

// upstreamStatus passes client and server errors through. Anything else
// (no status, or a non-error status on a failed call) becomes a 500.
func upstreamStatus(status int) int {
	if status >= 400 && status <= 599 {
		return status
	}
	return http.StatusInternalServerError
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/nikhilbhutani/ttsproxy/internal/api/middleware"
	"github.com/nikhilbhutani/ttsproxy/internal/synthesis"
	"github.com/nikhilbhutani/ttsproxy/internal/tts"
)

const maxBodyBytes = 1 << 20

type AudioHandler struct {
	svc        *synthesis.Service
	retryAfter time.Duration
}

// NewAudioHandler serves POST /generate-audio. retryAfter is the rate
// limit window reported to denied callers.
func NewAudioHandler(svc *synthesis.Service, retryAfter time.Duration) *AudioHandler {
	return &AudioHandler{svc: svc, retryAfter: retryAfter}
}

// Generate converts text to audio. Every failure is answered with a JSON
// {"error": ...} body.
func (h *AudioHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var in synthesis.Input
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	out, err := h.svc.Generate(r.Context(), middleware.ClientIP(r), in)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	cacheStatus := "MISS"
	if out.Cached {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", out.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Audio)))
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	w.Write(out.Audio)
}

func (h *AudioHandler) writeFailure(w http.ResponseWriter, err error) {
	var ue *tts.UpstreamError
	switch {
	case errors.Is(err, synthesis.ErrTextRequired):
		writeError(w, http.StatusBadRequest, "Text is required")
	case errors.Is(err, synthesis.ErrRateLimited):
		secs := int(h.retryAfter.Seconds())
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		writeError(w, http.StatusTooManyRequests,
			fmt.Sprintf("Too many requests, please try again after %d seconds", secs))
	case errors.As(err, &ue):
		writeError(w, ue.StatusCode, ue.Message)
	default:
		slog.Error("unexpected synthesis error", "error", err)
		writeError(w, http.StatusInternalServerError, tts.FallbackMessage)
	}
}

package synthesis

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/nikhilbhutani/ttsproxy/internal/tts"
)

// Key derives the cache key for a resolved request. Every field that changes
// the audio is length-prefixed, so no text content can shift a boundary.
// Emotion contributes only when the caller sent one.
func Key(req tts.Request) string {
	var b strings.Builder
	writeField(&b, req.Text)
	writeField(&b, req.Voice)
	writeField(&b, formatFloat(req.Speed))
	if req.Emotion != nil {
		writeField(&b, formatFloat(*req.Emotion))
	} else {
		b.WriteString("-|")
	}
	writeField(&b, req.Format)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func writeField(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
	b.WriteByte('|')
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

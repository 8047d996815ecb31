package tts

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
)

// neutralEmotion maps to a 0% pitch shift.
const neutralEmotion = 50

// Prosody wraps text in an SSML prosody envelope. Pitch is shifted by
// (emotion-50)/5 percent and rate is speed*100 percent. Values are not
// range checked.
func Prosody(text string, speed, emotion float64) string {
	var escaped bytes.Buffer
	// xml.EscapeText only fails when the writer does.
	_ = xml.EscapeText(&escaped, []byte(text))

	return fmt.Sprintf(`<speak><prosody pitch="%s" rate="%s">%s</prosody></speak>`,
		PitchPercent(emotion), RatePercent(speed), escaped.String())
}

// PitchPercent renders the pitch attribute for emotion, e.g. "-10%".
func PitchPercent(emotion float64) string {
	return percent((emotion - neutralEmotion) / 5)
}

// RatePercent renders the rate attribute for speed, e.g. "100%".
func RatePercent(speed float64) string {
	return percent(speed * 100)
}

func percent(v float64) string {
	// speed*100 and (emotion-50)/5 carry binary noise (1.1*100 = 110.00000000000001)
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		// avoid "-0%"
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

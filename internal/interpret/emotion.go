// Package interpret turns a dream description into a prompt, guards the
// generative-text call with a fixed-interval limiter and maps every outcome
// onto a tagged Result.
package interpret

import (
	"fmt"
	"strings"
)

// Emotion is the dominant feeling the dreamer reports.
type Emotion int

const (
	EmotionUnsure Emotion = iota
	EmotionHappy
	EmotionAfraid
	EmotionSad
	EmotionAngry
	EmotionConfused
	EmotionCalm
	EmotionAnxious
	EmotionExcited
	EmotionNostalgic
)

var emotionNames = [...]string{
	EmotionUnsure:    "Unsure",
	EmotionHappy:     "Happy",
	EmotionAfraid:    "Afraid",
	EmotionSad:       "Sad",
	EmotionAngry:     "Angry",
	EmotionConfused:  "Confused",
	EmotionCalm:      "Calm",
	EmotionAnxious:   "Anxious",
	EmotionExcited:   "Excited",
	EmotionNostalgic: "Nostalgic",
}

// Emotions returns every emotion in selector order.
func Emotions() []Emotion {
	out := make([]Emotion, len(emotionNames))
	for i := range emotionNames {
		out[i] = Emotion(i)
	}
	return out
}

func (e Emotion) String() string {
	if e < 0 || int(e) >= len(emotionNames) {
		return fmt.Sprintf("Emotion(%d)", int(e))
	}
	return emotionNames[e]
}

// ParseEmotion resolves a case-insensitive emotion name. Blank input is Unsure.
func ParseEmotion(s string) (Emotion, error) {
	key := normalizeName(s)
	if key == "" {
		return EmotionUnsure, nil
	}
	for i, name := range emotionNames {
		if normalizeName(name) == key {
			return Emotion(i), nil
		}
	}
	return EmotionUnsure, fmt.Errorf("unknown emotion %q", s)
}

// MarshalText encodes the emotion by name.
func (e Emotion) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText decodes an emotion name.
func (e *Emotion) UnmarshalText(text []byte) error {
	parsed, err := ParseEmotion(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// normalizeName lower-cases and drops separators so "personal-growth",
// "Personal Growth" and "personal_growth" compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

package interpret

import (
	"encoding/json"
	"testing"
)

func TestParseEmotion(t *testing.T) {
	tests := []struct {
		in      string
		want    Emotion
		wantErr bool
	}{
		{"", EmotionUnsure, false},
		{"happy", EmotionHappy, false},
		{"  NOSTALGIC ", EmotionNostalgic, false},
		{"Anxious", EmotionAnxious, false},
		{"bored", EmotionUnsure, true},
	}
	for _, tt := range tests {
		got, err := ParseEmotion(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseEmotion(%q) = %v, %v", tt.in, got, err)
		}
	}
	if len(Emotions()) != 10 || Emotions()[0] != EmotionUnsure {
		t.Errorf("Emotions() = %v", Emotions())
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeGeneralPsychology, false},
		{"jungian", ModeJungian, false},
		{"cultural-symbolism", ModeCulturalSymbolism, false},
		{"Personal Growth", ModePersonalGrowth, false},
		{"personal_growth", ModePersonalGrowth, false},
		{"astrology", ModeGeneralPsychology, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestEnumsJSON(t *testing.T) {
	type payload struct {
		Emotion Emotion `json:"emotion"`
		Mode    Mode    `json:"mode"`
		Kind    Kind    `json:"kind"`
	}
	raw, err := json.Marshal(payload{Emotion: EmotionSad, Mode: ModeCulturalSymbolism, Kind: KindRateLimited})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"emotion":"Sad","mode":"Cultural Symbolism","kind":"rate_limited"}`
	if string(raw) != want {
		t.Fatalf("json = %s, want %s", raw, want)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"emotion":"afraid","mode":"freudian"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Emotion != EmotionAfraid || p.Mode != ModeFreudian {
		t.Fatalf("decoded %+v", p)
	}
	if err := json.Unmarshal([]byte(`{"mode":"tarot"}`), &p); err == nil {
		t.Fatal("unknown mode should fail to decode")
	}
}

package interpret

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	req := Request{
		DreamText:   "I was flying over a clear sea",
		Emotion:     EmotionCalm,
		LifeContext: "looking for a job",
		Mode:        ModeFreudian,
	}
	got := BuildPrompt(req)

	for _, want := range []string{
		"Interpretation approach: Freudian",
		`"I was flying over a clear sea"`,
		"Dominant feeling: Calm",
		"Life context: looking for a job",
		"## 🔮 Main Interpretation",
		"## 🎭 Symbol Analysis",
		"## 💡 Insight & Advice",
		"## ⚡ Actions You Can Take",
		"Remember: dream interpretation is personal and subjective.",
		"easy-to-understand English",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(got, "dominant feeling shapes") {
		t.Error("emotion analysis instruction present without the toggle")
	}
	if BuildPrompt(req) != got {
		t.Error("BuildPrompt is not deterministic")
	}
}

func TestBuildPrompt_Defaults(t *testing.T) {
	got := BuildPrompt(Request{DreamText: "x", EmotionAnalysis: true})

	if !strings.Contains(got, "Life context: Not mentioned") {
		t.Error("blank life context should read Not mentioned")
	}
	if !strings.Contains(got, "Interpretation approach: General Psychology") {
		t.Error("zero mode should be General Psychology")
	}
	if !strings.Contains(got, "Dominant feeling: Unsure") {
		t.Error("zero emotion should be Unsure")
	}
	if !strings.Contains(got, "dominant feeling shapes") {
		t.Error("emotion analysis instruction missing")
	}
}

func TestBuildPrompt_EmbedsDreamVerbatim(t *testing.T) {
	dream := "I was flying over the sea.\nThen I fell.\tShe said \"wake up\""
	got := BuildPrompt(Request{DreamText: dream})
	if !strings.Contains(got, "Dream details:\n\""+dream+"\"\n\n") {
		t.Errorf("dream text not embedded verbatim:\n%s", got)
	}
	if strings.Contains(got, `\n`) || strings.Contains(got, `\"`) {
		t.Errorf("dream text was escaped:\n%s", got)
	}
}

package interpret

import (
	"fmt"
	"strings"
)

// DefaultLanguage is used when a request carries no language.
const DefaultLanguage = "English"

// Request is everything the user supplied for one interpretation.
type Request struct {
	DreamText   string
	Emotion     Emotion
	LifeContext string
	Mode        Mode

	// EmotionAnalysis asks the model to relate the dominant feeling to the
	// meaning of the dream.
	EmotionAnalysis bool
	// Language of the answer. Empty means DefaultLanguage.
	Language string
}

// BuildPrompt renders the request into the instruction sent to the model.
// The output depends only on the request.
func BuildPrompt(req Request) string {
	lifeContext := strings.TrimSpace(req.LifeContext)
	if lifeContext == "" {
		lifeContext = "Not mentioned"
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = DefaultLanguage
	}

	var b strings.Builder
	b.WriteString("You are an AI Dream Interpreter with expertise in psychology and dream analysis.\n\n")
	fmt.Fprintf(&b, "Interpretation approach: %s\n\n", req.Mode)
	b.WriteString("Dream details:\n")
	b.WriteString("\"" + req.DreamText + "\"\n\n")
	fmt.Fprintf(&b, "Dominant feeling: %s\n", req.Emotion)
	fmt.Fprintf(&b, "Life context: %s\n\n", lifeContext)

	b.WriteString("Give an interpretation that:\n")
	b.WriteString("1. Analyzes the main symbols in the dream\n")
	b.WriteString("2. Explains the possible psychological meaning\n")
	b.WriteString("3. Connects the dream to the current life context (if any)\n")
	b.WriteString("4. Offers insight for personal growth\n")
	fmt.Fprintf(&b, "5. Uses plain, easy-to-understand %s\n", language)
	if req.EmotionAnalysis {
		b.WriteString("6. Explains how the dominant feeling shapes the meaning of the dream\n")
	}

	b.WriteString("\nResponse structure:\n\n")
	b.WriteString("## 🔮 Main Interpretation\n[Overall meaning of the dream]\n\n")
	b.WriteString("## 🎭 Symbol Analysis\n[Analysis of the important symbols]\n\n")
	b.WriteString("## 💡 Insight & Advice\n[Insight for everyday life]\n\n")
	b.WriteString("## ⚡ Actions You Can Take\n[Practical suggestions based on the interpretation]\n\n")
	b.WriteString("Remember: dream interpretation is personal and subjective. Use this as a guide for self-reflection.\n")
	return b.String()
}

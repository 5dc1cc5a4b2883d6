package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"dreamer/internal/dream"
	"dreamer/internal/interpret"
	"dreamer/internal/session"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	interpretEmotion    string
	interpretMode       string
	interpretContext    string
	interpretNoEmotions bool
)

// interpretCmd runs a single interpretation
var interpretCmd = &cobra.Command{
	Use:   "interpret [dream]",
	Short: "Interpret one dream and print the result",
	Long: `Interprets a single dream. The dream is read from the arguments, or
from stdin when no arguments are given.

Example:
  dreamer interpret --api-key $KEY --emotion afraid --mode jungian \
    "I was flying over the sea and suddenly fell into deep water"`,
	RunE: runInterpret,
}

func init() {
	interpretCmd.Flags().StringVar(&interpretEmotion, "emotion", "", "Dominant feeling (Unsure, Happy, Afraid, Sad, Angry, Confused, Calm, Anxious, Excited, Nostalgic)")
	interpretCmd.Flags().StringVar(&interpretMode, "mode", "", "Approach (general-psychology, jungian, freudian, cultural-symbolism, personal-growth)")
	interpretCmd.Flags().StringVar(&interpretContext, "context", "", "Current life situation")
	interpretCmd.Flags().BoolVar(&interpretNoEmotions, "no-emotion-analysis", false, "Do not ask the model to analyse the feeling")
}

func runInterpret(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read dream from stdin: %w", err)
		}
		text = string(data)
	}

	emotion, err := interpret.ParseEmotion(interpretEmotion)
	if err != nil {
		return err
	}
	mode, err := interpret.ParseMode(interpretMode)
	if err != nil {
		return err
	}
	req := interpret.Request{
		DreamText:   text,
		Emotion:     emotion,
		LifeContext: interpretContext,
		Mode:        mode,
	}
	prefs := dream.DefaultPreferences()
	prefs.EmotionAnalysis = !interpretNoEmotions

	svc := newService(cfg, nil)
	if err := dream.Validate(req); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if found := svc.DetectSymbols(text, prefs); len(found) > 0 {
		fmt.Fprintln(out, "🔮 Detected symbols:")
		for _, m := range found {
			fmt.Fprintf(out, "  🎭 %s: %s\n", m.Label, m.Meaning)
		}
		fmt.Fprintln(out)
	}

	st := session.NewState(cfg.LLM.DailyQuota)
	entry, err := svc.Submit(context.Background(), st, "cli-"+uuid.NewString(), req, apiKey, prefs)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, entry.Display())
	if entry.Kind != interpret.KindOK {
		return fmt.Errorf("interpretation not completed (%s)", entry.Kind)
	}
	return nil
}

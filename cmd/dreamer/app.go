package main

import (
	"dreamer/internal/config"
	"dreamer/internal/dream"
	"dreamer/internal/interpret"
	"dreamer/internal/perception"
	"dreamer/internal/usage"
)

// newFactory builds the client factory. Tests replace it.
var newFactory = func(c *config.Config) perception.ClientFactory {
	return perception.NewGeminiFactory(perception.GeminiConfigFromLLM(c))
}

// newService wires the requester and the dream service from config.
func newService(c *config.Config, tracker *usage.Tracker) *dream.Service {
	requester := interpret.NewRequester(newFactory(c),
		interpret.WithInterval(c.GetRateInterval()),
		interpret.WithLanguage(c.LLM.Language),
	)
	opts := []dream.Option{}
	if tracker != nil {
		opts = append(opts, dream.WithTracker(tracker))
	}
	return dream.NewService(c, requester, opts...)
}

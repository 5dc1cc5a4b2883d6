package config

// LLMConfig configures the generative-text service.
type LLMConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"` // empty = SDK default endpoint
	Timeout string `yaml:"timeout"`

	// RateInterval is the minimum time between two calls from one session.
	RateInterval string `yaml:"rate_interval"`

	// DailyQuota is the free-tier request budget shown next to the call counter.
	DailyQuota int `yaml:"daily_quota"`

	// Language the interpretation is written in.
	Language string `yaml:"language"`
}

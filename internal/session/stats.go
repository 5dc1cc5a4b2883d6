package session

import "dreamer/internal/interpret"

// Stats summarises a session for the journal and sidebar views.
type Stats struct {
	TotalDreams          int                `json:"total_dreams"`
	MostCommonEmotion    *interpret.Emotion `json:"most_common_emotion,omitempty"`
	MostCommonMode       *interpret.Mode    `json:"most_common_mode,omitempty"`
	TotalInterpretations int                `json:"total_interpretations"`
	APICallsToday        int                `json:"api_calls_today"`
	DailyQuota           int                `json:"daily_quota"`
	// QuotaUsed is APICallsToday/DailyQuota, capped at 1.
	QuotaUsed float64 `json:"quota_used"`
}

// Stats computes the journal statistics. Unsure is ignored when picking the
// most common emotion; ties go to the value seen first.
func (s *State) Stats() Stats {
	st := Stats{
		TotalDreams:          len(s.journal),
		TotalInterpretations: s.totalInterpretations,
		APICallsToday:        s.apiCallsToday,
		DailyQuota:           s.dailyQuota,
	}
	if s.dailyQuota > 0 {
		st.QuotaUsed = float64(s.apiCallsToday) / float64(s.dailyQuota)
		if st.QuotaUsed > 1 {
			st.QuotaUsed = 1
		}
	}

	emotions := make([]interpret.Emotion, 0, len(s.journal))
	modes := make([]interpret.Mode, 0, len(s.journal))
	for _, e := range s.journal {
		if e.Emotion != interpret.EmotionUnsure {
			emotions = append(emotions, e.Emotion)
		}
		modes = append(modes, e.Mode)
	}
	if em, ok := mostCommon(emotions); ok {
		st.MostCommonEmotion = &em
	}
	if m, ok := mostCommon(modes); ok {
		st.MostCommonMode = &m
	}
	return st
}

func mostCommon[T comparable](values []T) (T, bool) {
	var best T
	if len(values) == 0 {
		return best, false
	}
	counts := make(map[T]int, len(values))
	bestCount := 0
	for _, v := range values {
		counts[v]++
	}
	// Walk in order so the first value to reach the top count wins a tie.
	for _, v := range values {
		if c := counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best, true
}

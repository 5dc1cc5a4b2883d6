package interpret

import "fmt"

// Mode is the interpretive approach requested from the model.
type Mode int

const (
	ModeGeneralPsychology Mode = iota
	ModeJungian
	ModeFreudian
	ModeCulturalSymbolism
	ModePersonalGrowth
)

var modeNames = [...]string{
	ModeGeneralPsychology: "General Psychology",
	ModeJungian:           "Jungian",
	ModeFreudian:          "Freudian",
	ModeCulturalSymbolism: "Cultural Symbolism",
	ModePersonalGrowth:    "Personal Growth",
}

// Modes returns every mode in selector order.
func Modes() []Mode {
	out := make([]Mode, len(modeNames))
	for i := range modeNames {
		out[i] = Mode(i)
	}
	return out
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode resolves a mode name, ignoring case and separators. Blank input is
// General Psychology.
func ParseMode(s string) (Mode, error) {
	key := normalizeName(s)
	if key == "" {
		return ModeGeneralPsychology, nil
	}
	for i, name := range modeNames {
		if normalizeName(name) == key {
			return Mode(i), nil
		}
	}
	return ModeGeneralPsychology, fmt.Errorf("unknown interpretation mode %q", s)
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

package config

// LayoutSettings holds the editor/result split as the share of the width
// given to the left column.
type LayoutSettings struct {
	Split float64 `json:"split" toml:"split" yaml:"split"`
}

const (
	LayoutSplitDefault = 0.5
	LayoutSplitMin     = 0.25
	LayoutSplitMax     = 0.75
	LayoutSplitStep    = 0.05
)

func DefaultLayoutSettings() LayoutSettings {
	return LayoutSettings{Split: LayoutSplitDefault}
}

func NormaliseLayoutSettings(in LayoutSettings) LayoutSettings {
	return LayoutSettings{
		Split: clampFloat(in.Split, LayoutSplitMin, LayoutSplitMax, LayoutSplitDefault),
	}
}

// Nudge moves the split by steps increments, staying within bounds.
func (l LayoutSettings) Nudge(steps int) LayoutSettings {
	l = NormaliseLayoutSettings(l)
	l.Split = min(max(l.Split+float64(steps)*LayoutSplitStep, LayoutSplitMin), LayoutSplitMax)
	return l
}

func clampFloat[T ~float64](value, min, max, fallback T) T {
	if value == 0 {
		return fallback
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

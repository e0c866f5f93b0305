package ui

// Chrome dimensions
const (
	HeaderHeight = 1
	NavHeight    = 1
	InputHeight  = 1
	FlashHeight  = 1
	FooterHeight = 1
	ContentPadH  = 2
	ContentPadV  = 1

	MinimumTerminalWidth  = 60
	MinimumTerminalHeight = 16
	CompactModeWidth      = 100
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	IsCompact      bool
}

func NewLayoutConfig(width, height int) LayoutConfig {
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		IsCompact:      width < CompactModeWidth,
	}
}

// ChromeHeight is the number of rows the shell reserves around page content.
// The flash row is always reserved so content does not jump when it appears.
func ChromeHeight() int {
	return HeaderHeight + NavHeight + InputHeight + FlashHeight + FooterHeight + 2*ContentPadV
}

// ContentWidth returns the width available to a page.
func (l LayoutConfig) ContentWidth() int {
	return clampMin(l.TerminalWidth-2*ContentPadH, 20)
}

// ContentHeight returns the height available to a page.
func (l LayoutConfig) ContentHeight() int {
	return clampMin(l.TerminalHeight-ChromeHeight(), 3)
}

// SplitHeights divides a page vertically, giving top the given ratio.
func SplitHeights(total int, ratio float64) (top, bottom int) {
	top = int(float64(total) * ratio)
	if top < 1 {
		top = 1
	}
	bottom = total - top - 1 // divider
	if bottom < 1 {
		bottom = 1
	}
	return top, bottom
}

func clampMin(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}

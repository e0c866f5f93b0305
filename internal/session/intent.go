package session

// IntentKind tags an Intent.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentSetFlash
	IntentClearFlash
	IntentEnableRouting
	IntentDisableRouting
	IntentAddRecent
)

func (k IntentKind) String() string {
	switch k {
	case IntentSetFlash:
		return "set_flash"
	case IntentClearFlash:
		return "clear_flash"
	case IntentEnableRouting:
		return "enable_routing"
	case IntentDisableRouting:
		return "disable_routing"
	case IntentAddRecent:
		return "add_recent"
	default:
		return "none"
	}
}

// Intent is a request to change the Session, returned alongside a page or
// shell update and reduced exactly once. The zero value is None.
type Intent struct {
	Kind IntentKind
	Text string // flash text or mailbox name
}

func None() Intent           { return Intent{} }
func ClearFlash() Intent     { return Intent{Kind: IntentClearFlash} }
func EnableRouting() Intent  { return Intent{Kind: IntentEnableRouting} }
func DisableRouting() Intent { return Intent{Kind: IntentDisableRouting} }

func SetFlash(text string) Intent {
	return Intent{Kind: IntentSetFlash, Text: text}
}

func AddRecent(mailbox string) Intent {
	return Intent{Kind: IntentAddRecent, Text: mailbox}
}

func (i Intent) String() string {
	if i.Text == "" {
		return i.Kind.String()
	}
	return i.Kind.String() + "(" + i.Text + ")"
}

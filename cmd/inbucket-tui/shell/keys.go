package shell

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Focus   key.Binding
	Submit  key.Binding
	Blur    key.Binding
	Home    key.Binding
	Monitor key.Binding
	Status  key.Binding
	Back    key.Binding
	Forward key.Binding
	Dismiss key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Focus:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "open mailbox")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go")),
		Blur:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Home:    key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "home")),
		Monitor: key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "monitor")),
		Status:  key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "status")),
		Back:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "back")),
		Forward: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "forward")),
		Dismiss: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Home, k.Monitor, k.Status, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Focus, k.Submit, k.Blur},
		{k.Home, k.Monitor, k.Status},
		{k.Back, k.Forward, k.Dismiss},
		{k.Help, k.Quit},
	}
}

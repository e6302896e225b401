package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Back     key.Binding
	Refresh  key.Binding
	Logout   key.Binding
	CopyID   key.Binding
	Login    key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// list
	Search         key.Binding
	TypeFilter     key.Binding
	Toggle         key.Binding
	ToggleAll      key.Binding
	Open           key.Binding
	New            key.Binding
	Delete         key.Binding
	DeleteSelected key.Binding

	// detail
	Edit     key.Binding
	EditFld  key.Binding
	Save     key.Binding
	Add      key.Binding
	OpenDocs key.Binding

	// create
	SwitchType key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Up:       key.NewBinding(key.WithKeys("up", "k", "ctrl+p"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j", "ctrl+n"), key.WithHelp("↓/j", "down")),
		Top:      key.NewBinding(key.WithKeys("g", "home", "<"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end", ">"), key.WithHelp("G", "bottom")),
		NextTab:  key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next tab")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev tab")),
		Back:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sign out")),
		CopyID:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Login:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "sign in")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "scroll up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "scroll down")),

		Search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		TypeFilter:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "type")),
		Toggle:         key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "select")),
		ToggleAll:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		Open:           key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		New:            key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Delete:         key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		DeleteSelected: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete selected")),

		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		EditFld:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit field")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		OpenDocs: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open SharePoint")),

		SwitchType: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "person/company")),
	}
}

package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	playPause key.Binding
	next      key.Binding
	prev      key.Binding
	shuffle   key.Binding
	repeat    key.Binding
	like      key.Binding
	volUp     key.Binding
	volDown   key.Binding
	tab       key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		playPause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "previous")),
		shuffle:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		repeat:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		like:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
		volUp:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "vol up")),
		volDown:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "vol down")),
		tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.playPause, k.next, k.tab, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.playPause, k.next, k.prev, k.like},
		{k.shuffle, k.repeat, k.volUp, k.volDown},
		{k.tab, k.quit},
	}
}

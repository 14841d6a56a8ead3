package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// CustomMultiLineEntry is the source-text entry of the translator window. A
// focused widget.Entry swallows Escape, which would trap the user in the
// field since all other shortcuts are single keys; this variant hands Escape
// to a callback so focus can be released.
type CustomMultiLineEntry struct {
	widget.Entry
	onEscape func()
}

// NewCustomMultiLineEntry creates a multi-line entry with Escape handling.
func NewCustomMultiLineEntry() *CustomMultiLineEntry {
	entry := &CustomMultiLineEntry{}
	entry.MultiLine = true
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedKey diverts Escape to the callback and forwards everything else.
func (e *CustomMultiLineEntry) TypedKey(key *fyne.KeyEvent) {
	if key.Name == fyne.KeyEscape && e.onEscape != nil {
		e.onEscape()
		return
	}
	e.Entry.TypedKey(key)
}

// SetOnEscape sets the callback invoked when Escape is pressed in the field.
func (e *CustomMultiLineEntry) SetOnEscape(f func()) {
	e.onEscape = f
}

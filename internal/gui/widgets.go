package gui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"codeberg.org/snonux/polyglot/internal/history"
	"codeberg.org/snonux/polyglot/internal/translation"
)

// TranslationDisplay is a custom widget for showing a translation result with
// its language pair and timing.
type TranslationDisplay struct {
	widget.BaseWidget

	container *fyne.Container
	textEntry *widget.Entry
	metaLabel *widget.Label
}

// NewTranslationDisplay creates a new translation display widget
func NewTranslationDisplay() *TranslationDisplay {
	d := &TranslationDisplay{}

	d.textEntry = widget.NewMultiLineEntry()
	d.textEntry.Disable() // Make it read-only
	d.textEntry.Wrapping = fyne.TextWrapWord

	d.metaLabel = widget.NewLabel("")
	d.metaLabel.TextStyle = fyne.TextStyle{Italic: true}

	scroll := container.NewScroll(d.textEntry)
	scroll.SetMinSize(fyne.NewSize(0, 160))

	d.container = container.NewBorder(
		widget.NewLabel("Translation:"),
		d.metaLabel,
		nil,
		nil,
		scroll,
	)

	d.ExtendBaseWidget(d)
	return d
}

// CreateRenderer implements fyne.Widget
func (d *TranslationDisplay) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(d.container)
}

// SetResult shows a fresh translation result.
func (d *TranslationDisplay) SetResult(result translation.Result) {
	d.textEntry.SetText(result.Translation)
	d.metaLabel.SetText(formatResultMeta(result))
}

// SetEntry shows a history entry.
func (d *TranslationDisplay) SetEntry(entry history.Entry) {
	d.textEntry.SetText(entry.Translation)
	d.metaLabel.SetText(formatEntryMeta(entry))
}

// SetTranslating shows an in-progress state.
func (d *TranslationDisplay) SetTranslating() {
	d.textEntry.SetText("")
	d.metaLabel.SetText("Translating...")
}

// Clear clears the display
func (d *TranslationDisplay) Clear() {
	d.textEntry.SetText("")
	d.metaLabel.SetText("")
}

func formatResultMeta(result translation.Result) string {
	return fmt.Sprintf("%s to %s via %s in %s",
		result.Request.SourceLang, result.Request.TargetLang,
		result.Backend, result.Duration.Round(10*time.Millisecond))
}

func formatEntryMeta(entry history.Entry) string {
	return fmt.Sprintf("%s to %s via %s on %s",
		entry.SourceLang, entry.TargetLang,
		entry.Backend, entry.CreatedAt.Local().Format("2006-01-02 15:04"))
}

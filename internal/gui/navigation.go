package gui

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"codeberg.org/snonux/polyglot/internal/history"
)

// historyCursor tracks which history entry is being browsed. Entries are
// newest first; -1 means the live view (no entry shown).
type historyCursor struct {
	index int
}

func newHistoryCursor() historyCursor {
	return historyCursor{index: -1}
}

// reset returns the cursor to the live view.
func (c *historyCursor) reset() {
	c.index = -1
}

// older advances toward older entries and reports the new index.
func (c *historyCursor) older(length int) (int, bool) {
	if c.index+1 >= length {
		return c.index, false
	}
	c.index++
	return c.index, true
}

// newer moves back toward the most recent entry.
func (c *historyCursor) newer() (int, bool) {
	if c.index <= 0 {
		return c.index, false
	}
	c.index--
	return c.index, true
}

// canOlder reports whether an older entry exists.
func (c *historyCursor) canOlder(length int) bool {
	return c.index+1 < length
}

// canNewer reports whether a newer entry exists.
func (c *historyCursor) canNewer() bool {
	return c.index > 0
}

// onOlderEntry shows the next older history entry.
func (a *Application) onOlderEntry() {
	log := a.manager.History()
	i, ok := a.cursor.older(log.Len())
	if !ok {
		return
	}
	if entry, ok := log.At(i); ok {
		a.showHistoryEntry(entry, i, log.Len())
	}
	a.updateNavigation()
}

// onNewerEntry shows the next newer history entry.
func (a *Application) onNewerEntry() {
	log := a.manager.History()
	i, ok := a.cursor.newer()
	if !ok {
		return
	}
	if entry, ok := log.At(i); ok {
		a.showHistoryEntry(entry, i, log.Len())
	}
	a.updateNavigation()
}

// showHistoryEntry restores an entry into the input and output areas so it
// can be re-run or just read.
func (a *Application) showHistoryEntry(entry history.Entry, index, total int) {
	a.sourceEntry.SetText(entry.SourceText)
	a.sourceLangSelect.SetSelected(entry.SourceLang)
	a.targetLangSelect.SetSelected(entry.TargetLang)
	a.explainCheck.SetChecked(entry.Explain)
	a.translationDisplay.SetEntry(entry)
	a.updateStatus(fmt.Sprintf("History %d/%d", index+1, total))
}

// updateNavigation updates the navigation button states
func (a *Application) updateNavigation() {
	if a.cursor.canOlder(a.manager.History().Len()) {
		a.prevButton.Enable()
	} else {
		a.prevButton.Disable()
	}
	if a.cursor.canNewer() {
		a.nextButton.Enable()
	} else {
		a.nextButton.Disable()
	}
}

// onExportHistory writes the session log to a JSON file of the user's choice.
func (a *Application) onExportHistory() {
	entries := a.manager.History().Entries()
	if len(entries) == 0 {
		dialog.ShowInformation("No History", "Nothing translated yet, nothing to export.", a.window)
		return
	}

	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if err := history.Export(path, entries); err != nil {
			a.showError(err)
			return
		}
		a.updateStatus(fmt.Sprintf("Exported %d entries to %s", len(entries), filepath.Base(path)))
	}, a.window)
	d.SetFileName("polyglot-history.json")
	d.Show()
}

// onClearHistory empties the session log and the persisted store after a
// confirmation.
func (a *Application) onClearHistory() {
	if a.manager.History().Len() == 0 {
		a.updateStatus("History is already empty")
		return
	}

	dialog.ShowConfirm("Clear History",
		"Delete all history entries? This also removes them from disk.",
		func(confirmed bool) {
			if !confirmed {
				return
			}
			if err := a.manager.ClearHistory(); err != nil {
				a.showError(err)
				return
			}
			a.cursor.reset()
			a.updateNavigation()
			a.translationDisplay.Clear()
			a.updateStatus("History cleared")
		}, a.window)
}

// onImportHistory replaces the session log with a previously exported file.
func (a *Application) onImportHistory() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()

		entries, err := history.Import(path)
		if err != nil {
			a.showError(err)
			return
		}
		a.manager.History().Replace(entries)
		a.cursor.reset()
		a.updateNavigation()
		a.updateStatus(fmt.Sprintf("Imported %d entries from %s", len(entries), filepath.Base(path)))
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

package gui

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"codeberg.org/snonux/polyglot/internal/hub"
	"codeberg.org/snonux/polyglot/internal/translation"
)

// loadModel starts a background model load and records the path in the
// settings once the engine accepts it.
func (a *Application) loadModel(path string) {
	a.setBusy(true)
	a.updateStatus(fmt.Sprintf("Loading model %s...", filepath.Base(path)))

	translation.RunLoadWorker(a.manager, a.ctx, path, fyne.Do, func(err error) {
		a.setBusy(false)
		a.updateModelLabel()
		if err != nil {
			a.showError(err)
			return
		}
		a.settings.ModelPath = path
		a.saveSettings()
		a.updateStatus("Model loaded")
	})
}

// onDownloadModel shows the catalog presets and starts a download for the
// chosen one.
func (a *Application) onDownloadModel() {
	dir := a.modelDir()
	options := hub.Models(dir)
	if len(options) == 0 {
		dialog.ShowInformation("No Models", "The model catalog is empty.", a.window)
		return
	}

	labels := make([]string, len(options))
	for i, m := range options {
		label := fmt.Sprintf("%s, %s", m.Name, m.SizeLabel)
		if m.Downloaded {
			label += " (downloaded)"
		}
		labels[i] = label
	}

	description := widget.NewLabel("")
	description.Wrapping = fyne.TextWrapWord

	presetSelect := widget.NewSelect(labels, func(string) {})
	presetSelect.OnChanged = func(string) {
		if i := presetSelect.SelectedIndex(); i >= 0 {
			description.SetText(options[i].Description)
		}
	}
	presetSelect.SetSelectedIndex(0)

	content := container.NewVBox(
		widget.NewLabel("Model preset:"),
		presetSelect,
		widget.NewSeparator(),
		description,
	)

	d := dialog.NewCustomConfirm("Download Model", "Download", "Cancel", content, func(download bool) {
		if !download {
			return
		}
		i := presetSelect.SelectedIndex()
		if i < 0 {
			return
		}
		a.downloadModel(options[i], dir)
	}, a.window)
	d.Resize(fyne.NewSize(420, 260))
	d.Show()
}

// downloadModel fetches the preset on a background goroutine, then switches
// the backend to match and loads the model.
func (a *Application) downloadModel(model hub.ModelOption, dir string) {
	a.downloading = true
	a.refreshControls()
	a.updateStatus(fmt.Sprintf("Downloading %s (%s)...", model.Name, model.SizeLabel))

	go func() {
		downloader := hub.NewDownloader()
		lastPercent := -1
		path, err := downloader.Download(a.ctx, model, dir, func(file string, received, total int64) {
			if total <= 0 {
				return
			}
			percent := int(received * 100 / total)
			if percent == lastPercent {
				return
			}
			lastPercent = percent
			fyne.Do(func() {
				a.updateStatus(fmt.Sprintf("Downloading %s: %d%%", file, percent))
			})
		})

		if err == nil && a.manager.Backend() != model.Backend {
			// Switch before the UI callback so the load below targets the
			// right engine.
			err = a.manager.SwitchBackend(model.Backend)
		}

		fyne.Do(func() {
			a.downloading = false
			a.refreshControls()
			if err != nil {
				a.showError(err)
				return
			}
			a.settings.Backend = string(model.Backend)
			a.settings.ModelPath = path
			a.saveSettings()
			a.backendSelect.SetSelected(string(model.Backend))
			a.updateModelLabel()
			a.loadModel(path)
		})
	}()
}

// modelDir returns the configured model directory or the default one.
func (a *Application) modelDir() string {
	if a.settings.ModelDir != "" {
		return a.settings.ModelDir
	}
	if dir, err := hub.DefaultModelDir(); err == nil {
		return dir
	}
	return "."
}

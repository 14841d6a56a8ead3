// Package gui implements the desktop translator window. All model work runs
// on background workers; widget updates always go through fyne.Do.
package gui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/polyglot/internal"
	"codeberg.org/snonux/polyglot/internal/backend"
	"codeberg.org/snonux/polyglot/internal/cli"
	"codeberg.org/snonux/polyglot/internal/history"
	"codeberg.org/snonux/polyglot/internal/translation"
)

// Application represents the main GUI application
type Application struct {
	// Fyne components
	app    fyne.App
	window fyne.Window

	// UI elements
	sourceEntry        *CustomMultiLineEntry
	translationDisplay *TranslationDisplay
	logViewer          *LogViewer
	sourceLangSelect   *widget.Select
	targetLangSelect   *widget.Select
	backendSelect      *widget.Select
	explainCheck       *widget.Check
	statusLabel        *widget.Label
	modelLabel         *widget.Label

	// Buttons
	translateButton *ttwidget.Button
	swapButton      *ttwidget.Button
	prevButton      *ttwidget.Button
	nextButton      *ttwidget.Button
	loadButton      *ttwidget.Button
	unloadButton    *ttwidget.Button
	downloadButton  *ttwidget.Button
	paramsButton    *ttwidget.Button
	exportButton    *ttwidget.Button
	importButton    *ttwidget.Button
	clearButton     *ttwidget.Button
	helpButton      *ttwidget.Button

	// State management
	manager     *translation.Manager
	cursor      historyCursor
	busy        bool
	downloading bool

	// Configuration
	config   *Config
	settings cli.Settings

	// Background processing
	ctx    context.Context
	cancel context.CancelFunc
}

// Config holds GUI application configuration
type Config struct {
	Settings cli.Settings
}

// New creates a new GUI application
func New(config *Config) *Application {
	if config == nil {
		config = &Config{Settings: cli.LoadSettings()}
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &Application{
		app:      app.NewWithID("org.codeberg.snonux.polyglot"),
		config:   config,
		settings: config.Settings,
		cursor:   newHistoryCursor(),
		ctx:      ctx,
		cancel:   cancel,
	}

	// The log viewer must exist before the manager so engine output has
	// somewhere to go from the first load on.
	a.logViewer = NewLogViewer()
	a.manager = buildManager(a.settings, a.logViewer.Writer())

	a.setupUI()
	a.updateNavigation()
	return a
}

// buildManager assembles the translation manager from the persisted settings.
func buildManager(settings cli.Settings, logWriter *LogWriter) *translation.Manager {
	kind, err := backend.ParseKind(settings.Backend)
	if err != nil {
		kind = backend.KindGGUF
	}

	engine := backend.DefaultConfig()
	if settings.ContextSize > 0 {
		engine.ContextSize = settings.ContextSize
	}
	if settings.Threads > 0 {
		engine.Threads = settings.Threads
	}
	engine.GPULayers = settings.GPULayers
	engine.LogWriter = logWriter

	params := backend.DefaultParams()
	if settings.MaxTokens > 0 {
		params.MaxTokens = settings.MaxTokens
	}
	if settings.Temperature > 0 {
		params.Temperature = settings.Temperature
	}

	var store *history.Store
	if stateDir, err := cli.StateDir(); err == nil {
		if s, err := history.OpenStore(filepath.Join(stateDir, "history.db")); err == nil {
			store = s
		}
	}

	return translation.NewManager(&translation.ManagerConfig{
		Backend:      kind,
		Engine:       engine,
		Params:       params,
		HistoryLimit: settings.HistoryLimit,
		Store:        store,
	})
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("Polyglot v%s - Seed-X Translator", internal.Version))
	a.window.Resize(fyne.NewSize(800, 700))

	// Source text input
	a.sourceEntry = NewCustomMultiLineEntry()
	a.sourceEntry.SetPlaceHolder("Text to translate... Press Escape to leave the field")
	a.sourceEntry.Wrapping = fyne.TextWrapWord
	a.sourceEntry.SetOnEscape(func() {
		a.window.Canvas().Unfocus()
	})

	// Language pair
	languages := backend.LanguageNames()
	a.sourceLangSelect = widget.NewSelect(languages, func(name string) {
		a.settings.SourceLang = name
		a.saveSettings()
	})
	a.targetLangSelect = widget.NewSelect(languages, func(name string) {
		a.settings.TargetLang = name
		a.saveSettings()
	})
	a.sourceLangSelect.SetSelected(a.settings.SourceLang)
	a.targetLangSelect.SetSelected(a.settings.TargetLang)

	a.swapButton = ttwidget.NewButtonWithIcon("", theme.ViewRefreshIcon(), a.onSwapLanguages)

	a.explainCheck = widget.NewCheck("Explain", func(checked bool) {
		a.settings.Explain = checked
		a.saveSettings()
	})
	a.explainCheck.SetChecked(a.settings.Explain)

	a.backendSelect = widget.NewSelect(
		[]string{string(backend.KindGGUF), string(backend.KindTransformers)},
		a.onBackendChanged,
	)
	a.backendSelect.SetSelected(string(a.manager.Backend()))

	a.translateButton = ttwidget.NewButton("", a.onTranslate)
	a.translateButton.Icon = theme.ConfirmIcon()

	languageRow := container.NewHBox(
		a.sourceLangSelect,
		a.swapButton,
		a.targetLangSelect,
		widget.NewSeparator(),
		a.explainCheck,
		widget.NewSeparator(),
		widget.NewLabel("Backend:"),
		a.backendSelect,
	)

	sourceScroll := container.NewScroll(a.sourceEntry)
	sourceScroll.SetMinSize(fyne.NewSize(0, 120))

	inputSection := container.NewBorder(
		languageRow,
		nil,
		nil,
		a.translateButton,
		sourceScroll,
	)

	// Translation output above the engine log
	a.translationDisplay = NewTranslationDisplay()

	displaySection := container.NewVSplit(
		a.translationDisplay,
		a.logViewer,
	)
	displaySection.SetOffset(0.6)

	// Toolbar buttons (tooltips are set after the tooltip layer exists)
	a.prevButton = ttwidget.NewButtonWithIcon("", theme.NavigateBackIcon(), a.onOlderEntry)
	a.nextButton = ttwidget.NewButtonWithIcon("", theme.NavigateNextIcon(), a.onNewerEntry)
	a.loadButton = ttwidget.NewButtonWithIcon("", theme.FolderOpenIcon(), a.onLoadModel)
	a.unloadButton = ttwidget.NewButtonWithIcon("", theme.MediaStopIcon(), a.onUnloadModel)
	a.downloadButton = ttwidget.NewButtonWithIcon("", theme.DownloadIcon(), a.onDownloadModel)
	a.paramsButton = ttwidget.NewButtonWithIcon("", theme.SettingsIcon(), a.onShowParams)
	a.exportButton = ttwidget.NewButtonWithIcon("", theme.UploadIcon(), a.onExportHistory)
	a.importButton = ttwidget.NewButtonWithIcon("", theme.FolderIcon(), a.onImportHistory)
	a.clearButton = ttwidget.NewButtonWithIcon("", theme.DeleteIcon(), a.onClearHistory)
	a.helpButton = ttwidget.NewButtonWithIcon("", theme.HelpIcon(), a.onShowHotkeys)

	toolbar := container.NewHBox(
		a.prevButton,
		a.nextButton,
		widget.NewSeparator(),
		a.loadButton,
		a.unloadButton,
		a.downloadButton,
		widget.NewSeparator(),
		a.paramsButton,
		a.exportButton,
		a.importButton,
		a.clearButton,
		widget.NewSeparator(),
		a.helpButton,
	)

	// Status section
	a.statusLabel = widget.NewLabel("Ready")
	a.modelLabel = widget.NewLabel("")
	a.modelLabel.TextStyle = fyne.TextStyle{Italic: true}
	a.updateModelLabel()

	statusSection := container.NewVBox(
		a.statusLabel,
		widget.NewSeparator(),
		a.modelLabel,
	)

	content := container.NewBorder(
		container.NewVBox(
			toolbar,
			widget.NewSeparator(),
			inputSection,
		),
		statusSection,
		nil, nil,
		displaySection,
	)

	// Add the tooltip layer to enable tooltips
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))

	// Now that the tooltip layer is created, set all tooltips
	a.setupTooltips()

	a.window.SetOnClosed(func() {
		a.cancel()
		a.manager.Close()
	})

	a.setupKeyboardShortcuts()

	if a.settings.ModelPath != "" {
		a.updateStatus(fmt.Sprintf("Model configured: %s. Load it to translate (l)",
			filepath.Base(a.settings.ModelPath)))
	} else {
		a.updateStatus("No model configured. Download one to get started (d)")
	}
}

// Run starts the GUI application
func (a *Application) Run() {
	a.window.ShowAndRun()
}

// setupTooltips sets up all tooltips after the tooltip layer has been created
func (a *Application) setupTooltips() {
	a.translateButton.SetToolTip("Translate (t)")
	a.swapButton.SetToolTip("Swap languages (w)")
	a.prevButton.SetToolTip("Older entry (←)")
	a.nextButton.SetToolTip("Newer entry (→)")
	a.loadButton.SetToolTip("Load model (l)")
	a.unloadButton.SetToolTip("Unload model (u)")
	a.downloadButton.SetToolTip("Download model (d)")
	a.paramsButton.SetToolTip("Generation settings (g)")
	a.exportButton.SetToolTip("Export history (x)")
	a.importButton.SetToolTip("Import history (i)")
	a.clearButton.SetToolTip("Clear history (c)")
	a.helpButton.SetToolTip("Show hotkeys (h)")
}

func (a *Application) setupKeyboardShortcuts() {
	a.window.Canvas().SetOnTypedRune(func(r rune) {
		if a.window.Canvas().Focused() == a.sourceEntry {
			return
		}

		switch r {
		case 's', 'S':
			a.window.Canvas().Focus(a.sourceEntry)
		case 't', 'T':
			if !a.translateButton.Disabled() {
				a.onTranslate()
			}
		case 'w', 'W':
			a.onSwapLanguages()
		case 'l', 'L':
			if !a.loadButton.Disabled() {
				a.onLoadModel()
			}
		case 'u', 'U':
			if !a.unloadButton.Disabled() {
				a.onUnloadModel()
			}
		case 'd', 'D':
			if !a.downloadButton.Disabled() {
				a.onDownloadModel()
			}
		case 'g', 'G':
			a.onShowParams()
		case 'x', 'X':
			a.onExportHistory()
		case 'i', 'I':
			a.onImportHistory()
		case 'c', 'C':
			a.onClearHistory()
		case 'h', 'H':
			a.onShowHotkeys()
		case 'q', 'Q':
			a.window.Close()
		}
	})

	a.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			a.window.Canvas().Unfocus()
			return
		}

		if a.window.Canvas().Focused() == a.sourceEntry {
			return
		}

		switch ev.Name {
		case fyne.KeyLeft:
			if !a.prevButton.Disabled() {
				a.onOlderEntry()
			}
		case fyne.KeyRight:
			if !a.nextButton.Disabled() {
				a.onNewerEntry()
			}
		case fyne.KeyReturn, fyne.KeyEnter:
			if !a.translateButton.Disabled() {
				a.onTranslate()
			}
		}
	})
}

// onTranslate submits the source text to a background translation worker.
func (a *Application) onTranslate() {
	text := strings.TrimSpace(a.sourceEntry.Text)
	if text == "" {
		return
	}

	req := translation.Request{
		Text:       text,
		SourceLang: a.sourceLangSelect.Selected,
		TargetLang: a.targetLangSelect.Selected,
		Explain:    a.explainCheck.Checked,
	}

	a.setBusy(true)
	a.translationDisplay.SetTranslating()
	a.updateStatus(fmt.Sprintf("Translating to %s...", req.TargetLang))

	translation.RunTranslateWorker(a.manager, a.ctx, req, fyne.Do, func(result translation.Result, err error) {
		a.setBusy(false)
		if err != nil {
			a.translationDisplay.Clear()
			if errors.Is(err, translation.ErrBusy) {
				a.updateStatus("Another operation is still running")
				return
			}
			a.showError(err)
			return
		}
		a.translationDisplay.SetResult(result)
		a.cursor.reset()
		a.updateNavigation()
		a.updateStatus(fmt.Sprintf("Translated in %s", result.Duration.Round(10*time.Millisecond)))
	})
}

// onSwapLanguages exchanges the source and target languages.
func (a *Application) onSwapLanguages() {
	source := a.sourceLangSelect.Selected
	target := a.targetLangSelect.Selected
	a.sourceLangSelect.SetSelected(target)
	a.targetLangSelect.SetSelected(source)
}

// onBackendChanged switches the engine variant. The model of the previous
// backend is unloaded and must be loaded again after switching back.
func (a *Application) onBackendChanged(value string) {
	kind, err := backend.ParseKind(value)
	if err != nil {
		return
	}
	if kind == a.manager.Backend() {
		return
	}

	a.setBusy(true)
	a.updateStatus(fmt.Sprintf("Switching backend to %s...", value))

	go func() {
		err := a.manager.SwitchBackend(kind)
		fyne.Do(func() {
			a.setBusy(false)
			a.updateModelLabel()
			if err != nil {
				a.backendSelect.SetSelected(string(a.manager.Backend()))
				a.showError(err)
				return
			}
			a.settings.Backend = value
			a.saveSettings()
			a.updateStatus(fmt.Sprintf("Backend is now %s. Load a model to translate", value))
		})
	}()
}

// onLoadModel asks for a model location matching the active backend: a .gguf
// file for llama.cpp, a weights directory for the Transformers runtime.
func (a *Application) onLoadModel() {
	if a.manager.Backend() == backend.KindTransformers {
		d := dialog.NewFolderOpen(func(dir fyne.ListableURI, err error) {
			if err != nil || dir == nil {
				return
			}
			a.loadModel(dir.Path())
		}, a.window)
		d.Show()
		return
	}

	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		a.loadModel(path)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".gguf"}))
	d.Show()
}

func (a *Application) onUnloadModel() {
	a.setBusy(true)
	a.updateStatus("Unloading model...")

	translation.RunUnloadWorker(a.manager, fyne.Do, func(err error) {
		a.setBusy(false)
		a.updateModelLabel()
		if err != nil {
			a.showError(err)
			return
		}
		a.updateStatus("Model unloaded")
	})
}

// onShowHotkeys displays a dialog with all available keyboard shortcuts
func (a *Application) onShowHotkeys() {
	hotkeys := `## Navigation
**←** Older history entry
**→** Newer history entry
**s** Focus source text
**Esc** Unfocus field

## Translation
**t** / **Enter** Translate
**w** Swap languages

## Model
**l** Load model
**u** Unload model
**d** Download model
**g** Generation settings

## History
**x** Export history
**i** Import history
**c** Clear history

## Help
**h** Show hotkeys
**q** Quit application`

	content := widget.NewRichTextFromMarkdown(hotkeys)
	content.Wrapping = fyne.TextWrapWord

	scroll := container.NewScroll(container.NewPadded(content))
	scroll.SetMinSize(fyne.NewSize(400, 420))

	dialog.NewCustom("Keyboard Shortcuts", "Close", scroll, a.window).Show()
}

// Helper methods
func (a *Application) setBusy(busy bool) {
	a.busy = busy
	a.refreshControls()
}

// refreshControls applies the busy and downloading state to the controls that
// would otherwise race against the running operation.
func (a *Application) refreshControls() {
	blocked := a.busy || a.downloading
	if blocked {
		a.translateButton.Disable()
		a.loadButton.Disable()
		a.unloadButton.Disable()
		a.downloadButton.Disable()
		a.backendSelect.Disable()
	} else {
		a.translateButton.Enable()
		a.loadButton.Enable()
		a.unloadButton.Enable()
		a.downloadButton.Enable()
		a.backendSelect.Enable()
	}
}

func (a *Application) updateStatus(message string) {
	a.statusLabel.SetText(message)
}

func (a *Application) updateModelLabel() {
	info := a.manager.Info()
	if !info.Loaded {
		a.modelLabel.SetText(fmt.Sprintf("No model loaded (%s backend)", a.manager.Backend()))
		return
	}
	a.modelLabel.SetText(fmt.Sprintf("%s: %s", info.Backend, filepath.Base(info.Path)))
}

func (a *Application) showError(err error) {
	dialog.ShowError(err, a.window)
	a.updateStatus("Error: " + err.Error())
}

func (a *Application) saveSettings() {
	if err := cli.SaveSettings(a.settings); err != nil {
		a.logViewer.Log("Failed to save settings: %v", err)
	}
}

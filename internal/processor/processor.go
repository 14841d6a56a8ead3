package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/snonux/polyglot/internal/backend"
	"codeberg.org/snonux/polyglot/internal/batch"
	"codeberg.org/snonux/polyglot/internal/cli"
	"codeberg.org/snonux/polyglot/internal/gui"
	"codeberg.org/snonux/polyglot/internal/history"
	"codeberg.org/snonux/polyglot/internal/hub"
	"codeberg.org/snonux/polyglot/internal/models"
	"codeberg.org/snonux/polyglot/internal/translation"
)

// Processor handles the CLI command modes
type Processor struct {
	flags    *cli.Flags
	settings cli.Settings
	out      io.Writer
	errOut   io.Writer

	// newManager is swapped for a stub factory in tests.
	newManager func() (*translation.Manager, error)
}

// NewProcessor creates a processor from the parsed flags and settings.
func NewProcessor(flags *cli.Flags, settings cli.Settings) *Processor {
	p := &Processor{
		flags:    flags,
		settings: settings,
		out:      os.Stdout,
		errOut:   os.Stderr,
	}
	p.newManager = p.buildManager
	return p
}

// buildManager assembles the translation manager the CLI modes use.
func (p *Processor) buildManager() (*translation.Manager, error) {
	kind, err := backend.ParseKind(p.settings.Backend)
	if err != nil {
		return nil, err
	}

	engine := backend.DefaultConfig()
	if p.settings.ContextSize > 0 {
		engine.ContextSize = p.settings.ContextSize
	}
	if p.settings.Threads > 0 {
		engine.Threads = p.settings.Threads
	}
	engine.GPULayers = p.settings.GPULayers
	engine.LogWriter = p.errOut

	params := backend.DefaultParams()
	if p.settings.MaxTokens > 0 {
		params.MaxTokens = p.settings.MaxTokens
	}
	if p.settings.Temperature > 0 {
		params.Temperature = p.settings.Temperature
	}

	var store *history.Store
	if stateDir, err := cli.StateDir(); err == nil {
		if s, err := history.OpenStore(filepath.Join(stateDir, "history.db")); err == nil {
			store = s
		} else {
			fmt.Fprintf(p.errOut, "Warning: history disabled: %v\n", err)
		}
	}

	return translation.NewManager(&translation.ManagerConfig{
		Backend:      kind,
		Engine:       engine,
		Params:       params,
		HistoryLimit: p.settings.HistoryLimit,
		Store:        store,
	}), nil
}

// modelDir returns the configured model directory or the default.
func (p *Processor) modelDir() (string, error) {
	if p.settings.ModelDir != "" {
		return p.settings.ModelDir, nil
	}
	return hub.DefaultModelDir()
}

// ProcessSingleText translates one text from the command line.
func (p *Processor) ProcessSingleText(ctx context.Context, text string) error {
	req, err := p.buildRequest(text)
	if err != nil {
		return err
	}

	manager, err := p.prepareManager(ctx)
	if err != nil {
		return err
	}
	defer manager.Close()

	result, err := manager.Translate(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintln(p.out, result.Translation)
	return nil
}

// ProcessBatch translates every line of the batch file.
func (p *Processor) ProcessBatch(ctx context.Context) error {
	entries, err := batch.ReadBatchFile(p.flags.BatchFile)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "Batch file contains no texts")
		return nil
	}

	reqs := make([]translation.Request, 0, len(entries))
	for _, entry := range entries {
		req, err := p.buildBatchRequest(entry)
		if err != nil {
			return err
		}
		reqs = append(reqs, req)
	}

	manager, err := p.prepareManager(ctx)
	if err != nil {
		return err
	}
	defer manager.Close()

	start := time.Now()
	var errorCount int
	results, err := manager.TranslateBatch(ctx, reqs, func(i int, result translation.Result, err error) {
		if err != nil {
			fmt.Fprintf(p.errOut, "Error translating %d/%d: %v\n", i+1, len(reqs), err)
			errorCount++
			return
		}
		fmt.Fprintf(p.out, "%s\n", result.Translation)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(p.errOut, "\nTranslated %d/%d texts in %s\n",
		len(results), len(reqs), time.Since(start).Round(time.Second))
	if errorCount > 0 {
		fmt.Fprintf(p.errOut, "Errors: %d\n", errorCount)
	}
	return nil
}

// prepareManager creates the manager and loads the configured model.
func (p *Processor) prepareManager(ctx context.Context) (*translation.Manager, error) {
	modelPath := p.settings.ModelPath
	if modelPath == "" {
		return nil, fmt.Errorf("no model configured: pass --model or download one with --download")
	}

	manager, err := p.newManager()
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(p.errOut, "Loading model %s...\n", filepath.Base(modelPath))
	if err := manager.LoadModel(ctx, modelPath); err != nil {
		manager.Close()
		return nil, err
	}
	return manager, nil
}

// buildRequest resolves the run-wide language pair for a text.
func (p *Processor) buildRequest(text string) (translation.Request, error) {
	source, err := resolveLanguage(p.settings.SourceLang)
	if err != nil {
		return translation.Request{}, err
	}
	target, err := resolveLanguage(p.settings.TargetLang)
	if err != nil {
		return translation.Request{}, err
	}
	return translation.Request{
		Text:       text,
		SourceLang: source,
		TargetLang: target,
		Explain:    p.settings.Explain,
	}, nil
}

// buildBatchRequest applies a per-line language override when present.
func (p *Processor) buildBatchRequest(entry batch.Entry) (translation.Request, error) {
	req, err := p.buildRequest(entry.Text)
	if err != nil {
		return translation.Request{}, err
	}
	if entry.SourceLang != "" {
		source, err := resolveLanguage(entry.SourceLang)
		if err != nil {
			return translation.Request{}, err
		}
		req.SourceLang = source
	}
	if entry.TargetLang != "" {
		target, err := resolveLanguage(entry.TargetLang)
		if err != nil {
			return translation.Request{}, err
		}
		req.TargetLang = target
	}
	return req, nil
}

// resolveLanguage accepts a display name ("French") or a two-letter code
// ("fr") and returns the display name.
func resolveLanguage(s string) (string, error) {
	if backend.IsSupportedLanguage(s) {
		return s, nil
	}
	if name, ok := backend.LanguageName(s); ok {
		return name, nil
	}
	return "", fmt.Errorf("unsupported language: %q", s)
}

// RunGUIMode launches the GUI application
func (p *Processor) RunGUIMode() error {
	app := gui.New(&gui.Config{Settings: p.settings})
	app.Run()
	return nil
}

// ListLocalModels prints the models installed in the model directory.
func (p *Processor) ListLocalModels() error {
	dir, err := p.modelDir()
	if err != nil {
		return err
	}
	return models.List(p.out, dir)
}

// DownloadModel fetches a catalog preset into the model directory and
// records it as the configured model.
func (p *Processor) DownloadModel(ctx context.Context, id string) error {
	model, ok := hub.ModelByID(id)
	if !ok {
		fmt.Fprintln(p.errOut, "Available presets:")
		for _, m := range hub.Models("") {
			fmt.Fprintf(p.errOut, "  %-24s %s, %s\n", m.ID, m.Name, m.SizeLabel)
		}
		return fmt.Errorf("unknown model preset: %q", id)
	}

	dir, err := p.modelDir()
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "Downloading %s (%s) to %s\n", model.Name, model.SizeLabel, dir)

	downloader := hub.NewDownloader()
	var lastFile string
	path, err := downloader.Download(ctx, model, dir, func(file string, received, total int64) {
		if file != lastFile {
			if lastFile != "" {
				fmt.Fprintln(p.out)
			}
			fmt.Fprintf(p.out, "  %s", file)
			lastFile = file
		}
	})
	if lastFile != "" {
		fmt.Fprintln(p.out)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "Downloaded to %s\n", path)

	p.settings.ModelPath = path
	p.settings.Backend = string(model.Backend)
	if err := cli.SaveSettings(p.settings); err != nil {
		fmt.Fprintf(p.errOut, "Warning: failed to update settings: %v\n", err)
	}
	return nil
}

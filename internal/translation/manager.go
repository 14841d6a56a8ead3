package translation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"codeberg.org/snonux/polyglot/internal"
	"codeberg.org/snonux/polyglot/internal/backend"
	"codeberg.org/snonux/polyglot/internal/history"
)

var (
	// ErrNoModelLoaded is returned when an operation needs a loaded model.
	ErrNoModelLoaded = errors.New("no model loaded")

	// ErrBusy is returned when a load or translation is already running.
	// Callers retry once the outstanding operation finishes.
	ErrBusy = errors.New("another operation is in progress")
)

// ManagerConfig configures a translation manager.
type ManagerConfig struct {
	// Backend selects the initial engine variant.
	Backend backend.Kind

	// Engine is shared by all handlers the manager creates.
	Engine *backend.Config

	// Params are the initial decoding parameters.
	Params backend.Params

	// HistoryLimit bounds the session log. Zero means the default.
	HistoryLimit int

	// Store, when set, persists history entries across restarts.
	Store *history.Store

	// NewHandler overrides handler construction. Tests use it to substitute
	// a scripted handler for a real engine process.
	NewHandler func(backend.Kind, *backend.Config) (backend.Handler, error)
}

// Manager owns the active model handler and runs translations against it.
// All operations are single-flight: a second call while one is outstanding
// fails with ErrBusy.
type Manager struct {
	mu   sync.Mutex
	busy bool

	kind    backend.Kind
	handler backend.Handler
	params  backend.Params
	engine  *backend.Config

	log   *history.Log
	store *history.Store

	newHandler func(backend.Kind, *backend.Config) (backend.Handler, error)
}

// NewManager creates a manager with no model loaded.
func NewManager(config *ManagerConfig) *Manager {
	if config == nil {
		config = &ManagerConfig{}
	}

	kind := config.Backend
	if kind == "" {
		kind = backend.KindGGUF
	}
	engine := config.Engine
	if engine == nil {
		engine = backend.DefaultConfig()
	}
	params := config.Params
	if params.MaxTokens == 0 {
		params = backend.DefaultParams()
	}

	m := &Manager{
		kind:       kind,
		params:     params,
		engine:     engine,
		log:        history.NewLog(config.HistoryLimit),
		store:      config.Store,
		newHandler: config.NewHandler,
	}
	if m.newHandler == nil {
		m.newHandler = backend.New
	}
	m.restoreHistory(config.HistoryLimit)
	return m
}

// restoreHistory fills the session log from the store, newest first.
func (m *Manager) restoreHistory(limit int) {
	if m.store == nil {
		return
	}
	entries, err := m.store.LoadRecent(limit)
	if err != nil {
		fmt.Fprintf(m.logWriter(), "Failed to restore history: %v\n", err)
		return
	}
	m.log.Replace(entries)
}

func (m *Manager) logWriter() io.Writer {
	if m.engine.LogWriter == nil {
		return io.Discard
	}
	return m.engine.LogWriter
}

// begin claims the single operation slot.
func (m *Manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return ErrBusy
	}
	m.busy = true
	return nil
}

func (m *Manager) end() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

// Busy reports whether an operation is currently running.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// Backend returns the selected engine variant.
func (m *Manager) Backend() backend.Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kind
}

// Info returns the load state of the active handler.
func (m *Manager) Info() backend.ModelInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handler == nil {
		return backend.ModelInfo{Backend: m.kind}
	}
	return m.handler.Info()
}

// Params returns the current decoding parameters.
func (m *Manager) Params() backend.Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params
}

// UpdateParams replaces the decoding parameters for subsequent translations.
func (m *Manager) UpdateParams(params backend.Params) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params = params
}

// History returns the session log.
func (m *Manager) History() *history.Log {
	return m.log
}

// LoadModel loads the model at path into the active backend, replacing any
// previously loaded model.
func (m *Manager) LoadModel(ctx context.Context, path string) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	handler, err := m.ensureHandler()
	if err != nil {
		return err
	}
	if err := handler.Load(ctx, path); err != nil {
		// The handlers validate the new path before tearing down the old
		// engine, so a previous model may still be running. Release it; a
		// failed load leaves the manager as if nothing was ever loaded.
		handler.Unload()
		m.mu.Lock()
		m.handler = nil
		m.mu.Unlock()
		return err
	}
	return nil
}

// ensureHandler lazily creates the handler for the selected backend.
func (m *Manager) ensureHandler() (backend.Handler, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handler == nil {
		handler, err := m.newHandler(m.kind, m.engine)
		if err != nil {
			return nil, err
		}
		m.handler = handler
	}
	return m.handler, nil
}

// UnloadModel stops the active engine. A no-op when nothing is loaded.
func (m *Manager) UnloadModel() error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	m.mu.Lock()
	handler := m.handler
	m.mu.Unlock()

	if handler == nil {
		return nil
	}
	return handler.Unload()
}

// SwitchBackend selects a different engine variant, unloading any model the
// previous one held. The new backend starts with no model loaded; switching
// back does not restore the old model.
func (m *Manager) SwitchBackend(kind backend.Kind) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	m.mu.Lock()
	defer m.mu.Unlock()

	if kind == m.kind {
		return nil
	}

	if m.handler != nil {
		if err := m.handler.Unload(); err != nil {
			return err
		}
		m.handler = nil
	}
	m.kind = kind
	return nil
}

// Translate runs one translation against the loaded model and records it in
// the history log.
func (m *Manager) Translate(ctx context.Context, req Request) (Result, error) {
	if err := m.begin(); err != nil {
		return Result{}, err
	}
	defer m.end()

	return m.translate(ctx, req)
}

// TranslateBatch translates each request in order, holding the operation slot
// for the whole run. Failed requests are reported through progress and
// skipped; translation continues with the next request.
func (m *Manager) TranslateBatch(ctx context.Context, reqs []Request, progress func(i int, result Result, err error)) ([]Result, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	defer m.end()

	results := make([]Result, 0, len(reqs))
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := m.translate(ctx, req)
		if progress != nil {
			progress(i, result, err)
		}
		if err != nil {
			if errors.Is(err, ErrNoModelLoaded) {
				return results, err
			}
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// translate requires the operation slot to be held by the caller.
func (m *Manager) translate(ctx context.Context, req Request) (Result, error) {
	m.mu.Lock()
	handler := m.handler
	params := m.params
	m.mu.Unlock()

	if handler == nil || !handler.Info().Loaded {
		return Result{}, ErrNoModelLoaded
	}

	if strings.TrimSpace(req.Text) == "" {
		return Result{}, fmt.Errorf("nothing to translate")
	}

	prompt, err := m.buildPrompt(handler.Kind(), req)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	raw, err := handler.Generate(ctx, prompt, params)
	if err != nil {
		return Result{}, err
	}

	targetCode, _ := backend.LanguageCode(req.TargetLang)
	translation := backend.ExtractTranslation(raw, targetCode)
	if translation == "" {
		return Result{}, backend.NewInferenceError(handler.Kind(),
			fmt.Errorf("model produced no translation"))
	}

	result := Result{
		Request:     req,
		Translation: translation,
		Raw:         raw,
		Backend:     handler.Kind(),
		ModelPath:   handler.Info().Path,
		Duration:    time.Since(start),
		CreatedAt:   time.Now().UTC(),
	}

	m.record(result)
	return result, nil
}

// buildPrompt picks the prompt shape the engine works best with.
func (m *Manager) buildPrompt(kind backend.Kind, req Request) (string, error) {
	if kind == backend.KindTransformers {
		return backend.BuildCompletionPrompt(req.Text, req.SourceLang, req.TargetLang, req.Explain)
	}
	return backend.BuildPrompt(req.Text, req.SourceLang, req.TargetLang, req.Explain)
}

// record appends the result to the session log and the store.
func (m *Manager) record(result Result) {
	entry := history.Entry{
		ID:          internal.GenerateEntryID(result.Request.Text),
		SourceText:  result.Request.Text,
		Translation: result.Translation,
		SourceLang:  result.Request.SourceLang,
		TargetLang:  result.Request.TargetLang,
		Backend:     string(result.Backend),
		ModelPath:   result.ModelPath,
		Explain:     result.Request.Explain,
		CreatedAt:   result.CreatedAt,
	}
	m.log.Add(entry)

	if m.store != nil {
		if err := m.store.Save(entry); err != nil {
			fmt.Fprintf(m.logWriter(), "Failed to persist history entry: %v\n", err)
		}
	}
}

// ClearHistory empties the session log and the persisted store.
func (m *Manager) ClearHistory() error {
	m.log.Clear()
	if m.store != nil {
		if err := m.store.DeleteAll(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
	}
	return nil
}

// Close unloads the model and releases the handler.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handler == nil {
		return nil
	}
	err := m.handler.Unload()
	m.handler = nil
	return err
}

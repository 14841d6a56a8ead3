package backend

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Kind identifies an inference engine variant.
type Kind string

const (
	// KindGGUF runs quantized GGUF weights in llama.cpp's llama-server.
	KindGGUF Kind = "gguf"
	// KindTransformers runs full-precision weight directories in an
	// OpenAI-compatible transformer server (vLLM).
	KindTransformers Kind = "transformers"
)

// ParseKind converts a user-supplied backend name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gguf", "llama", "llama.cpp":
		return KindGGUF, nil
	case "transformers", "vllm":
		return KindTransformers, nil
	default:
		return "", fmt.Errorf("unknown backend: %q", s)
	}
}

// Params holds decoding parameters for a single generation.
type Params struct {
	MaxTokens     int
	Temperature   float64
	TopP          float64
	TopK          int
	RepeatPenalty float64
	Stop          []string
}

// DefaultParams returns the decoding defaults tuned for translation.
func DefaultParams() Params {
	return Params{
		MaxTokens:     512,
		Temperature:   0.1,
		TopP:          0.95,
		TopK:          40,
		RepeatPenalty: 1.1,
		Stop:          []string{"</s>", "\n\n"},
	}
}

// ModelInfo describes the currently loaded model, if any.
type ModelInfo struct {
	Loaded  bool   `json:"loaded"`
	Backend Kind   `json:"backend"`
	Path    string `json:"path,omitempty"`
	Address string `json:"address,omitempty"`
}

// Handler is the capability surface shared by both engine variants. Handlers
// are not safe for concurrent use; the translation manager serializes access.
type Handler interface {
	// Load starts the engine for the model at path and blocks until it is
	// ready to serve. Failures are ModelLoadErrors and leave the handler
	// unloaded.
	Load(ctx context.Context, path string) error

	// Generate runs one completion for the prompt. Failures are
	// InferenceErrors; the model stays loaded.
	Generate(ctx context.Context, prompt string, params Params) (string, error)

	// Unload stops the engine and releases its resources. Idempotent.
	Unload() error

	// Info returns metadata about the loaded model.
	Info() ModelInfo

	// Kind returns the engine variant this handler wraps.
	Kind() Kind
}

// Config holds common configuration for engine handlers.
type Config struct {
	// ServerBinary overrides the engine executable name.
	ServerBinary string

	// BaseURL attaches the handler to an already-running engine server
	// instead of spawning one. Used by tests and remote setups.
	BaseURL string

	ContextSize    int
	Threads        int
	GPULayers      int // -1 = all layers on GPU, 0 = CPU only
	StartupTimeout time.Duration

	// LogWriter receives the engine's stderr output. Defaults to io.Discard.
	LogWriter io.Writer
}

// DefaultConfig returns the engine defaults used by the GUI and CLI.
func DefaultConfig() *Config {
	return &Config{
		ContextSize:    2048,
		Threads:        8,
		GPULayers:      -1,
		StartupTimeout: 2 * time.Minute,
	}
}

func (c *Config) logWriter() io.Writer {
	if c.LogWriter == nil {
		return io.Discard
	}
	return c.LogWriter
}

// New creates the handler for the requested engine variant.
func New(kind Kind, config *Config) (Handler, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch kind {
	case KindGGUF:
		return NewGGUFHandler(config), nil
	case KindTransformers:
		return NewTransformersHandler(config), nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", kind)
	}
}

package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

const defaultTransformersBinary = "vllm"

// TransformersHandler runs full-precision weight directories through vLLM and
// talks to it over the OpenAI-compatible completion API.
type TransformersHandler struct {
	config  *Config
	breaker *gobreaker.CircuitBreaker

	client    *openai.Client
	process   *engineProcess
	baseURL   string
	modelPath string
}

// NewTransformersHandler creates an unloaded Transformers handler.
func NewTransformersHandler(config *Config) *TransformersHandler {
	if config == nil {
		config = DefaultConfig()
	}
	return &TransformersHandler{
		config:  config,
		breaker: newEngineBreaker("transformers"),
	}
}

// Kind returns KindTransformers.
func (h *TransformersHandler) Kind() Kind { return KindTransformers }

// Load validates the weight directory, starts the engine server for it and
// points an OpenAI-compatible client at its address.
func (h *TransformersHandler) Load(ctx context.Context, path string) error {
	if err := validateWeightsDir(path); err != nil {
		return err
	}

	if h.process != nil || h.baseURL != "" {
		h.Unload()
	}

	baseURL := h.config.BaseURL
	if baseURL == "" {
		port, err := freePort()
		if err != nil {
			return NewModelLoadError(LoadFailureUnknown, path, err)
		}

		binary := h.config.ServerBinary
		if binary == "" {
			binary = defaultTransformersBinary
		}

		args := []string{
			"serve", path,
			"--host", "127.0.0.1",
			"--port", fmt.Sprintf("%d", port),
			"--max-model-len", fmt.Sprintf("%d", h.config.ContextSize),
		}

		process, err := startEngine(binary, args, port, h.config.logWriter())
		if err != nil {
			return NewModelLoadError(LoadFailureUnknown, path, err)
		}

		if err := process.waitReady(ctx, process.baseURL+"/health", h.config.StartupTimeout); err != nil {
			return NewModelLoadError(startupFailureKind(err), path, err)
		}

		h.process = process
		baseURL = process.baseURL
	}

	clientConfig := openai.DefaultConfig("")
	clientConfig.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"

	h.client = openai.NewClientWithConfig(clientConfig)
	h.baseURL = strings.TrimRight(baseURL, "/")
	h.modelPath = path
	return nil
}

// validateWeightsDir checks that path is a full-precision weight directory.
func validateWeightsDir(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".gguf") {
		return NewModelLoadError(LoadUnsupportedFormat, path,
			fmt.Errorf("GGUF files need the GGUF backend, not the Transformers runtime"))
	}

	info, err := os.Stat(path)
	if err != nil {
		return NewModelLoadError(LoadFileNotFound, path, err)
	}
	if !info.IsDir() {
		return NewModelLoadError(LoadUnsupportedFormat, path,
			fmt.Errorf("expected a model directory"))
	}
	if _, err := os.Stat(filepath.Join(path, "config.json")); err != nil {
		return NewModelLoadError(LoadUnsupportedFormat, path,
			fmt.Errorf("missing config.json, not a model directory"))
	}
	return nil
}

// Generate runs one completion against the OpenAI-compatible endpoint.
func (h *TransformersHandler) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	if h.client == nil {
		return "", NewInferenceError(KindTransformers, fmt.Errorf("no model loaded"))
	}

	req := openai.CompletionRequest{
		Model:       h.modelPath,
		Prompt:      prompt,
		MaxTokens:   params.MaxTokens,
		Temperature: float32(params.Temperature),
		TopP:        float32(params.TopP),
		Stop:        params.Stop,
	}

	result, err := h.breaker.Execute(func() (interface{}, error) {
		resp, err := h.client.CreateCompletion(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("completion request failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no completion returned")
		}
		return resp.Choices[0].Text, nil
	})
	if err != nil {
		return "", NewInferenceError(KindTransformers, err)
	}

	return strings.TrimSpace(result.(string)), nil
}

// Unload stops the engine server if this handler started one.
func (h *TransformersHandler) Unload() error {
	if h.process != nil {
		h.process.stop()
		h.process = nil
	}
	h.client = nil
	h.baseURL = ""
	h.modelPath = ""
	return nil
}

// Info returns the current load state.
func (h *TransformersHandler) Info() ModelInfo {
	return ModelInfo{
		Loaded:  h.client != nil,
		Backend: KindTransformers,
		Path:    h.modelPath,
		Address: h.baseURL,
	}
}

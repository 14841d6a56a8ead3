package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const defaultLlamaServerBinary = "llama-server"

// GGUFHandler runs quantized GGUF models through llama.cpp's llama-server and
// talks to its native completion endpoint.
type GGUFHandler struct {
	config     *Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker

	process   *engineProcess
	baseURL   string
	modelPath string
}

// completionRequest is the request body of llama-server's /completion
// endpoint. Unlike the OpenAI surface it carries top_k and repeat_penalty.
type completionRequest struct {
	Prompt        string   `json:"prompt"`
	NPredict      int      `json:"n_predict"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"top_p"`
	TopK          int      `json:"top_k"`
	RepeatPenalty float64  `json:"repeat_penalty"`
	Stop          []string `json:"stop,omitempty"`
	Stream        bool     `json:"stream"`
}

// completionResponse is the subset of the /completion reply we use.
type completionResponse struct {
	Content string `json:"content"`
}

// NewGGUFHandler creates an unloaded GGUF handler.
func NewGGUFHandler(config *Config) *GGUFHandler {
	if config == nil {
		config = DefaultConfig()
	}
	return &GGUFHandler{
		config: config,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		breaker: newEngineBreaker("gguf"),
	}
}

// newEngineBreaker builds the circuit breaker shared by both engine clients.
// Local engines either answer or are down; a handful of consecutive failures
// means the process is gone and further requests should fail fast.
func newEngineBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

// Kind returns KindGGUF.
func (h *GGUFHandler) Kind() Kind { return KindGGUF }

// Load validates the GGUF file, starts llama-server for it and waits for the
// health endpoint to come up.
func (h *GGUFHandler) Load(ctx context.Context, path string) error {
	if err := validateGGUFPath(path); err != nil {
		return err
	}

	if h.process != nil {
		h.Unload()
	}

	// Attached mode: an external server already has the model.
	if h.config.BaseURL != "" {
		h.baseURL = strings.TrimRight(h.config.BaseURL, "/")
		h.modelPath = path
		return nil
	}

	port, err := freePort()
	if err != nil {
		return NewModelLoadError(LoadFailureUnknown, path, err)
	}

	binary := h.config.ServerBinary
	if binary == "" {
		binary = defaultLlamaServerBinary
	}

	args := []string{
		"-m", path,
		"--host", "127.0.0.1",
		"--port", fmt.Sprintf("%d", port),
		"--ctx-size", fmt.Sprintf("%d", h.config.ContextSize),
		"--threads", fmt.Sprintf("%d", h.config.Threads),
		"--n-gpu-layers", fmt.Sprintf("%d", h.config.GPULayers),
	}

	process, err := startEngine(binary, args, port, h.config.logWriter())
	if err != nil {
		return NewModelLoadError(LoadFailureUnknown, path, err)
	}

	if err := process.waitReady(ctx, process.baseURL+"/health", h.config.StartupTimeout); err != nil {
		return NewModelLoadError(startupFailureKind(err), path, err)
	}

	h.process = process
	h.baseURL = process.baseURL
	h.modelPath = path
	return nil
}

// startupFailureKind maps a startup error to a failure kind. An engine that
// dies during warmup usually ran out of memory for the weights.
func startupFailureKind(err error) LoadFailureKind {
	if err != nil && strings.Contains(err.Error(), "exited during startup") {
		return LoadResourceExhausted
	}
	return LoadFailureUnknown
}

// validateGGUFPath checks that path points at a usable GGUF file.
func validateGGUFPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return NewModelLoadError(LoadFileNotFound, path, err)
	}
	if info.IsDir() {
		return NewModelLoadError(LoadUnsupportedFormat, path,
			fmt.Errorf("expected a .gguf file, got a directory"))
	}
	if !strings.EqualFold(filepath.Ext(path), ".gguf") {
		return NewModelLoadError(LoadUnsupportedFormat, path,
			fmt.Errorf("not a GGUF file"))
	}
	// BF16 GGUF exports are not runnable by llama.cpp on most hardware.
	if strings.Contains(strings.ToLower(filepath.Base(path)), "bf16") {
		return NewModelLoadError(LoadUnsupportedFormat, path,
			fmt.Errorf("BF16 GGUF files are not supported, use a quantized variant"))
	}
	return nil
}

// Generate runs one completion against the llama-server native endpoint.
func (h *GGUFHandler) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	if h.baseURL == "" {
		return "", NewInferenceError(KindGGUF, fmt.Errorf("no model loaded"))
	}

	reqBody := completionRequest{
		Prompt:        prompt,
		NPredict:      params.MaxTokens,
		Temperature:   params.Temperature,
		TopP:          params.TopP,
		TopK:          params.TopK,
		RepeatPenalty: params.RepeatPenalty,
		Stop:          params.Stop,
	}

	result, err := h.breaker.Execute(func() (interface{}, error) {
		return h.complete(ctx, &reqBody)
	})
	if err != nil {
		return "", NewInferenceError(KindGGUF, err)
	}

	return strings.TrimSpace(result.(string)), nil
}

func (h *GGUFHandler) complete(ctx context.Context, reqBody *completionRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.baseURL+"/completion", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion failed with status %d: %s", resp.StatusCode, string(body))
	}

	var compResp completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&compResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return compResp.Content, nil
}

// Unload stops the llama-server process if one is running.
func (h *GGUFHandler) Unload() error {
	if h.process != nil {
		h.process.stop()
		h.process = nil
	}
	h.baseURL = ""
	h.modelPath = ""
	return nil
}

// Info returns the current load state.
func (h *GGUFHandler) Info() ModelInfo {
	return ModelInfo{
		Loaded:  h.baseURL != "",
		Backend: KindGGUF,
		Path:    h.modelPath,
		Address: h.baseURL,
	}
}

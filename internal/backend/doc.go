// Package backend wraps the two local inference engines behind a common
// model handler interface: a quantized GGUF engine (llama.cpp's llama-server)
// and a full-precision transformer runtime speaking the OpenAI-compatible
// API. The translation manager holds whichever handler implements the
// interface and never branches on the engine type.
package backend

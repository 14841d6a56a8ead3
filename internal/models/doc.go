// Package models discovers locally installed translation models: GGUF files
// and full-precision weight directories under the configured model directory.
package models

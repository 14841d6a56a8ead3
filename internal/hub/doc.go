// Package hub knows the downloadable Seed-X model presets on Hugging Face
// and fetches them into the local model directory.
package hub

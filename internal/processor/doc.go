// Package processor runs the non-GUI command modes: single translations,
// batch files, model listing, and model downloads. It wires the settings,
// translation manager, and hub together for the CLI.
package processor
